package models

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// ReportColumnCount is the width of a flattened report row.
const ReportColumnCount = (MaxComparables + 1) * 9

// ReportHeader returns the column labels of a flattened report: the subject
// block as "{field}" followed by "comp{i} {field}" for each comparable slot.
func ReportHeader() []string {
	fields := ReportFields()
	header := make([]string, 0, ReportColumnCount)

	for _, f := range fields {
		header = append(header, string(f))
	}
	for i := 1; i <= MaxComparables; i++ {
		for _, f := range fields {
			header = append(header, fmt.Sprintf("comp%d %s", i, f))
		}
	}

	return header
}

// FlatRow is one report line: a subject and its comparables side by side.
type FlatRow struct {
	SubjectIndex    int      `json:"subject_index"`
	ComparableCount int      `json:"comparable_count"`
	Cells           []string `json:"cells"`
}

// SkippedSubject records a subject that could not be processed in a batch.
type SkippedSubject struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Report is the result of a batch comparables run.
type Report struct {
	ID                         string           `json:"id"`
	Header                     []string         `json:"header"`
	Rows                       []FlatRow        `json:"rows"`
	Skipped                    []SkippedSubject `json:"skipped,omitempty"`
	TotalSubjects              int              `json:"total_subjects"`
	SubjectsWithoutComparables int              `json:"subjects_without_comparables"`
	RatioBand                  RatioBandPolicy  `json:"ratio_band"`
	Ordering                   OrderingPolicy   `json:"ordering"`
	ProcessingTime             time.Duration    `json:"processing_time"`
	GeneratedAt                time.Time        `json:"generated_at"`
}

// Err combines the errors of every skipped subject, or nil.
func (r *Report) Err() error {
	var err error
	for _, s := range r.Skipped {
		err = multierr.Append(err, fmt.Errorf("subject %d (%s): %w", s.Index, s.Name, s.Err))
	}
	return err
}

// Summary returns the counters of the report for logs and notifications.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		ReportID:                   r.ID,
		TotalSubjects:              r.TotalSubjects,
		RowsEmitted:                len(r.Rows),
		SubjectsSkipped:            len(r.Skipped),
		SubjectsWithoutComparables: r.SubjectsWithoutComparables,
		ProcessingTimeSeconds:      r.ProcessingTime.Seconds(),
	}
}

// ReportSummary provides summary statistics for a report run.
type ReportSummary struct {
	ReportID                   string  `json:"report_id"`
	TotalSubjects              int     `json:"total_subjects"`
	RowsEmitted                int     `json:"rows_emitted"`
	SubjectsSkipped            int     `json:"subjects_skipped"`
	SubjectsWithoutComparables int     `json:"subjects_without_comparables"`
	ProcessingTimeSeconds      float64 `json:"processing_time_seconds"`
}

// FlattenRow lays out a subject and up to MaxComparables comparables as
// report cells. Columns absent from the dataset and empty slots are blank.
func FlattenRow(dataset *Dataset, subject Property, comparables []Property) FlatRow {
	fields := ReportFields()
	cells := make([]string, 0, ReportColumnCount)

	appendBlock := func(p *Property) {
		for _, f := range fields {
			if p == nil || !dataset.HasColumn(f) {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, p.Field(f))
		}
	}

	appendBlock(&subject)
	for i := 0; i < MaxComparables; i++ {
		if i < len(comparables) {
			appendBlock(&comparables[i])
		} else {
			appendBlock(nil)
		}
	}

	count := len(comparables)
	if count > MaxComparables {
		count = MaxComparables
	}

	return FlatRow{
		SubjectIndex:    subject.Index,
		ComparableCount: count,
		Cells:           cells,
	}
}
