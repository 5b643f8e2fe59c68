package matcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hotel-comparables-engine/internal/models"
)

// ErrSubjectFailed wraps a panic recovered while processing one subject.
var ErrSubjectFailed = errors.New("unexpected failure processing subject")

// flattenRow lays out one report row. It is a variable so tests can make a
// single subject fail.
var flattenRow = models.FlattenRow

// subjectResult is the outcome of one subject in a batch.
type subjectResult struct {
	row     *models.FlatRow
	skipped *models.SkippedSubject
}

// BuildReport runs the matcher with every property of dataset as the subject
// and flattens the results into one row per subject, in dataset order.
//
// A subject that fails is left out of Rows and listed in Skipped; the rest of
// the batch is unaffected. If ctx is cancelled no further subjects are
// scheduled, in-flight ones finish, and the partial report is returned along
// with ctx.Err().
func (m *Matcher) BuildReport(ctx context.Context, dataset *models.Dataset) (*models.Report, error) {
	startTime := time.Now()

	report := &models.Report{
		ID:            uuid.NewString(),
		Header:        models.ReportHeader(),
		Rows:          make([]models.FlatRow, 0, dataset.Len()),
		TotalSubjects: dataset.Len(),
		RatioBand:     m.ratioBand,
		Ordering:      m.ordering,
		GeneratedAt:   startTime.UTC(),
	}

	m.logger.Info("Starting report build",
		zap.String("report_id", report.ID),
		zap.Int("subjects", dataset.Len()),
		zap.String("ratio_band", string(m.ratioBand)),
		zap.String("ordering", string(m.ordering)),
		zap.Int("workers", m.workers),
	)

	results := make([]subjectResult, dataset.Len())

	// Plain group, not WithContext: one subject failing must not cancel the others.
	var g errgroup.Group
	g.SetLimit(m.workers)

	scheduled := 0
	var cancelErr error
	for i := range dataset.Properties {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
		i := i
		g.Go(func() error {
			results[i] = m.processSubject(dataset, i)
			return nil
		})
		scheduled++
	}
	_ = g.Wait()

	for _, res := range results[:scheduled] {
		switch {
		case res.skipped != nil:
			report.Skipped = append(report.Skipped, *res.skipped)
			m.logger.Warn("Skipped subject",
				zap.Int("index", res.skipped.Index),
				zap.String("name", res.skipped.Name),
				zap.Error(res.skipped.Err),
			)
		case res.row != nil:
			if res.row.ComparableCount == 0 {
				report.SubjectsWithoutComparables++
			}
			report.Rows = append(report.Rows, *res.row)
		}
	}

	report.ProcessingTime = time.Since(startTime)

	if cancelErr != nil {
		m.logger.Warn("Report build cancelled",
			zap.String("report_id", report.ID),
			zap.Int("scheduled", scheduled),
			zap.Int("total", dataset.Len()),
			zap.Error(cancelErr),
		)
		return report, cancelErr
	}

	m.logger.Info("Report build complete",
		zap.String("report_id", report.ID),
		zap.Int("rows", len(report.Rows)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("without_comparables", report.SubjectsWithoutComparables),
		zap.Duration("processing_time", report.ProcessingTime),
	)

	return report, nil
}

// processSubject computes the report row for dataset.Properties[i].
func (m *Matcher) processSubject(dataset *models.Dataset, i int) (res subjectResult) {
	subject := dataset.Properties[i]

	defer func() {
		if r := recover(); r != nil {
			res = skippedResult(i, subject, fmt.Errorf("%w: %v", ErrSubjectFailed, r))
		}
	}()

	candidates, err := m.FindComparables(subject, dataset.Properties)
	if err != nil {
		return skippedResult(i, subject, err)
	}

	row := flattenRow(dataset, subject, Properties(candidates))
	row.SubjectIndex = i
	return subjectResult{row: &row}
}

func skippedResult(i int, subject models.Property, err error) subjectResult {
	return subjectResult{
		skipped: &models.SkippedSubject{
			Index:  i,
			Name:   subject.Name,
			Reason: err.Error(),
			Err:    err,
		},
	}
}
