package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"hotel-comparables-engine/internal/models"
)

// WriteReportCSV writes the report header and rows to w.
func WriteReportCSV(w io.Writer, report *models.Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(report.Header); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for _, row := range report.Rows {
		if err := writer.Write(row.Cells); err != nil {
			return fmt.Errorf("writing report row %d: %w", row.SubjectIndex, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return nil
}

// ReportCSVBytes renders the report as CSV.
func ReportCSVBytes(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
