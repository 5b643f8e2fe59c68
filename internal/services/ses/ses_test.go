package ses_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
	sesservice "hotel-comparables-engine/internal/services/ses"
)

func mockReportReadyParams() sesservice.ReportReadyParams {
	return sesservice.ReportReadyParams{
		Recipients: []string{"analyst@example.com"},
		SourceKey:  "uploads/2024/05/01/harris.csv",
		Summary: models.ReportSummary{
			ReportID:                   "7d3c1f0e-0000-4000-8000-000000000001",
			TotalSubjects:              120,
			RowsEmitted:                118,
			SubjectsSkipped:            2,
			SubjectsWithoutComparables: 9,
		},
		RatioBand:   models.RatioBandTwoSided,
		Ordering:    models.OrderingValueFirst,
		DownloadURL: "https://bucket.s3.amazonaws.com/reports/report.csv?X-Amz-Signature=abc&X-Amz-Expires=86400",
		ExpiresAt:   time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestReportReadySubject(t *testing.T) {
	assert.Equal(t, "Comparables report ready: 118 of 120 subjects", sesservice.ReportReadySubject(mockReportReadyParams()))
}

func TestRenderReportReadyText(t *testing.T) {
	text := sesservice.RenderReportReadyText(mockReportReadyParams())

	assert.Contains(t, text, "Source: uploads/2024/05/01/harris.csv")
	assert.Contains(t, text, "Subjects: 120")
	assert.Contains(t, text, "Rows emitted: 118")
	assert.Contains(t, text, "Subjects skipped: 2")
	assert.Contains(t, text, "Without comparables: 9")
	assert.Contains(t, text, "VPR band: two_sided, ordering: value_first")
	assert.Contains(t, text, "Download: https://bucket.s3.amazonaws.com/reports/report.csv")
}

func TestRenderReportReadyText_NoLink(t *testing.T) {
	params := mockReportReadyParams()
	params.DownloadURL = ""
	params.SourceKey = ""

	text := sesservice.RenderReportReadyText(params)
	assert.NotContains(t, text, "Download:")
	assert.NotContains(t, text, "Source:")
}

func TestRenderReportReadyHTML(t *testing.T) {
	html, err := sesservice.RenderReportReadyHTML(mockReportReadyParams())
	require.NoError(t, err)

	assert.Contains(t, html, "7d3c1f0e-0000-4000-8000-000000000001")
	assert.Contains(t, html, "<td>118</td>")
	assert.Contains(t, html, "two_sided")
	assert.Contains(t, html, "X-Amz-Signature=abc&amp;X-Amz-Expires=86400", "query string should be escaped in the href")
	assert.Contains(t, html, "Link expires 2024-05-02 12:00 UTC")
}

func TestRenderReportReadyHTML_EscapesSourceKey(t *testing.T) {
	params := mockReportReadyParams()
	params.SourceKey = "uploads/<script>.csv"

	html, err := sesservice.RenderReportReadyHTML(params)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
