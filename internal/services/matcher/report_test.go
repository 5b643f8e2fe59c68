package matcher_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
)

func TestBuildReport_Shape(t *testing.T) {
	m := newTestMatcher(t, "", "")
	subject := mockSubject()
	x := mockCandidate("X", nil)
	ds := models.NewDataset([]models.Property{subject, x}, nil)

	report, err := m.BuildReport(context.Background(), ds)
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err, "report ID should be a UUID")
	assert.Equal(t, models.ReportHeader(), report.Header)
	assert.Equal(t, 2, report.TotalSubjects)
	assert.Empty(t, report.Skipped)
	require.Len(t, report.Rows, 2)

	for i, row := range report.Rows {
		assert.Equal(t, i, row.SubjectIndex)
		assert.Len(t, row.Cells, 54)
	}

	first := report.Rows[0]
	assert.Equal(t, "Subject Hotel", first.Cells[1])
	assert.Equal(t, 1, first.ComparableCount)
	assert.Equal(t, "X", first.Cells[10])
	assert.Equal(t, "1050000", first.Cells[12])
}

func TestBuildReport_NoEligibleCandidates(t *testing.T) {
	m := newTestMatcher(t, "", "")
	lonely := mockCandidate("lonely", map[string]interface{}{"class": "Z"})
	ds := models.NewDataset([]models.Property{mockSubject(), lonely}, nil)

	report, err := m.BuildReport(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	row := report.Rows[1]
	assert.Equal(t, "lonely", row.Cells[1])
	for i := 9; i < 54; i++ {
		assert.Equal(t, "", row.Cells[i], "comparable cell %d should be blank", i)
	}
	// Neither property has a comparable.
	assert.Equal(t, 2, report.SubjectsWithoutComparables)
}

func TestBuildReport_SkipsInvalidSubjects(t *testing.T) {
	m := newTestMatcher(t, "", "")
	broken := mockCandidate("broken", map[string]interface{}{"vpr": math.NaN()})
	ds := models.NewDataset([]models.Property{mockSubject(), broken, mockCandidate("X", nil)}, nil)

	report, err := m.BuildReport(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, 0, report.Rows[0].SubjectIndex)
	assert.Equal(t, 2, report.Rows[1].SubjectIndex)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.Equal(t, "broken", report.Skipped[0].Name)
	assert.ErrorIs(t, report.Err(), models.ErrInvalidVPR)

	// The broken row is never a comparable either.
	assert.Equal(t, 1, report.Rows[0].ComparableCount)
}

func TestBuildReport_PreservesOrderWithManyWorkers(t *testing.T) {
	m := newTestMatcher(t, "", "")

	var props []models.Property
	for i := 0; i < 60; i++ {
		props = append(props, mockCandidate(fmt.Sprintf("hotel-%02d", i), map[string]interface{}{
			"market_value": 1000000 + float64(i)*1000,
			"vpr":          10 - float64(i%3),
		}))
	}
	ds := models.NewDataset(props, nil)

	report, err := m.BuildReport(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, report.Rows, 60)

	for i, row := range report.Rows {
		assert.Equal(t, i, row.SubjectIndex)
		assert.Equal(t, fmt.Sprintf("hotel-%02d", i), row.Cells[1])
		assert.LessOrEqual(t, row.ComparableCount, models.MaxComparables)
	}
}

func TestBuildReport_Cancelled(t *testing.T) {
	m := newTestMatcher(t, "", "")
	ds := models.NewDataset([]models.Property{mockSubject(), mockCandidate("X", nil)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := m.BuildReport(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 2, report.TotalSubjects)
}

func TestBuildReport_EmptyDataset(t *testing.T) {
	m := newTestMatcher(t, "", "")

	report, err := m.BuildReport(context.Background(), models.NewDataset(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Len(t, report.Header, 54)
}
