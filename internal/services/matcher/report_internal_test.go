package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hotel-comparables-engine/internal/models"
)

func TestBuildReport_RecoversSubjectPanic(t *testing.T) {
	flattenRow = func(dataset *models.Dataset, subject models.Property, comparables []models.Property) models.FlatRow {
		if subject.Index == 1 {
			panic("corrupt row")
		}
		return models.FlattenRow(dataset, subject, comparables)
	}
	t.Cleanup(func() { flattenRow = models.FlattenRow })

	m, err := NewMatcher(Options{Workers: 2, Logger: zap.NewNop()})
	require.NoError(t, err)

	hotel := func(name string) models.Property {
		return models.Property{
			Name:         name,
			Address:      name + " address",
			OwnerName:    name + " owner",
			OwnerAddress: name + " owner address",
			Class:        "A",
			Type:         models.PropertyTypeHotel,
			MarketValue:  1000000,
			VPR:          10,
		}
	}
	dataset := models.NewDataset([]models.Property{hotel("a"), hotel("b"), hotel("c")}, nil)

	report, err := m.BuildReport(context.Background(), dataset)
	require.NoError(t, err, "one failing subject must not fail the batch")

	require.Len(t, report.Rows, 2)
	assert.Equal(t, 0, report.Rows[0].SubjectIndex)
	assert.Equal(t, 2, report.Rows[1].SubjectIndex)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.Equal(t, "b", report.Skipped[0].Name)
	assert.ErrorIs(t, report.Skipped[0].Err, ErrSubjectFailed)
	assert.Contains(t, report.Skipped[0].Reason, "corrupt row")
	assert.ErrorIs(t, report.Err(), ErrSubjectFailed)
}
