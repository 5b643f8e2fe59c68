package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
)

func TestParseRatioBandPolicy(t *testing.T) {
	testCases := []struct {
		input    string
		expected models.RatioBandPolicy
	}{
		{"", models.RatioBandTwoSided},
		{"two_sided", models.RatioBandTwoSided},
		{"Two-Sided", models.RatioBandTwoSided},
		{" upper_only ", models.RatioBandUpperOnly},
		{"upper", models.RatioBandUpperOnly},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := models.ParseRatioBandPolicy(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := models.ParseRatioBandPolicy("lower_only")
	assert.ErrorIs(t, err, models.ErrUnknownRatioBand)
}

func TestParseOrderingPolicy(t *testing.T) {
	testCases := []struct {
		input    string
		expected models.OrderingPolicy
	}{
		{"", models.OrderingValueFirst},
		{"value_first", models.OrderingValueFirst},
		{"VALUE-FIRST", models.OrderingValueFirst},
		{"combined_first", models.OrderingCombinedFirst},
		{"combined", models.OrderingCombinedFirst},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := models.ParseOrderingPolicy(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := models.ParseOrderingPolicy("random")
	assert.ErrorIs(t, err, models.ErrUnknownOrdering)
}

func TestRatioBandPolicy_Bounds(t *testing.T) {
	lower, hasLower, upper := models.RatioBandTwoSided.Bounds(10)
	assert.True(t, hasLower)
	assert.Equal(t, 5.0, lower)
	assert.Equal(t, 10.0, upper)

	_, hasLower, upper = models.RatioBandUpperOnly.Bounds(10)
	assert.False(t, hasLower)
	assert.Equal(t, 15.0, upper)
}

func TestPolicies_IsValid(t *testing.T) {
	for _, p := range models.ValidRatioBandPolicies() {
		assert.True(t, p.IsValid())
	}
	for _, p := range models.ValidOrderingPolicies() {
		assert.True(t, p.IsValid())
	}
	assert.False(t, models.RatioBandPolicy("x").IsValid())
	assert.False(t, models.OrderingPolicy("").IsValid())
}
