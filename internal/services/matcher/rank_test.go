package matcher_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
)

func TestRank_EmptyInput(t *testing.T) {
	m := newTestMatcher(t, "", "")

	ranked, err := m.Rank(mockSubject(), nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRank_KeepsTopFive(t *testing.T) {
	m := newTestMatcher(t, "", "")
	subject := mockSubject()

	values := []float64{1070000, 1010000, 1060000, 1020000, 1050000, 1030000, 1040000}
	var eligible []models.Property
	for i, v := range values {
		eligible = append(eligible, mockCandidate(string(rune('a'+i)), map[string]interface{}{"market_value": v}))
	}

	ranked, err := m.RankCandidates(subject, eligible)
	require.NoError(t, err)
	require.Len(t, ranked, models.MaxComparables)

	assert.Equal(t, []string{"b", "d", "f", "g", "e"}, names(propertiesOf(ranked)))
	for i, c := range ranked {
		assert.Equal(t, i+1, c.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, c.ValueDiff, ranked[i-1].ValueDiff, "value diffs must be non-decreasing")
		}
	}
}

func TestRank_FewerThanFive(t *testing.T) {
	m := newTestMatcher(t, "", "")
	subject := mockSubject()

	eligible := []models.Property{
		mockCandidate("far", map[string]interface{}{"market_value": 1090000.0}),
		mockCandidate("near", map[string]interface{}{"market_value": 1001000.0}),
	}

	ranked, err := m.Rank(subject, eligible)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "far"}, names(ranked))
}

func TestRank_ValueFirstTieBreaksOnVPR(t *testing.T) {
	m := newTestMatcher(t, "", models.OrderingValueFirst)
	subject := mockSubject()

	eligible := []models.Property{
		mockCandidate("vpr6", map[string]interface{}{"vpr": 6.0}),
		mockCandidate("vpr9", map[string]interface{}{"vpr": 9.0}),
	}

	ranked, err := m.Rank(subject, eligible)
	require.NoError(t, err)
	assert.Equal(t, []string{"vpr9", "vpr6"}, names(ranked))
}

func TestRank_StableOnExactTies(t *testing.T) {
	for _, ordering := range models.ValidOrderingPolicies() {
		t.Run(string(ordering), func(t *testing.T) {
			m := newTestMatcher(t, "", ordering)
			subject := mockSubject()

			eligible := []models.Property{
				mockCandidate("first", nil),
				mockCandidate("second", nil),
				mockCandidate("third", nil),
			}

			ranked, err := m.Rank(subject, eligible)
			require.NoError(t, err)
			assert.Equal(t, []string{"first", "second", "third"}, names(ranked))
		})
	}
}

func TestRank_OrderingPoliciesDiffer(t *testing.T) {
	subject := mockSubject()
	// a: value diff 10, VPR diff 100, combined 110
	// b: value diff 20, VPR diff 1, combined 21
	eligible := []models.Property{
		mockCandidate("a", map[string]interface{}{"market_value": 1000010.0, "vpr": 110.0}),
		mockCandidate("b", map[string]interface{}{"market_value": 1000020.0, "vpr": 11.0}),
	}

	valueFirst := newTestMatcher(t, "", models.OrderingValueFirst)
	ranked, err := valueFirst.Rank(subject, eligible)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(ranked))

	combinedFirst := newTestMatcher(t, "", models.OrderingCombinedFirst)
	ranked, err = combinedFirst.Rank(subject, eligible)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(ranked))
}

func TestRank_CombinedFirstTieBreaks(t *testing.T) {
	m := newTestMatcher(t, "", models.OrderingCombinedFirst)
	subject := mockSubject()

	// Both combine to 12: "x" has value diff 10, "y" has value diff 8.
	eligible := []models.Property{
		mockCandidate("x", map[string]interface{}{"market_value": 1000010.0, "vpr": 8.0}),
		mockCandidate("y", map[string]interface{}{"market_value": 1000008.0, "vpr": 6.0}),
	}

	ranked, err := m.Rank(subject, eligible)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, names(ranked))
}

func TestRank_InvalidSubject(t *testing.T) {
	m := newTestMatcher(t, "", "")
	subject := mockSubject()
	subject.MarketValue = math.NaN()

	_, err := m.Rank(subject, []models.Property{mockCandidate("c", nil)})
	assert.ErrorIs(t, err, models.ErrInvalidMarketValue)
}
