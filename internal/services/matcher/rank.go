package matcher

import (
	"math"
	"sort"

	"hotel-comparables-engine/internal/models"
)

// Rank orders eligible candidates by similarity to subject and keeps the
// best MaxComparables.
func (m *Matcher) Rank(subject models.Property, eligible []models.Property) ([]models.Property, error) {
	candidates, err := m.RankCandidates(subject, eligible)
	if err != nil {
		return nil, err
	}
	return Properties(candidates), nil
}

// RankCandidates is Rank but keeps the similarity scores of each candidate.
func (m *Matcher) RankCandidates(subject models.Property, eligible []models.Property) ([]MatchCandidate, error) {
	if err := models.ValidateSubject(&subject); err != nil {
		return nil, err
	}

	candidates := make([]MatchCandidate, len(eligible))
	for i, p := range eligible {
		valueDiff := math.Abs(p.MarketValue - subject.MarketValue)
		vprDiff := math.Abs(p.VPR - subject.VPR)
		candidates[i] = MatchCandidate{
			Property:     p,
			ValueDiff:    valueDiff,
			VPRDiff:      vprDiff,
			CombinedDiff: valueDiff + vprDiff,
		}
	}

	// Stable so exact key ties keep dataset order.
	less := m.lessFunc()
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(&candidates[i], &candidates[j])
	})

	if len(candidates) > models.MaxComparables {
		candidates = candidates[:models.MaxComparables]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates, nil
}

// lessFunc returns the comparison for the active ordering policy.
func (m *Matcher) lessFunc() func(a, b *MatchCandidate) bool {
	if m.ordering == models.OrderingCombinedFirst {
		return func(a, b *MatchCandidate) bool {
			if a.CombinedDiff != b.CombinedDiff {
				return a.CombinedDiff < b.CombinedDiff
			}
			if a.ValueDiff != b.ValueDiff {
				return a.ValueDiff < b.ValueDiff
			}
			return a.VPRDiff < b.VPRDiff
		}
	}

	return func(a, b *MatchCandidate) bool {
		if a.ValueDiff != b.ValueDiff {
			return a.ValueDiff < b.ValueDiff
		}
		return a.VPRDiff < b.VPRDiff
	}
}
