package models

import (
	"fmt"
	"strings"
)

// Fixed matching constants.
const (
	// MaxComparables is the number of comparables kept per subject.
	MaxComparables = 5
	// MarketValueBand is the absolute +/- band around the subject's market value.
	MarketValueBand = 100000.0
)

// RatioBandPolicy selects how a candidate's VPR is bounded by the subject's.
type RatioBandPolicy string

const (
	// RatioBandTwoSided keeps candidates with subject.VPR/2 <= VPR <= subject.VPR.
	RatioBandTwoSided RatioBandPolicy = "two_sided"
	// RatioBandUpperOnly keeps candidates with VPR <= subject.VPR*1.5, no lower bound.
	RatioBandUpperOnly RatioBandPolicy = "upper_only"
)

// DefaultRatioBandPolicy is used when nothing is configured.
const DefaultRatioBandPolicy = RatioBandTwoSided

// ValidRatioBandPolicies returns all ratio band policies.
func ValidRatioBandPolicies() []RatioBandPolicy {
	return []RatioBandPolicy{RatioBandTwoSided, RatioBandUpperOnly}
}

// IsValid checks if the policy is known.
func (p RatioBandPolicy) IsValid() bool {
	for _, valid := range ValidRatioBandPolicies() {
		if p == valid {
			return true
		}
	}
	return false
}

// Bounds returns the inclusive VPR range a candidate must fall in for a
// subject with the given VPR. hasLower is false when the policy has no lower bound.
func (p RatioBandPolicy) Bounds(subjectVPR float64) (lower float64, hasLower bool, upper float64) {
	switch p {
	case RatioBandUpperOnly:
		return 0, false, subjectVPR * 1.5
	default:
		return subjectVPR / 2, true, subjectVPR
	}
}

// ParseRatioBandPolicy converts a configuration string to a policy.
// An empty string yields the default.
func ParseRatioBandPolicy(s string) (RatioBandPolicy, error) {
	normalized := normalizePolicy(s)
	if normalized == "" {
		return DefaultRatioBandPolicy, nil
	}

	aliases := map[string]RatioBandPolicy{
		"two_sided":  RatioBandTwoSided,
		"twosided":   RatioBandTwoSided,
		"band":       RatioBandTwoSided,
		"upper_only": RatioBandUpperOnly,
		"upperonly":  RatioBandUpperOnly,
		"upper":      RatioBandUpperOnly,
		"one_sided":  RatioBandUpperOnly,
	}
	if p, ok := aliases[normalized]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRatioBand, s)
}

// OrderingPolicy selects the sort key used to rank eligible candidates.
type OrderingPolicy string

const (
	// OrderingValueFirst sorts by (value diff, VPR diff).
	OrderingValueFirst OrderingPolicy = "value_first"
	// OrderingCombinedFirst sorts by (value diff + VPR diff, value diff, VPR diff).
	OrderingCombinedFirst OrderingPolicy = "combined_first"
)

// DefaultOrderingPolicy is used when nothing is configured.
const DefaultOrderingPolicy = OrderingValueFirst

// ValidOrderingPolicies returns all ordering policies.
func ValidOrderingPolicies() []OrderingPolicy {
	return []OrderingPolicy{OrderingValueFirst, OrderingCombinedFirst}
}

// IsValid checks if the policy is known.
func (p OrderingPolicy) IsValid() bool {
	for _, valid := range ValidOrderingPolicies() {
		if p == valid {
			return true
		}
	}
	return false
}

// ParseOrderingPolicy converts a configuration string to a policy.
// An empty string yields the default.
func ParseOrderingPolicy(s string) (OrderingPolicy, error) {
	normalized := normalizePolicy(s)
	if normalized == "" {
		return DefaultOrderingPolicy, nil
	}

	aliases := map[string]OrderingPolicy{
		"value_first":    OrderingValueFirst,
		"valuefirst":     OrderingValueFirst,
		"value":          OrderingValueFirst,
		"combined_first": OrderingCombinedFirst,
		"combinedfirst":  OrderingCombinedFirst,
		"combined":       OrderingCombinedFirst,
	}
	if p, ok := aliases[normalized]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrdering, s)
}

func normalizePolicy(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return normalized
}
