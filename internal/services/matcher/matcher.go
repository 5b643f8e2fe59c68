// Package matcher implements the comparable-property matching pipeline:
// eligibility filter, ranking and the batch report builder.
package matcher

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/utils"
)

// Options configures a Matcher.
type Options struct {
	RatioBand models.RatioBandPolicy
	Ordering  models.OrderingPolicy
	// Workers bounds the number of subjects processed concurrently by BuildReport.
	Workers int
	Logger  *zap.Logger
}

// DefaultOptions returns the two-sided band, value-first configuration.
func DefaultOptions() Options {
	return Options{
		RatioBand: models.DefaultRatioBandPolicy,
		Ordering:  models.DefaultOrderingPolicy,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// OptionsFromConfig builds matcher options from the application config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	band, ordering, err := cfg.Policies()
	if err != nil {
		return Options{}, err
	}
	return Options{
		RatioBand: band,
		Ordering:  ordering,
		Workers:   cfg.ReportWorkers,
	}, nil
}

// Matcher finds comparables for subject properties. It holds no state
// besides its configuration and is safe for concurrent use.
type Matcher struct {
	ratioBand models.RatioBandPolicy
	ordering  models.OrderingPolicy
	workers   int
	logger    *zap.Logger
}

// MatchCandidate is a ranked comparable together with its similarity scores.
type MatchCandidate struct {
	models.Property
	Rank         int     `json:"rank"`
	ValueDiff    float64 `json:"value_diff"`
	VPRDiff      float64 `json:"vpr_diff"`
	CombinedDiff float64 `json:"combined_diff"`
}

// NewMatcher creates a matcher. Empty policies fall back to the defaults.
func NewMatcher(opts Options) (*Matcher, error) {
	if opts.RatioBand == "" {
		opts.RatioBand = models.DefaultRatioBandPolicy
	}
	if opts.Ordering == "" {
		opts.Ordering = models.DefaultOrderingPolicy
	}
	if !opts.RatioBand.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownRatioBand, opts.RatioBand)
	}
	if !opts.Ordering.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownOrdering, opts.Ordering)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}

	return &Matcher{
		ratioBand: opts.RatioBand,
		ordering:  opts.Ordering,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}, nil
}

// RatioBand returns the active ratio band policy.
func (m *Matcher) RatioBand() models.RatioBandPolicy {
	return m.ratioBand
}

// Ordering returns the active ordering policy.
func (m *Matcher) Ordering() models.OrderingPolicy {
	return m.ordering
}

// FindComparables runs the filter and ranking stages for one subject.
func (m *Matcher) FindComparables(subject models.Property, dataset []models.Property) ([]MatchCandidate, error) {
	eligible, err := m.Filter(subject, dataset)
	if err != nil {
		return nil, err
	}
	return m.RankCandidates(subject, eligible)
}

// Properties strips the scores from ranked candidates.
func Properties(candidates []MatchCandidate) []models.Property {
	props := make([]models.Property, len(candidates))
	for i, c := range candidates {
		props[i] = c.Property
	}
	return props
}
