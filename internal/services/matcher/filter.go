package matcher

import (
	"hotel-comparables-engine/internal/models"
)

// EligibilityCheck holds the outcome of each rule for one subject/candidate pair.
type EligibilityCheck struct {
	IdentityDistinct bool `json:"identity_distinct"`
	ClassMatch       bool `json:"class_match"`
	TypeMatch        bool `json:"type_match"`
	ValueInBand      bool `json:"value_in_band"`
	VPRInBand        bool `json:"vpr_in_band"`
}

// Passed reports whether every rule holds.
func (c EligibilityCheck) Passed() bool {
	return c.IdentityDistinct && c.ClassMatch && c.TypeMatch && c.ValueInBand && c.VPRInBand
}

// Filter returns the candidates of dataset that qualify as comparables for
// subject, in dataset order. The result is never nil.
func (m *Matcher) Filter(subject models.Property, dataset []models.Property) ([]models.Property, error) {
	if err := models.ValidateSubject(&subject); err != nil {
		return nil, err
	}

	eligible := make([]models.Property, 0)
	for i := range dataset {
		if m.Explain(subject, dataset[i]).Passed() {
			eligible = append(eligible, dataset[i])
		}
	}

	return eligible, nil
}

// Explain evaluates every eligibility rule for a candidate.
func (m *Matcher) Explain(subject, candidate models.Property) EligibilityCheck {
	return EligibilityCheck{
		IdentityDistinct: identityDistinct(subject, candidate),
		ClassMatch:       sharedValue(candidate.Class, subject.Class),
		TypeMatch:        candidate.Type == models.PropertyTypeHotel,
		ValueInBand:      valueInBand(subject, candidate),
		VPRInBand:        m.vprInBand(subject, candidate),
	}
}

// identityDistinct requires all four identity fields to differ, so a
// candidate sharing any one of them with the subject is rejected. A blank
// field is missing and shares nothing. A candidate whose four fields are all
// equal to the subject's, blanks included, is the subject itself.
func identityDistinct(subject, candidate models.Property) bool {
	if sameIdentity(subject, candidate) {
		return false
	}
	return !sharedValue(candidate.Name, subject.Name) &&
		!sharedValue(candidate.Address, subject.Address) &&
		!sharedValue(candidate.OwnerName, subject.OwnerName) &&
		!sharedValue(candidate.OwnerAddress, subject.OwnerAddress)
}

func sameIdentity(subject, candidate models.Property) bool {
	return candidate.Name == subject.Name &&
		candidate.Address == subject.Address &&
		candidate.OwnerName == subject.OwnerName &&
		candidate.OwnerAddress == subject.OwnerAddress
}

// sharedValue reports whether two cells hold the same value. Blank cells
// never match, not even each other.
func sharedValue(a, b string) bool {
	return a != "" && a == b
}

func valueInBand(subject, candidate models.Property) bool {
	// NaN fails both comparisons.
	return candidate.MarketValue >= subject.MarketValue-models.MarketValueBand &&
		candidate.MarketValue <= subject.MarketValue+models.MarketValueBand
}

func (m *Matcher) vprInBand(subject, candidate models.Property) bool {
	lower, hasLower, upper := m.ratioBand.Bounds(subject.VPR)
	if !candidate.HasValidVPR() {
		return false
	}
	if hasLower && candidate.VPR < lower {
		return false
	}
	return candidate.VPR <= upper
}
