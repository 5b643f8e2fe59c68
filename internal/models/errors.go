package models

import (
	"errors"
)

// Common errors
var (
	ErrInvalidMarketValue = errors.New("market value must be a finite number")
	ErrInvalidVPR         = errors.New("VPR must be a finite number")
	ErrSubjectOutOfRange  = errors.New("subject index out of range")
	ErrUnknownRatioBand   = errors.New("unknown ratio band policy")
	ErrUnknownOrdering    = errors.New("unknown ordering policy")
)

// ValidateSubject checks that a property can be compared against others.
func ValidateSubject(p *Property) error {
	if !p.HasValidMarketValue() {
		return ErrInvalidMarketValue
	}
	if !p.HasValidVPR() {
		return ErrInvalidVPR
	}
	return nil
}
