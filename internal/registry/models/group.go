package models

import (
	id "mhregistry/pkg/domain"
)

// OwnerGroup is one tenancy group of owners on a registration.
//
// GroupID is assigned once per business key, monotonically increasing, and
// never reused even after supersession. GroupSequenceNumber is the group's
// position among currently active groups and is recomputed per mutation.
type OwnerGroup struct {
	GroupID              int
	GroupSequenceNumber  int
	TenancyType          TenancyType
	StatusType           OwnerStatusType
	Interest             string
	InterestNumerator    int
	InterestDenominator  int
	ChangeRegistrationID *id.RegistrationID
	Owners               []*Party

	// Modified marks groups touched by the in-flight transition so interest
	// normalization only rescales what the transition created or changed.
	// Transient: never persisted.
	Modified bool `json:"-"`
}

// HasInterest reports whether the group carries a fractional interest.
func (g *OwnerGroup) HasInterest() bool {
	return g.InterestNumerator > 0 && g.InterestDenominator > 0
}

// IsActiveCommon reports whether the group participates in common-interest
// denominator normalization.
func (g *OwnerGroup) IsActiveCommon() bool {
	return g.TenancyType == TenancyCommon && g.StatusType == OwnerStatusActive
}
