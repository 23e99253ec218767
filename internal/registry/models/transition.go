package models

import (
	"time"

	id "mhregistry/pkg/domain"
)

// Transition is the output of a transition builder: the new change
// registration plus the declared mutations to prior chain members. The store
// persists the whole transition as one atomic unit.
type Transition struct {
	Registration *Registration
	Mutations    Mutations
}

// Mutations lists the status changes a transition applies to prior chain
// members. Entities are never deleted; supersession stamps a new status and a
// back-reference to the superseding registration.
type Mutations struct {
	GroupSupersessions []GroupSupersession
	NoteCancellations  []NoteCancellation
	LocationUpdate     *LocationUpdate
	// BaseStatus, when set, replaces the chain root's stored status
	// (exemptions set EXEMPT).
	BaseStatus *RegistrationStatusType
}

// IsEmpty reports whether the transition touches no prior chain members.
func (m Mutations) IsEmpty() bool {
	return len(m.GroupSupersessions) == 0 && len(m.NoteCancellations) == 0 &&
		m.LocationUpdate == nil && m.BaseStatus == nil
}

// GroupSupersession marks one owner group PREVIOUS on whichever chain member
// owns it.
type GroupSupersession struct {
	// RegistrationID is the chain member (root or prior change) owning the
	// group.
	RegistrationID id.RegistrationID
	GroupID        int
	// ChangeRegistrationID is the new registration performing the
	// supersession.
	ChangeRegistrationID id.RegistrationID
	// DeceasedOwners carries death metadata to stamp onto matching owners,
	// keyed by display name. Empty except for death-transfer variants.
	DeceasedOwners []DeceasedOwner
}

// DeceasedOwner carries death metadata for one superseded owner, matched by
// display name.
type DeceasedOwner struct {
	Name                   string
	DeathCertificateNumber string
	DeathTS                *time.Time
	DeathCorpNumber        string
}

// NoteCancellation flips one note ACTIVE -> CANCELLED on the chain member
// owning it.
type NoteCancellation struct {
	// RegistrationID is the chain member owning the note.
	RegistrationID id.RegistrationID
	// ChangeRegistrationID is the new registration closing the note.
	ChangeRegistrationID id.RegistrationID
}

// LocationUpdate carries updated tax information for the existing active
// location on a same-location permit extension.
type LocationUpdate struct {
	RegistrationID     id.RegistrationID
	TaxCertificateDate *time.Time
	TaxExpiryDate      *time.Time
}
