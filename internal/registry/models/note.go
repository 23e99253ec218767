package models

import (
	"time"

	id "mhregistry/pkg/domain"
)

// Note is a lifecycle note (caution, permit, exemption, administrative note)
// bound 1:1 to the document of the registration that introduced it.
type Note struct {
	DocumentType DocumentType
	// DocumentID back-references the owning document's business id.
	DocumentID  string
	StatusType  NoteStatusType
	Remarks     string
	Destroyed   bool
	EffectiveTS time.Time
	// ExpiryDate is nil for permanent notes. Transport permits always carry a
	// computed expiry.
	ExpiryDate *time.Time
	// ChangeRegistrationID records which later registration cancelled the
	// note. Weak reference for audit lookup only.
	ChangeRegistrationID *id.RegistrationID
	GivingNoticeParty    *Party
}

// IsActiveCaution reports whether a caution note is currently in force:
// status ACTIVE and either permanent (no expiry on a continued caution) or
// unexpired.
func (n *Note) IsActiveCaution(now time.Time) bool {
	if n == nil || n.StatusType != NoteStatusActive || !n.DocumentType.IsCaution() {
		return false
	}
	if n.ExpiryDate == nil {
		return n.DocumentType == DocTypeCautionContinued
	}
	return n.ExpiryDate.After(now)
}
