// Package notes manages the note lifecycle: creation bound 1:1 to the
// introducing registration's document, permit expiry computation, and
// cancellation stamping.
package notes

import (
	"time"

	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
)

// DefaultPermitDuration is how long a new transport permit stays in force.
const DefaultPermitDuration = 30 * 24 * time.Hour

// Create builds a note from payload input, bound to the given document.
func Create(in *models.NoteInput, docType models.DocumentType, docID string, effectiveTS time.Time) *models.Note {
	note := &models.Note{
		DocumentType: docType,
		DocumentID:   docID,
		StatusType:   models.NoteStatusActive,
		EffectiveTS:  effectiveTS,
	}
	if in != nil {
		note.Remarks = in.Remarks
		if in.EffectiveDateTime != nil {
			note.EffectiveTS = *in.EffectiveDateTime
		}
		if in.ExpiryDateTime != nil {
			expiry := *in.ExpiryDateTime
			note.ExpiryDate = &expiry
		}
	}
	return note
}

// CreatePermit builds the note recording a transport permit's expiry. A new
// permit or extension expires duration from now, at end of day. An amendment
// reuses the original expiry: the chain is scanned for the most recent ACTIVE
// note whose document type is permit, extension, or amendment, and that
// expiry carries over unchanged.
func CreatePermit(
	agg *models.Aggregate,
	docType models.DocumentType,
	docID string,
	amendment bool,
	now time.Time,
	duration time.Duration,
) *models.Note {
	expiry := ComputePermitExpiry(now, duration)
	note := &models.Note{
		DocumentType: docType,
		DocumentID:   docID,
		StatusType:   models.NoteStatusActive,
		EffectiveTS:  now,
		ExpiryDate:   &expiry,
	}
	if amendment {
		for _, reg := range agg.Changes {
			prior := reg.Note
			if prior != nil && prior.StatusType == models.NoteStatusActive &&
				prior.ExpiryDate != nil && prior.DocumentType.IsPermit() {
				carried := *prior.ExpiryDate
				note.ExpiryDate = &carried
			}
		}
	}
	return note
}

// ComputePermitExpiry returns the permit expiry: duration from now, pushed to
// end of day UTC.
func ComputePermitExpiry(now time.Time, duration time.Duration) time.Time {
	if duration <= 0 {
		duration = DefaultPermitDuration
	}
	expiry := now.Add(duration).UTC()
	return time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 23, 59, 59, 0, time.UTC)
}

// Cancel stamps one note cancellation onto the in-memory chain member owning
// the note. The store calls this inside its atomic unit.
func Cancel(reg *models.Registration, mutation models.NoteCancellation) {
	if reg.Note == nil || reg.Note.StatusType != models.NoteStatusActive {
		return
	}
	changeID := mutation.ChangeRegistrationID
	reg.Note.StatusType = models.NoteStatusCancelled
	reg.Note.ChangeRegistrationID = &changeID
}

// CancelActivePermits returns cancellation mutations for every ACTIVE permit
// note on the chain. Exemptions close open transport permits without
// reverting the location.
func CancelActivePermits(agg *models.Aggregate, newRegID id.RegistrationID) []models.NoteCancellation {
	var cancellations []models.NoteCancellation
	for _, reg := range agg.Changes {
		note := reg.Note
		if note != nil && note.StatusType == models.NoteStatusActive && note.DocumentType.IsPermit() {
			cancellations = append(cancellations, models.NoteCancellation{
				RegistrationID:       reg.ID,
				ChangeRegistrationID: newRegID,
			})
		}
	}
	return cancellations
}
