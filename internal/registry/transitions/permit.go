package transitions

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/notes"
	dErrors "mhregistry/pkg/domain-errors"
)

// BuildPermit constructs a transport permit, permit extension, or permit
// amendment. A new permit requires and carries the new location; an extension
// keeps the existing location, optionally updating its tax information; an
// amendment reuses the original permit expiry instead of recomputing it.
func BuildPermit(
	agg *models.Aggregate,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
	permitDuration time.Duration,
) (*models.Transition, error) {
	regType := models.RegTypePermit
	switch {
	case in.Amendment:
		regType = models.RegTypeAmendment
	case in.Extension:
		regType = models.RegTypePermitExtension
	}
	if !in.Extension && !in.Amendment && in.NewLocation == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "new location is required for a transport permit")
	}
	rctx := catalog.ResolveContext{
		Override:  in.DocumentType,
		Amendment: in.Amendment,
		Extension: in.Extension,
	}
	reg, err := newChange(agg.Base, in, actor, now, regType, rctx)
	if err != nil {
		return nil, err
	}
	note := notes.CreatePermit(agg, reg.Document.DocumentType, reg.Document.DocumentID, in.Amendment, now, permitDuration)

	mutations := models.Mutations{}
	if in.Extension {
		// Same location: the payload may update tax information on the
		// chain member holding the active location.
		if in.NewLocation != nil {
			locReg := latestLocationRegistration(agg)
			mutations.LocationUpdate = &models.LocationUpdate{
				RegistrationID:     locReg.ID,
				TaxCertificateDate: in.NewLocation.TaxCertificateDate,
				TaxExpiryDate:      in.NewLocation.TaxExpiryDate,
			}
		}
		if actor.Staff && in.Note != nil && in.Note.Remarks != "" {
			note.Remarks = in.Note.Remarks
		}
	} else if in.NewLocation != nil {
		reg.Locations = append(reg.Locations, buildLocation(in.NewLocation))
	}
	reg.Note = note
	return &models.Transition{Registration: reg, Mutations: mutations}, nil
}

// latestLocationRegistration returns the chain member holding the current
// location: the most recent change registration carrying one, else the root.
func latestLocationRegistration(agg *models.Aggregate) *models.Registration {
	current := agg.Base
	for _, reg := range agg.Changes {
		if len(reg.Locations) > 0 {
			current = reg
		}
	}
	return current
}
