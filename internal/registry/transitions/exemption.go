package transitions

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/notes"
	dErrors "mhregistry/pkg/domain-errors"
)

// BuildExemption constructs a residential or non-residential exemption. The
// transition freezes the record: the chain root's status becomes EXEMPT and
// any open transport permit note on the chain is cancelled without reverting
// the location.
func BuildExemption(
	agg *models.Aggregate,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
) (*models.Transition, error) {
	if in.Note == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "exemption requires a note")
	}
	regType := models.RegTypeExemptionRes
	if in.NonResidential {
		regType = models.RegTypeExemptionNonRes
	}
	reg, err := newChange(agg.Base, in, actor, now, regType, catalog.ResolveContext{Override: in.DocumentType})
	if err != nil {
		return nil, err
	}
	reg.Note = notes.Create(in.Note, reg.Document.DocumentType, reg.Document.DocumentID, now)
	if in.Note.GivingNoticeParty != nil {
		reg.Parties = append(reg.Parties, noticeContact(*in.Note.GivingNoticeParty))
	}

	exempt := models.StatusExempt
	return &models.Transition{
		Registration: reg,
		Mutations: models.Mutations{
			BaseStatus:        &exempt,
			NoteCancellations: notes.CancelActivePermits(agg, reg.ID),
		},
	}, nil
}
