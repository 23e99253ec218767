package transitions

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/groups"
	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// BuildNew constructs the chain root for a brand-new manufactured home
// registration: owner groups numbered from 1, one location, one description
// with its sections. The MHR number is assigned by the caller before payment
// so it can appear on the payment transaction.
func BuildNew(
	mhrNumber id.MHRNumber,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
) (*models.Transition, error) {
	if in.SubmittingParty == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "submitting party is required")
	}
	if len(in.OwnerGroups) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "owner groups are required for a new registration")
	}
	if in.Location == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "location is required for a new registration")
	}
	if in.Description == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required for a new registration")
	}
	docType, err := catalog.ResolveDocumentType(models.RegTypeManHome, catalog.ResolveContext{Override: in.DocumentType})
	if err != nil {
		return nil, err
	}
	ownerGroups, err := groups.CreateInitial(in.OwnerGroups)
	if err != nil {
		return nil, err
	}
	groups.NormalizeCommonInterest(ownerGroups, true)

	reg := &models.Registration{
		ID:                id.NewRegistrationID(),
		MHRNumber:         mhrNumber,
		RegistrationType:  models.RegTypeManHome,
		StatusType:        models.StatusActive,
		RegistrationTS:    now,
		AccountID:         actor.AccountID,
		UserID:            actor.Username,
		ClientReferenceID: in.ClientReferenceID,
		Document: models.Document{
			DocumentID:                 documentID(in),
			DocumentType:               docType,
			DocumentRegistrationNumber: generateDocRegNumber(),
			DeclaredValue:              in.DeclaredValue,
			OwnLand:                    in.OwnLand,
			AttentionReference:         in.AttentionReference,
			AffirmByName:               actor.AffirmByName,
		},
		OwnerGroups: ownerGroups,
		Locations:   []models.Location{buildLocation(in.Location)},
	}
	desc, sections := buildDescription(in.Description)
	reg.Descriptions = []models.Description{desc}
	reg.Sections = sections
	reg.Parties = append(reg.Parties, submittingParty(*in.SubmittingParty))

	// Chain root: no prior members to mutate.
	return &models.Transition{Registration: reg}, nil
}
