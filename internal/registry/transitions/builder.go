// Package transitions holds one pure construction function per business
// transaction. Each builder validates its input fully, resolves the document
// type through the catalog, delegates group and note mutations to the
// lifecycle managers, and returns the assembled transition for atomic
// persistence. Builders never contact the store and never partially
// construct: validation precedes any entity assembly.
package transitions

import (
	"time"

	"github.com/google/uuid"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// Actor identifies who is performing the transition.
type Actor struct {
	AccountID    id.AccountID
	Username     string
	AffirmByName string
	Staff        bool
}

// newChange assembles the common skeleton shared by all change registrations:
// identity, timestamp, status, resolved document type, and submitting party.
func newChange(
	base *models.Registration,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
	regType models.RegistrationType,
	rctx catalog.ResolveContext,
) (*models.Registration, error) {
	if in.SubmittingParty == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "submitting party is required")
	}
	docType, err := catalog.ResolveDocumentType(regType, rctx)
	if err != nil {
		return nil, err
	}
	reg := &models.Registration{
		ID:                id.NewRegistrationID(),
		MHRNumber:         base.MHRNumber,
		RegistrationType:  regType,
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
			ConsiderationValue:         in.ConsiderationValue,
			TransferDate:               in.TransferDate,
			AttentionReference:         in.AttentionReference,
			AffirmByName:               actor.AffirmByName,
		},
	}
	reg.Parties = append(reg.Parties, submittingParty(*in.SubmittingParty))
	return reg, nil
}

func documentID(in *models.TransitionInput) string {
	if in.DocumentID != "" {
		return in.DocumentID
	}
	if in.Note != nil && in.Note.DocumentID != "" {
		return in.Note.DocumentID
	}
	return generateDocumentID()
}

// generateDocumentID produces a fresh 8 character document id. Uniqueness is
// enforced by the store's document-id count check before persistence.
func generateDocumentID() string {
	return "1" + digits(7)
}

func generateDocRegNumber() string {
	return digits(8)
}

// digits derives n decimal digits from a fresh UUID.
func digits(n int) string {
	u := uuid.New()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = '0' + u[i]%10
	}
	return string(out)
}

func submittingParty(in models.PartyInput) models.Party {
	p := partyFromInput(in)
	p.PartyType = models.PartySubmitting
	return p
}

func noticeContact(in models.PartyInput) models.Party {
	p := partyFromInput(in)
	p.PartyType = models.PartyNoticeContact
	return p
}

func partyFromInput(in models.PartyInput) models.Party {
	p := models.Party{
		PartyType:    in.PartyType,
		BusinessName: in.OrganizationName,
		Address:      in.Address,
		EmailAddress: in.EmailAddress,
		PhoneNumber:  in.PhoneNumber,
		Description:  in.Description,
		StatusType:   models.OwnerStatusActive,
	}
	if in.IndividualName != nil {
		p.Individual = *in.IndividualName
	}
	return p
}

func buildLocation(in *models.LocationInput) models.Location {
	return models.Location{
		LocationType:          in.LocationType,
		Address:               in.Address,
		ParkName:              in.ParkName,
		PadNumber:             in.PadNumber,
		PIDNumber:             in.PIDNumber,
		DealerName:            in.DealerName,
		AdditionalDescription: in.AdditionalDescription,
		LeaveProvince:         in.LeaveProvince,
		TaxCertificateDate:    in.TaxCertificateDate,
		TaxExpiryDate:         in.TaxExpiryDate,
		ExceptionPlan:         in.ExceptionPlan,
	}
}

func buildDescription(in *models.DescriptionInput) (models.Description, []models.Section) {
	desc := models.Description{
		Manufacturer: in.Manufacturer,
		BaseInformation: models.BaseInformation{
			Make:  in.Make,
			Model: in.Model,
			Year:  in.Year,
			Circa: in.Circa,
		},
		CSANumber:      in.CSANumber,
		CSAStandard:    in.CSAStandard,
		EngineerName:   in.EngineerName,
		EngineerDate:   in.EngineerDate,
		SectionCount:   len(in.Sections),
		RebuiltRemarks: in.RebuiltRemarks,
		OtherRemarks:   in.OtherRemarks,
	}
	sections := make([]models.Section, 0, len(in.Sections))
	for _, s := range in.Sections {
		sections = append(sections, models.Section{
			SerialNumber: s.SerialNumber,
			LengthFeet:   s.LengthFeet,
			LengthInches: s.LengthInches,
			WidthFeet:    s.WidthFeet,
			WidthInches:  s.WidthInches,
		})
	}
	return desc, sections
}
