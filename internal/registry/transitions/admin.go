package transitions

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/groups"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/notes"
	dErrors "mhregistry/pkg/domain-errors"
)

// Document types under which an administrative action may replace the
// location, the description, or the owner groups. Anything outside the
// allow-list carries its note only.
var (
	adminLocationDocTypes = map[models.DocumentType]bool{
		models.DocTypeCorrectionClient: true,
		models.DocTypeCorrectionStaff:  true,
		models.DocTypeExemptionRescind: true,
		models.DocTypeStatDeclaration:  true,
		models.DocTypePublicAmendment:  true,
		models.DocTypeCancelPermit:     true,
	}
	adminDescriptionDocTypes = map[models.DocumentType]bool{
		models.DocTypeCorrectionClient: true,
		models.DocTypeCorrectionStaff:  true,
		models.DocTypeExemptionRescind: true,
		models.DocTypePublicAmendment:  true,
	}
	adminGroupDocTypes = map[models.DocumentType]bool{
		models.DocTypeCorrectionClient: true,
		models.DocTypeCorrectionStaff:  true,
		models.DocTypeExemptionRescind: true,
		models.DocTypePublicAmendment:  true,
	}
	adminCancelNoteDocTypes = map[models.DocumentType]bool{
		models.DocTypeCancelNote:         true,
		models.DocTypeNoticeOfRedemption: true,
		models.DocTypeExemptionRescind:   true,
	}
)

// BuildAdmin constructs a registry staff administrative action. The document
// type gates which parts of the record the action may touch: note
// cancellation, location or description replacement, owner group changes, or
// permit cancellation.
func BuildAdmin(
	agg *models.Aggregate,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
) (*models.Transition, error) {
	if in.DocumentType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "administrative action requires a document type")
	}
	noteDocType := models.DocumentType("")
	if in.Note != nil {
		noteDocType = in.Note.DocumentType
	}
	rctx := catalog.ResolveContext{
		Override:         in.DocumentType,
		NoteDocumentType: noteDocType,
	}
	reg, err := newChange(agg.Base, in, actor, now, models.RegTypeAdmin, rctx)
	if err != nil {
		return nil, err
	}
	docType := reg.Document.DocumentType
	if in.Note != nil {
		reg.Note = notes.Create(in.Note, docType, reg.Document.DocumentID, now)
		if in.Note.GivingNoticeParty != nil {
			reg.Parties = append(reg.Parties, noticeContact(*in.Note.GivingNoticeParty))
		}
	}
	if in.Location != nil && adminLocationDocTypes[docType] {
		reg.Locations = append(reg.Locations, buildLocation(in.Location))
	}
	if in.Description != nil && adminDescriptionDocTypes[docType] {
		desc, sections := buildDescription(in.Description)
		reg.Descriptions = []models.Description{desc}
		reg.Sections = sections
	}

	mutations := models.Mutations{}
	if len(in.AddOwnerGroups) > 0 && len(in.DeleteOwnerGroups) > 0 && adminGroupDocTypes[docType] {
		supersessions, err := groups.Supersede(agg, in.DeleteOwnerGroups, reg.ID, models.RegTypeAdmin)
		if err != nil {
			return nil, err
		}
		added, err := groups.Append(in.AddOwnerGroups, agg.GroupCount())
		if err != nil {
			return nil, err
		}
		groups.NormalizeCommonInterest(added, false)
		reg.OwnerGroups = added
		mutations.GroupSupersessions = supersessions
	}

	cancelTarget := in.UpdateDocumentID
	if cancelTarget == "" {
		cancelTarget = in.CancelDocumentID
	}
	if cancelTarget != "" && adminCancelNoteDocTypes[docType] {
		targetReg, targetNote := agg.FindNoteByDocumentID(cancelTarget)
		if targetNote == nil {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "note to cancel not found for document id %s", cancelTarget)
		}
		if targetNote.StatusType != models.NoteStatusActive {
			return nil, dErrors.Newf(dErrors.CodeValidation, "note for document id %s is not active", cancelTarget)
		}
		mutations.NoteCancellations = append(mutations.NoteCancellations, models.NoteCancellation{
			RegistrationID:       targetReg.ID,
			ChangeRegistrationID: reg.ID,
		})
	}
	if docType == models.DocTypeCancelPermit {
		mutations.NoteCancellations = append(mutations.NoteCancellations, notes.CancelActivePermits(agg, reg.ID)...)
	}
	return &models.Transition{Registration: reg, Mutations: mutations}, nil
}
