package transitions

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/notes"
	dErrors "mhregistry/pkg/domain-errors"
)

// BuildUnitNote constructs a unit note registration (cautions and similar).
// When the note's document type denotes cancellation of an existing note, the
// transaction is really an administrative action and is delegated to
// BuildAdmin with the cancellation target carried over.
func BuildUnitNote(
	agg *models.Aggregate,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
) (*models.Transition, error) {
	if in.Note == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "unit note requires a note")
	}
	noteDocType := in.Note.DocumentType
	if noteDocType == models.DocTypeCancelNote || noteDocType == models.DocTypeNoticeOfRedemption {
		delegated := *in
		delegated.DocumentType = noteDocType
		delegated.UpdateDocumentID = in.CancelDocumentID
		return BuildAdmin(agg, &delegated, actor, now)
	}
	rctx := catalog.ResolveContext{
		Override:         in.DocumentType,
		NoteDocumentType: noteDocType,
	}
	reg, err := newChange(agg.Base, in, actor, now, models.RegTypeUnitNote, rctx)
	if err != nil {
		return nil, err
	}
	reg.Note = notes.Create(in.Note, reg.Document.DocumentType, reg.Document.DocumentID, now)
	if in.Note.GivingNoticeParty != nil {
		reg.Parties = append(reg.Parties, noticeContact(*in.Note.GivingNoticeParty))
	}
	return &models.Transition{Registration: reg}, nil
}
