// Package projection folds a registration aggregate into its point-in-time
// views. All projections are pure functions of (aggregate, view parameters,
// clock): the same inputs always produce identical output, so the same
// aggregate can be projected concurrently under different parameters.
package projection

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/models"
)

// Snapshot projects exactly the root registration's own data, as originally
// filed, plus the HasCaution flag derived from the whole chain.
func Snapshot(agg *models.Aggregate, now time.Time) View {
	view := registrationView(agg.Base, true)
	view.HasCaution = agg.HasActiveCaution(now)
	return view
}

// Search projects the search version of the record: the chain is always
// folded, and notes are included with internal fields cleared unless staff.
func Search(agg *models.Aggregate, staff bool, now time.Time) View {
	return fold(agg, staff, now)
}

// Composite projects the current/composite version. When currentView is
// false it behaves like Snapshot; when true it folds the chain and overrides
// the status to FROZEN whenever the most recent change registration is an
// affidavit transfer.
func Composite(agg *models.Aggregate, currentView, staff bool, now time.Time) View {
	if !currentView {
		return Snapshot(agg, now)
	}
	view := fold(agg, staff, now)
	if last := agg.LatestChange(); last != nil && last.RegistrationType == models.RegTypeTransferAffidavit {
		view.Status = models.StatusFrozen
		view.FrozenDocumentType = models.DocTypeTransferAffidavit
	}
	return view
}

// Registration projects a single change registration's own data, for
// responses returned right after a transition.
func Registration(reg *models.Registration, agg *models.Aggregate, now time.Time) View {
	view := registrationView(reg, true)
	if agg != nil {
		view.HasCaution = agg.HasActiveCaution(now)
	}
	return view
}

// fold scans the chain in chronological order: the most recent change
// registration carrying a location or description replaces the prior one,
// and owner groups are the union of all ACTIVE groups across root and chain.
// Folding is idempotent by construction.
func fold(agg *models.Aggregate, staff bool, now time.Time) View {
	view := registrationView(agg.Base, false)
	view.HasCaution = agg.HasActiveCaution(now)

	location := currentLocation(agg)
	view.Location = &location
	if desc := currentDescription(agg); desc != nil {
		view.Description = desc
	}
	view.OwnerGroups = groupViews(agg.ActiveGroups())
	view.Notes = noteViews(agg, staff)
	view.Permit = permitView(agg, now)
	return view
}

// registrationView builds the view of one registration's own data.
func registrationView(reg *models.Registration, ownData bool) View {
	doc := reg.Document
	view := View{
		MHRNumber:                  reg.MHRNumber.String(),
		CreateDateTime:             reg.RegistrationTS,
		RegistrationType:           reg.RegistrationType,
		Status:                     reg.StatusType,
		DocumentID:                 doc.DocumentID,
		DocumentDescription:        catalog.DescribeDocumentType(doc.DocumentType),
		DocumentRegistrationNumber: doc.DocumentRegistrationNumber,
		OwnLand:                    doc.OwnLand,
		ClientReferenceID:          reg.ClientReferenceID,
		AttentionReference:         doc.AttentionReference,
		AffirmByName:               doc.AffirmByName,
		Payment:                    reg.Payment,
	}
	// Administrative actions on the retained allow-list keep their document
	// type visible and drop the declared value.
	if reg.RegistrationType == models.RegTypeAdmin && catalog.RetainsAdminDocumentType(doc.DocumentType) {
		view.DocumentType = doc.DocumentType
	} else {
		declared := doc.DeclaredValue
		view.DeclaredValue = &declared
	}
	if sub := reg.SubmittingParty(); sub != nil {
		pv := partyView(*sub)
		view.SubmittingParty = &pv
	}
	if ownData {
		if len(reg.Locations) > 0 {
			loc := reg.Locations[len(reg.Locations)-1]
			view.Location = &loc
		}
		if len(reg.Descriptions) > 0 {
			view.Description = &DescriptionView{
				Description: reg.Descriptions[len(reg.Descriptions)-1],
				Sections:    append([]models.Section(nil), reg.Sections...),
			}
		}
		view.OwnerGroups = groupViews(reg.OwnerGroups)
		if reg.Note != nil {
			view.Notes = []NoteView{noteView(reg.Note, true)}
		}
	}
	return view
}

func currentLocation(agg *models.Aggregate) models.Location {
	current := models.Location{}
	if len(agg.Base.Locations) > 0 {
		current = agg.Base.Locations[len(agg.Base.Locations)-1]
	}
	for _, reg := range agg.Changes {
		if len(reg.Locations) > 0 {
			current = reg.Locations[len(reg.Locations)-1]
		}
	}
	return current
}

func currentDescription(agg *models.Aggregate) *DescriptionView {
	var current *DescriptionView
	pick := func(reg *models.Registration) {
		if len(reg.Descriptions) > 0 {
			current = &DescriptionView{
				Description: reg.Descriptions[len(reg.Descriptions)-1],
				Sections:    append([]models.Section(nil), reg.Sections...),
			}
		}
	}
	pick(agg.Base)
	for _, reg := range agg.Changes {
		pick(reg)
	}
	return current
}

func groupViews(groups []*models.OwnerGroup) []GroupView {
	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		gv := GroupView{
			GroupID:             g.GroupID,
			GroupSequenceNumber: g.GroupSequenceNumber,
			TenancyType:         g.TenancyType,
			StatusType:          g.StatusType,
			Interest:            g.Interest,
			InterestNumerator:   g.InterestNumerator,
			InterestDenominator: g.InterestDenominator,
		}
		for _, owner := range g.Owners {
			gv.Owners = append(gv.Owners, OwnerView{
				PartyType:              owner.PartyType,
				Name:                   owner.Name(),
				Address:                owner.Address,
				StatusType:             owner.StatusType,
				DeathCertificateNumber: owner.DeathCertificateNumber,
				DeathDateTime:          owner.DeathTS,
			})
		}
		views = append(views, gv)
	}
	return views
}

func noteViews(agg *models.Aggregate, staff bool) []NoteView {
	var views []NoteView
	for _, reg := range agg.Changes {
		if reg.Note == nil {
			continue
		}
		views = append(views, noteView(reg.Note, staff))
	}
	return views
}

func noteView(note *models.Note, staff bool) NoteView {
	nv := NoteView{
		DocumentType:        note.DocumentType,
		DocumentDescription: catalog.DescribeDocumentType(note.DocumentType),
		StatusType:          note.StatusType,
		EffectiveDateTime:   note.EffectiveTS,
		ExpiryDateTime:      note.ExpiryDate,
	}
	if staff {
		nv.DocumentID = note.DocumentID
		nv.Remarks = note.Remarks
	}
	if note.GivingNoticeParty != nil {
		pv := partyView(*note.GivingNoticeParty)
		nv.GivingNoticeParty = &pv
	}
	return nv
}

func permitView(agg *models.Aggregate, now time.Time) *PermitView {
	reg, note := agg.ActivePermitNote()
	if note == nil || note.ExpiryDate == nil {
		return nil
	}
	status := note.StatusType
	if !note.ExpiryDate.After(now) {
		status = models.NoteStatusExpired
	}
	return &PermitView{
		Status:                     status,
		ExpiryDateTime:             *note.ExpiryDate,
		DocumentRegistrationNumber: reg.Document.DocumentRegistrationNumber,
	}
}

func partyView(p models.Party) PartyView {
	return PartyView{
		PartyType:    p.PartyType,
		Name:         p.Name(),
		Address:      p.Address,
		EmailAddress: p.EmailAddress,
		PhoneNumber:  p.PhoneNumber,
	}
}
