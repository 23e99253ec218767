package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "mhregistry/pkg/domain"
)

func cautionReg(docType DocumentType, status NoteStatusType, expiry *time.Time) *Registration {
	return &Registration{
		ID:   id.NewRegistrationID(),
		Note: &Note{DocumentType: docType, StatusType: status, ExpiryDate: expiry},
	}
}

func TestHasActiveCaution(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)

	tests := []struct {
		name    string
		changes []*Registration
		want    bool
	}{
		{
			name: "unexpired caution",
			changes: []*Registration{
				cautionReg(DocTypeCaution, NoteStatusActive, &future),
			},
			want: true,
		},
		{
			name: "expired caution",
			changes: []*Registration{
				cautionReg(DocTypeCaution, NoteStatusActive, &past),
			},
			want: false,
		},
		{
			name: "continued caution without expiry is permanent",
			changes: []*Registration{
				cautionReg(DocTypeCautionContinued, NoteStatusActive, nil),
			},
			want: true,
		},
		{
			name: "plain caution without expiry does not count",
			changes: []*Registration{
				cautionReg(DocTypeCaution, NoteStatusActive, nil),
			},
			want: false,
		},
		{
			name: "cancelled caution ignored",
			changes: []*Registration{
				cautionReg(DocTypeCaution, NoteStatusCancelled, &future),
			},
			want: false,
		},
		{
			// The scan stops at the first expiry-bearing caution, so a later
			// unexpired one never rescues an earlier expired one.
			name: "first expiry-bearing caution wins",
			changes: []*Registration{
				cautionReg(DocTypeCaution, NoteStatusActive, &past),
				cautionReg(DocTypeCautionExtended, NoteStatusActive, &future),
			},
			want: false,
		},
		{
			name: "permanent continuation then expired caution",
			changes: []*Registration{
				cautionReg(DocTypeCautionContinued, NoteStatusActive, nil),
				cautionReg(DocTypeCaution, NoteStatusActive, &past),
			},
			want: false,
		},
		{
			name:    "no cautions",
			changes: []*Registration{cautionReg(DocTypePermit, NoteStatusActive, &future)},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &Aggregate{Base: &Registration{}, Changes: tt.changes}
			assert.Equal(t, tt.want, agg.HasActiveCaution(now))
		})
	}
}

func TestOwnerGroupModifiedIsTransient(t *testing.T) {
	group := &OwnerGroup{GroupID: 1, TenancyType: TenancySole, Modified: true}

	data, err := json.Marshal(group)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Modified")

	restored := &OwnerGroup{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.False(t, restored.Modified)
}

func TestGroupCount(t *testing.T) {
	agg := &Aggregate{
		Base: &Registration{OwnerGroups: []*OwnerGroup{
			{GroupID: 1, StatusType: OwnerStatusPrevious},
			{GroupID: 2, StatusType: OwnerStatusPrevious},
		}},
		Changes: []*Registration{
			{OwnerGroups: []*OwnerGroup{{GroupID: 3, StatusType: OwnerStatusActive}}},
			{},
		},
	}

	// Superseded groups still count: ids are never reused.
	assert.Equal(t, 3, agg.GroupCount())

	active := agg.ActiveGroups()
	require.Len(t, active, 1)
	assert.Equal(t, 3, active[0].GroupID)
}

func TestActivePermitNote(t *testing.T) {
	first := cautionReg(DocTypePermit, NoteStatusActive, nil)
	second := cautionReg(DocTypePermitExt, NoteStatusActive, nil)
	cancelled := cautionReg(DocTypePermit, NoteStatusCancelled, nil)

	agg := &Aggregate{Base: &Registration{}, Changes: []*Registration{first, cancelled, second}}
	reg, note := agg.ActivePermitNote()
	require.NotNil(t, reg)
	assert.Equal(t, second.ID, reg.ID)
	assert.Equal(t, DocTypePermitExt, note.DocumentType)

	empty := &Aggregate{Base: &Registration{}}
	reg, note = empty.ActivePermitNote()
	assert.Nil(t, reg)
	assert.Nil(t, note)
}

func TestFindNoteByDocumentID(t *testing.T) {
	target := &Registration{
		ID:       id.NewRegistrationID(),
		Document: Document{DocumentID: "10000042"},
		Note:     &Note{DocumentType: DocTypeCaution, StatusType: NoteStatusActive},
	}
	noteless := &Registration{
		ID:       id.NewRegistrationID(),
		Document: Document{DocumentID: "10000043"},
	}
	agg := &Aggregate{Base: &Registration{}, Changes: []*Registration{noteless, target}}

	reg, note := agg.FindNoteByDocumentID("10000042")
	require.NotNil(t, reg)
	assert.Equal(t, target.ID, reg.ID)
	assert.Equal(t, DocTypeCaution, note.DocumentType)

	reg, note = agg.FindNoteByDocumentID("10000043")
	assert.Nil(t, reg)
	assert.Nil(t, note)

	reg, _ = agg.FindNoteByDocumentID("99999999")
	assert.Nil(t, reg)
}

func TestLatestChange(t *testing.T) {
	agg := &Aggregate{Base: &Registration{}}
	assert.Nil(t, agg.LatestChange())

	last := &Registration{ID: id.NewRegistrationID()}
	agg.Changes = []*Registration{{ID: id.NewRegistrationID()}, last}
	assert.Equal(t, last.ID, agg.LatestChange().ID)
}

func TestSubmittingParty(t *testing.T) {
	reg := &Registration{Parties: []Party{
		{PartyType: PartyOwnerIndividual, Individual: PersonName{First: "JANE", Last: "DOE"}},
		{PartyType: PartySubmitting, BusinessName: "NOTARY CORP"},
	}}
	sub := reg.SubmittingParty()
	require.NotNil(t, sub)
	assert.Equal(t, "NOTARY CORP", sub.BusinessName)

	assert.Nil(t, (&Registration{}).SubmittingParty())
}

func TestPartyName(t *testing.T) {
	tests := []struct {
		name  string
		party Party
		want  string
	}{
		{
			name:  "individual last first",
			party: Party{Individual: PersonName{First: "Sharon", Last: "Hall"}},
			want:  "HALL SHARON",
		},
		{
			name:  "individual with middle",
			party: Party{Individual: PersonName{First: "Sharon", Middle: "May", Last: "Hall"}},
			want:  "HALL SHARON MAY",
		},
		{
			name:  "business name upper cased",
			party: Party{BusinessName: "Acme Homes Ltd"},
			want:  "ACME HOMES LTD",
		},
		{
			name:  "individual wins over business",
			party: Party{Individual: PersonName{First: "A", Last: "B"}, BusinessName: "IGNORED"},
			want:  "B A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.party.Name())
		})
	}
}

func TestNoteIsActiveCaution(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	var nilNote *Note
	assert.False(t, nilNote.IsActiveCaution(now))

	active := &Note{DocumentType: DocTypeCaution, StatusType: NoteStatusActive, ExpiryDate: &future}
	assert.True(t, active.IsActiveCaution(now))

	permanent := &Note{DocumentType: DocTypeCautionContinued, StatusType: NoteStatusActive}
	assert.True(t, permanent.IsActiveCaution(now))

	plain := &Note{DocumentType: DocTypeCaution, StatusType: NoteStatusActive}
	assert.False(t, plain.IsActiveCaution(now))

	notCaution := &Note{DocumentType: DocTypePermit, StatusType: NoteStatusActive, ExpiryDate: &future}
	assert.False(t, notCaution.IsActiveCaution(now))
}
