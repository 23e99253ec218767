package projection

import (
	"time"

	"mhregistry/internal/registry/models"
)

// View is the projected state of a registration: either a single chain
// member's own data or the folded current state of the whole record,
// depending on which projection produced it.
type View struct {
	MHRNumber                  string                        `json:"mhrNumber"`
	CreateDateTime             time.Time                     `json:"createDateTime"`
	RegistrationType           models.RegistrationType       `json:"registrationType"`
	Status                     models.RegistrationStatusType `json:"status"`
	FrozenDocumentType         models.DocumentType           `json:"frozenDocumentType,omitempty"`
	DocumentID                 string                        `json:"documentId,omitempty"`
	DocumentType               models.DocumentType           `json:"documentType,omitempty"`
	DocumentDescription        string                        `json:"documentDescription,omitempty"`
	DocumentRegistrationNumber string                        `json:"documentRegistrationNumber,omitempty"`
	// DeclaredValue is nil when the document type drops it from projections
	// (administrative actions on the retained allow-list).
	DeclaredValue      *int   `json:"declaredValue,omitempty"`
	OwnLand            bool   `json:"ownLand"`
	ClientReferenceID  string `json:"clientReferenceId,omitempty"`
	AttentionReference string `json:"attentionReference,omitempty"`
	AffirmByName       string `json:"affirmByName,omitempty"`

	SubmittingParty *PartyView       `json:"submittingParty,omitempty"`
	Location        *models.Location `json:"location,omitempty"`
	Description     *DescriptionView `json:"description,omitempty"`
	OwnerGroups     []GroupView      `json:"ownerGroups,omitempty"`
	Notes           []NoteView       `json:"notes,omitempty"`

	HasCaution bool                     `json:"hasCaution"`
	Permit     *PermitView              `json:"permit,omitempty"`
	Payment    *models.PaymentReference `json:"payment,omitempty"`
}

// PartyView is the projected form of a party.
type PartyView struct {
	PartyType    models.PartyType `json:"partyType"`
	Name         string           `json:"name"`
	Address      models.Address   `json:"address"`
	EmailAddress string           `json:"emailAddress,omitempty"`
	PhoneNumber  string           `json:"phoneNumber,omitempty"`
}

// DescriptionView bundles the home description with its sections.
type DescriptionView struct {
	models.Description
	Sections []models.Section `json:"sections"`
}

// GroupView is the projected form of an owner group.
type GroupView struct {
	GroupID             int                    `json:"groupId"`
	GroupSequenceNumber int                    `json:"groupSequenceNumber"`
	TenancyType         models.TenancyType     `json:"type"`
	StatusType          models.OwnerStatusType `json:"status"`
	Interest            string                 `json:"interest,omitempty"`
	InterestNumerator   int                    `json:"interestNumerator,omitempty"`
	InterestDenominator int                    `json:"interestDenominator,omitempty"`
	Owners              []OwnerView            `json:"owners"`
}

// OwnerView is the projected form of an owner.
type OwnerView struct {
	PartyType              models.PartyType       `json:"partyType"`
	Name                   string                 `json:"name"`
	Address                models.Address         `json:"address"`
	StatusType             models.OwnerStatusType `json:"status"`
	DeathCertificateNumber string                 `json:"deathCertificateNumber,omitempty"`
	DeathDateTime          *time.Time             `json:"deathDateTime,omitempty"`
}

// NoteView is the projected form of a lifecycle note. DocumentID and Remarks
// are internal-only and cleared for non-staff projections.
type NoteView struct {
	DocumentType        models.DocumentType   `json:"documentType"`
	DocumentDescription string                `json:"documentDescription,omitempty"`
	DocumentID          string                `json:"documentId,omitempty"`
	StatusType          models.NoteStatusType `json:"status"`
	Remarks             string                `json:"remarks,omitempty"`
	EffectiveDateTime   time.Time             `json:"effectiveDateTime"`
	ExpiryDateTime      *time.Time            `json:"expiryDateTime,omitempty"`
	GivingNoticeParty   *PartyView            `json:"givingNoticeParty,omitempty"`
}

// PermitView carries the derived transport permit state on current views.
type PermitView struct {
	Status                     models.NoteStatusType `json:"status"`
	ExpiryDateTime             time.Time             `json:"expiryDateTime"`
	DocumentRegistrationNumber string                `json:"registrationNumber,omitempty"`
}
