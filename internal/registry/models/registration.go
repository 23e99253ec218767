package models

import (
	"time"

	id "mhregistry/pkg/domain"
)

// Document is the filing document owned by exactly one registration.
type Document struct {
	DocumentID                 string
	DocumentType               DocumentType
	DocumentRegistrationNumber string
	DeclaredValue              int
	OwnLand                    bool
	ConsiderationValue         string
	TransferDate               *time.Time
	AttentionReference         string
	AffirmByName               string
}

// Location is where the home is sited.
type Location struct {
	LocationType          string     `json:"locationType,omitempty"`
	Address               Address    `json:"address"`
	ParkName              string     `json:"parkName,omitempty"`
	PadNumber             string     `json:"pad,omitempty"`
	PIDNumber             string     `json:"pidNumber,omitempty"`
	DealerName            string     `json:"dealerName,omitempty"`
	AdditionalDescription string     `json:"additionalDescription,omitempty"`
	LeaveProvince         bool       `json:"leaveProvince,omitempty"`
	TaxCertificateDate    *time.Time `json:"taxCertificateDate,omitempty"`
	TaxExpiryDate         *time.Time `json:"taxExpiryDate,omitempty"`
	ExceptionPlan         string     `json:"exceptionPlan,omitempty"`
}

// Description describes the manufactured home itself.
type Description struct {
	Manufacturer    string          `json:"manufacturer,omitempty"`
	BaseInformation BaseInformation `json:"baseInformation"`
	CSANumber       string          `json:"csaNumber,omitempty"`
	CSAStandard     string          `json:"csaStandard,omitempty"`
	EngineerName    string          `json:"engineerName,omitempty"`
	EngineerDate    *time.Time      `json:"engineerDate,omitempty"`
	SectionCount    int             `json:"sectionCount"`
	RebuiltRemarks  string          `json:"rebuiltRemarks,omitempty"`
	OtherRemarks    string          `json:"otherRemarks,omitempty"`
}

// BaseInformation captures make, model, and year of manufacture.
type BaseInformation struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Year  int    `json:"year,omitempty"`
	Circa bool   `json:"circa,omitempty"`
}

// Section is one physical section of the home.
type Section struct {
	SerialNumber string `json:"serialNumber"`
	LengthFeet   int    `json:"lengthFeet"`
	LengthInches int    `json:"lengthInches,omitempty"`
	WidthFeet    int    `json:"widthFeet"`
	WidthInches  int    `json:"widthInches,omitempty"`
}

// PaymentReference is the opaque payment linkage recorded on a registration.
type PaymentReference struct {
	InvoiceID string `json:"invoiceId,omitempty"`
	Receipt   string `json:"receipt,omitempty"`
}

// Registration is one immutable change event in a record's lifecycle chain.
// The base registration (MHREG or MHREG_CONVERSION) is the chain root; every
// other registration sharing the same MHR number is a change registration.
type Registration struct {
	ID                id.RegistrationID
	MHRNumber         id.MHRNumber
	RegistrationType  RegistrationType
	StatusType        RegistrationStatusType
	RegistrationTS    time.Time
	AccountID         id.AccountID
	UserID            string
	ClientReferenceID string
	Payment           *PaymentReference

	Document     Document
	Note         *Note
	Locations    []Location
	Descriptions []Description
	Sections     []Section
	Parties      []Party
	OwnerGroups  []*OwnerGroup
}

// IsTransfer reports whether the registration is one of the transfer types.
func (r *Registration) IsTransfer() bool {
	return r.RegistrationType.IsTransfer()
}

// SubmittingParty returns the submitting party, or nil when absent.
func (r *Registration) SubmittingParty() *Party {
	for i := range r.Parties {
		if r.Parties[i].PartyType == PartySubmitting {
			return &r.Parties[i]
		}
	}
	return nil
}

// Aggregate is the chain root plus the ordered (by timestamp) change
// registrations for one business key.
type Aggregate struct {
	Base    *Registration
	Changes []*Registration
}

// HasActiveCaution walks the change registrations looking for a caution note
// in force. The scan stops at the first expiry-bearing caution found, so only
// the most recent such note determines the flag; earlier cautions are not
// combined. This mirrors longstanding registry behavior and is preserved
// deliberately.
func (a *Aggregate) HasActiveCaution(now time.Time) bool {
	hasCaution := false
	for _, reg := range a.Changes {
		note := reg.Note
		if note == nil || !note.DocumentType.IsCaution() || note.StatusType != NoteStatusActive {
			continue
		}
		if note.ExpiryDate == nil && note.DocumentType == DocTypeCautionContinued {
			hasCaution = true
		} else if note.ExpiryDate != nil {
			hasCaution = note.ExpiryDate.After(now)
			break
		}
	}
	return hasCaution
}

// GroupCount returns the total number of owner groups ever created across the
// chain, regardless of status. New group ids continue from this count so ids
// are never reused within a business key's lifetime.
func (a *Aggregate) GroupCount() int {
	count := len(a.Base.OwnerGroups)
	for _, reg := range a.Changes {
		count += len(reg.OwnerGroups)
	}
	return count
}

// ActiveGroups returns all ACTIVE owner groups across root and chain, in
// chain order.
func (a *Aggregate) ActiveGroups() []*OwnerGroup {
	var groups []*OwnerGroup
	for _, g := range a.Base.OwnerGroups {
		if g.StatusType == OwnerStatusActive {
			groups = append(groups, g)
		}
	}
	for _, reg := range a.Changes {
		for _, g := range reg.OwnerGroups {
			if g.StatusType == OwnerStatusActive {
				groups = append(groups, g)
			}
		}
	}
	return groups
}

// ActivePermitNote returns the most recent ACTIVE permit note on the chain
// together with its owning registration, or nils when no permit is open.
func (a *Aggregate) ActivePermitNote() (*Registration, *Note) {
	var foundReg *Registration
	var foundNote *Note
	for _, reg := range a.Changes {
		note := reg.Note
		if note != nil && note.StatusType == NoteStatusActive && note.DocumentType.IsPermit() {
			foundReg, foundNote = reg, note
		}
	}
	return foundReg, foundNote
}

// FindNoteByDocumentID locates a note on the chain by its owning document's
// business id, for cancellation targeting.
func (a *Aggregate) FindNoteByDocumentID(documentID string) (*Registration, *Note) {
	for _, reg := range a.Changes {
		if reg.Note != nil && reg.Document.DocumentID == documentID {
			return reg, reg.Note
		}
	}
	return nil, nil
}

// LatestChange returns the most recent change registration, or nil for a
// bare root.
func (a *Aggregate) LatestChange() *Registration {
	if len(a.Changes) == 0 {
		return nil
	}
	return a.Changes[len(a.Changes)-1]
}
