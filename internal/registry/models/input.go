package models

import "time"

// TransitionInput is the command payload for every transition builder. Each
// builder validates the fields it requires before constructing anything;
// unused fields are ignored.
type TransitionInput struct {
	RegistrationType   RegistrationType `json:"registrationType,omitempty"`
	DocumentType       DocumentType     `json:"documentType,omitempty"`
	DocumentID         string           `json:"documentId,omitempty"`
	ClientReferenceID  string           `json:"clientReferenceId,omitempty"`
	AttentionReference string           `json:"attentionReference,omitempty"`

	SubmittingParty *PartyInput `json:"submittingParty,omitempty"`

	// New registration fields.
	OwnerGroups []OwnerGroupInput `json:"ownerGroups,omitempty"`
	Location    *LocationInput    `json:"location,omitempty"`
	Description *DescriptionInput `json:"description,omitempty"`

	DeclaredValue      int        `json:"declaredValue,omitempty"`
	OwnLand            bool       `json:"ownLand,omitempty"`
	ConsiderationValue string     `json:"consideration,omitempty"`
	TransferDate       *time.Time `json:"transferDate,omitempty"`

	// Transfer fields.
	TransferDocumentType DocumentType       `json:"transferDocumentType,omitempty"`
	AddOwnerGroups       []OwnerGroupInput  `json:"addOwnerGroups,omitempty"`
	DeleteOwnerGroups    []DeleteGroupInput `json:"deleteOwnerGroups,omitempty"`

	// Exemption fields.
	NonResidential bool `json:"nonResidential,omitempty"`

	// Permit fields.
	NewLocation *LocationInput `json:"newLocation,omitempty"`
	Amendment   bool           `json:"amendment,omitempty"`
	Extension   bool           `json:"extension,omitempty"`

	// Note / admin fields.
	Note             *NoteInput `json:"note,omitempty"`
	CancelDocumentID string     `json:"cancelDocumentId,omitempty"`
	UpdateDocumentID string     `json:"updateDocumentId,omitempty"`

	// Staff fee routing; ignored on client filings.
	StaffPayment *StaffPaymentInput `json:"staffPayment,omitempty"`
}

// StaffPaymentInput carries the fee routing details of a staff filing.
type StaffPaymentInput struct {
	WaiveFees         bool   `json:"waiveFees,omitempty"`
	RoutingSlipNumber string `json:"routingSlipNumber,omitempty"`
	BCOLAccountNumber string `json:"bcolAccountNumber,omitempty"`
	DATNumber         string `json:"datNumber,omitempty"`
}

// PartyInput is a submitting party, owner, or notice contact as supplied by
// the caller.
type PartyInput struct {
	PartyType        PartyType   `json:"partyType,omitempty"`
	IndividualName   *PersonName `json:"individualName,omitempty"`
	OrganizationName string      `json:"organizationName,omitempty"`
	Address          Address     `json:"address"`
	EmailAddress     string      `json:"emailAddress,omitempty"`
	PhoneNumber      string      `json:"phoneNumber,omitempty"`
	Description      string      `json:"description,omitempty"`

	// Death metadata, supplied on delete instructions of death transfers.
	DeathCertificateNumber string     `json:"deathCertificateNumber,omitempty"`
	DeathDateTime          *time.Time `json:"deathDateTime,omitempty"`
	DeathCorpNumber        string     `json:"deathCorpNumber,omitempty"`
}

// OwnerGroupInput describes one owner group to create.
type OwnerGroupInput struct {
	// GroupID is the payload-declared group identifier, used as the sequence
	// number for fractional-interest groups on change registrations.
	GroupID             int          `json:"groupId,omitempty"`
	TenancyType         TenancyType  `json:"type"`
	Interest            string       `json:"interest,omitempty"`
	InterestNumerator   int          `json:"interestNumerator,omitempty"`
	InterestDenominator int          `json:"interestDenominator,omitempty"`
	Owners              []PartyInput `json:"owners"`
}

// DeleteGroupInput identifies an existing group to supersede.
type DeleteGroupInput struct {
	GroupID int `json:"groupId"`
	// Owners carry death metadata for death-transfer supersession, matched
	// to existing owners by name.
	Owners []PartyInput `json:"owners,omitempty"`
}

// LocationInput describes a home location.
type LocationInput struct {
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

// DescriptionInput describes the home, including its physical sections.
type DescriptionInput struct {
	Manufacturer   string         `json:"manufacturer,omitempty"`
	Make           string         `json:"make,omitempty"`
	Model          string         `json:"model,omitempty"`
	Year           int            `json:"year,omitempty"`
	Circa          bool           `json:"circa,omitempty"`
	CSANumber      string         `json:"csaNumber,omitempty"`
	CSAStandard    string         `json:"csaStandard,omitempty"`
	EngineerName   string         `json:"engineerName,omitempty"`
	EngineerDate   *time.Time     `json:"engineerDate,omitempty"`
	RebuiltRemarks string         `json:"rebuiltRemarks,omitempty"`
	OtherRemarks   string         `json:"otherRemarks,omitempty"`
	Sections       []SectionInput `json:"sections"`
}

// SectionInput is one physical section of the home.
type SectionInput struct {
	SerialNumber string `json:"serialNumber"`
	LengthFeet   int    `json:"lengthFeet"`
	LengthInches int    `json:"lengthInches,omitempty"`
	WidthFeet    int    `json:"widthFeet"`
	WidthInches  int    `json:"widthInches,omitempty"`
}

// NoteInput describes a lifecycle note to attach.
type NoteInput struct {
	DocumentType      DocumentType `json:"documentType,omitempty"`
	DocumentID        string       `json:"documentId,omitempty"`
	Remarks           string       `json:"remarks,omitempty"`
	EffectiveDateTime *time.Time   `json:"effectiveDateTime,omitempty"`
	ExpiryDateTime    *time.Time   `json:"expiryDateTime,omitempty"`
	GivingNoticeParty *PartyInput  `json:"givingNoticeParty,omitempty"`
}
