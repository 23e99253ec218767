package models

// RegistrationType is the canonical transaction type of a registration.
// Invariant: the value must be one of the supported registration types.
//
// Usage: construct via ParseRegistrationType at trust boundaries to enforce
// the allowlist; direct casting bypasses validation.
type RegistrationType string

const (
	// RegTypeManHome is a new manufactured home registration (chain root).
	RegTypeManHome RegistrationType = "MHREG"
	// RegTypeConversion is a record converted from the predecessor system
	// (also a chain root).
	RegTypeConversion RegistrationType = "MHREG_CONVERSION"
	// RegTypeTransferSale is a standard transfer due to sale or gift.
	RegTypeTransferSale RegistrationType = "TRANS"
	// RegTypeTransferDeath transfers to surviving joint tenant(s).
	RegTypeTransferDeath RegistrationType = "TRAND"
	// RegTypeTransferWill transfers to executor, grant of probate with will.
	RegTypeTransferWill RegistrationType = "TRANS_WILL"
	// RegTypeTransferAffidavit transfers to executor, estate below the small
	// estate threshold, with will.
	RegTypeTransferAffidavit RegistrationType = "TRANS_AFFIDAVIT"
	// RegTypeTransferAdmin transfers to administrator, grant of administration.
	RegTypeTransferAdmin RegistrationType = "TRANS_ADMIN"
	// RegTypeExemptionRes is a residential exemption.
	RegTypeExemptionRes RegistrationType = "EXEMPTION_RES"
	// RegTypeExemptionNonRes is a non-residential exemption.
	RegTypeExemptionNonRes RegistrationType = "EXEMPTION_NON_RES"
	// RegTypePermit is a transport permit.
	RegTypePermit RegistrationType = "PERMIT"
	// RegTypePermitExtension extends an existing transport permit.
	RegTypePermitExtension RegistrationType = "PERMIT_EXTENSION"
	// RegTypeAmendment amends an existing transport permit.
	RegTypeAmendment RegistrationType = "AMENDMENT"
	// RegTypeUnitNote attaches a unit note (caution and similar).
	RegTypeUnitNote RegistrationType = "REG_NOTE"
	// RegTypeAdmin is a registry staff administrative action.
	RegTypeAdmin RegistrationType = "REG_STAFF_ADMIN"
)

var validRegistrationTypes = map[RegistrationType]bool{
	RegTypeManHome:           true,
	RegTypeConversion:        true,
	RegTypeTransferSale:      true,
	RegTypeTransferDeath:     true,
	RegTypeTransferWill:      true,
	RegTypeTransferAffidavit: true,
	RegTypeTransferAdmin:     true,
	RegTypeExemptionRes:      true,
	RegTypeExemptionNonRes:   true,
	RegTypePermit:            true,
	RegTypePermitExtension:   true,
	RegTypeAmendment:         true,
	RegTypeUnitNote:          true,
	RegTypeAdmin:             true,
}

// IsValid checks the registration type against the allowlist.
func (t RegistrationType) IsValid() bool {
	return validRegistrationTypes[t]
}

func (t RegistrationType) String() string {
	return string(t)
}

// IsBase reports whether the type starts a chain (new or conversion).
func (t RegistrationType) IsBase() bool {
	return t == RegTypeManHome || t == RegTypeConversion
}

// IsTransfer reports whether the type is one of the transfer variants.
func (t RegistrationType) IsTransfer() bool {
	switch t {
	case RegTypeTransferSale, RegTypeTransferDeath, RegTypeTransferWill,
		RegTypeTransferAffidavit, RegTypeTransferAdmin:
		return true
	}
	return false
}

// IsTransferDueToDeath reports whether group supersession must stamp death
// metadata onto removed owners.
func (t RegistrationType) IsTransferDueToDeath() bool {
	switch t {
	case RegTypeTransferDeath, RegTypeTransferWill, RegTypeTransferAffidavit, RegTypeTransferAdmin:
		return true
	}
	return false
}

// RegistrationStatusType is the stored lifecycle state of a registration.
type RegistrationStatusType string

const (
	StatusActive     RegistrationStatusType = "ACTIVE"
	StatusExempt     RegistrationStatusType = "EXEMPT"
	StatusCancelled  RegistrationStatusType = "CANCELLED"
	StatusHistorical RegistrationStatusType = "HISTORICAL"

	// StatusFrozen is a projection-only display state: the record is frozen
	// when the most recent change registration is an affidavit transfer. It
	// is never persisted.
	StatusFrozen RegistrationStatusType = "FROZEN"
)

// DocumentType is the canonical filing document type resolved from the
// registration type and command context.
type DocumentType string

const (
	DocTypeManHomeReg   DocumentType = "REG_101"
	DocTypeDecalReplace DocumentType = "REG_102"
	DocTypePermit       DocumentType = "REG_103"
	DocTypePermitExt    DocumentType = "REG_103E"
	DocTypeConversion   DocumentType = "CONV"

	DocTypeTransfer          DocumentType = "TRAN"
	DocTypeTransferDeath     DocumentType = "DEAT"
	DocTypeTransferWill      DocumentType = "WILL"
	DocTypeTransferAffidavit DocumentType = "AFFE"
	DocTypeTransferAdmin     DocumentType = "LETA"

	DocTypeExemptionRes     DocumentType = "EXRS"
	DocTypeExemptionNonRes  DocumentType = "EXNR"
	DocTypeExemptionRescind DocumentType = "EXRE"

	DocTypeCaution          DocumentType = "CAU"
	DocTypeCautionContinued DocumentType = "CAUC"
	DocTypeCautionExtended  DocumentType = "CAUE"

	DocTypeCancelNote         DocumentType = "NCAN"
	DocTypeNoticeOfRedemption DocumentType = "NRED"

	DocTypeCorrectionStaff  DocumentType = "REGC_STAFF"
	DocTypeCorrectionClient DocumentType = "REGC_CLIENT"
	DocTypePublicAmendment  DocumentType = "PUBA"
	DocTypeStatDeclaration  DocumentType = "STAT"

	DocTypeAmendPermit  DocumentType = "AMEND_PERMIT"
	DocTypeCancelPermit DocumentType = "CANCEL_PERMIT"
)

func (d DocumentType) String() string {
	return string(d)
}

// IsCaution reports whether the document type is a caution variant.
func (d DocumentType) IsCaution() bool {
	return d == DocTypeCaution || d == DocTypeCautionContinued || d == DocTypeCautionExtended
}

// IsPermit reports whether the document type carries a transport permit
// expiry (create, extension, or amendment).
func (d DocumentType) IsPermit() bool {
	return d == DocTypePermit || d == DocTypePermitExt || d == DocTypeAmendPermit
}

// IsNoteCancellation reports whether the document type closes an existing
// note rather than opening one.
func (d DocumentType) IsNoteCancellation() bool {
	return d == DocTypeCancelNote || d == DocTypeNoticeOfRedemption || d == DocTypeExemptionRescind
}

// PartyType distinguishes the roles a party plays on a registration.
type PartyType string

const (
	PartyOwnerIndividual PartyType = "OWNER_IND"
	PartyOwnerBusiness   PartyType = "OWNER_BUS"
	PartyExecutor        PartyType = "EXECUTOR"
	PartyAdministrator   PartyType = "ADMINISTRATOR"
	PartySubmitting      PartyType = "SUBMITTING"
	PartyNoticeContact   PartyType = "CONTACT"
)

// TenancyType describes how a group of owners holds its interest.
type TenancyType string

const (
	TenancySole          TenancyType = "SOLE"
	TenancyJoint         TenancyType = "JOINT"
	TenancyCommon        TenancyType = "COMMON"
	TenancyNotApplicable TenancyType = "NA"
)

// OwnerStatusType is the lifecycle state of an owner group or owner. Entities
// are never deleted: they move ACTIVE -> PREVIOUS when superseded.
type OwnerStatusType string

const (
	OwnerStatusActive   OwnerStatusType = "ACTIVE"
	OwnerStatusPrevious OwnerStatusType = "PREVIOUS"
)

// NoteStatusType is the lifecycle state of a note. Transitions are one way:
// ACTIVE -> CANCELLED or ACTIVE -> EXPIRED.
type NoteStatusType string

const (
	NoteStatusActive    NoteStatusType = "ACTIVE"
	NoteStatusCancelled NoteStatusType = "CANCELLED"
	NoteStatusExpired   NoteStatusType = "EXPIRED"
)
