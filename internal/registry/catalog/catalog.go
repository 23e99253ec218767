// Package catalog holds the static type tables mapping registration types to
// document types and both to display descriptions. Pure lookups, no state.
//
// A missing table entry is a configuration defect, not a user input defect:
// it surfaces as CodeInvariantViolation and must be treated as fatal by
// callers, never retried.
package catalog

import (
	"mhregistry/internal/registry/models"
	dErrors "mhregistry/pkg/domain-errors"
)

// regToDocType is the fixed table keyed by registration type.
var regToDocType = map[models.RegistrationType]models.DocumentType{
	models.RegTypeManHome:           models.DocTypeManHomeReg,
	models.RegTypeConversion:        models.DocTypeConversion,
	models.RegTypeTransferSale:      models.DocTypeTransfer,
	models.RegTypeTransferDeath:     models.DocTypeTransferDeath,
	models.RegTypeTransferWill:      models.DocTypeTransferWill,
	models.RegTypeTransferAffidavit: models.DocTypeTransferAffidavit,
	models.RegTypeTransferAdmin:     models.DocTypeTransferAdmin,
	models.RegTypeExemptionRes:      models.DocTypeExemptionRes,
	models.RegTypeExemptionNonRes:   models.DocTypeExemptionNonRes,
	models.RegTypePermit:            models.DocTypePermit,
	models.RegTypePermitExtension:   models.DocTypePermitExt,
	models.RegTypeAmendment:         models.DocTypeAmendPermit,
	models.RegTypeAdmin:             models.DocTypeCorrectionStaff,
}

// adminRetainedDocTypes are the administrative-action document types that keep
// their own type in projections and drop the declared-value field.
var adminRetainedDocTypes = map[models.DocumentType]bool{
	models.DocTypeStatDeclaration:  true,
	models.DocTypeCorrectionStaff:  true,
	models.DocTypeCorrectionClient: true,
	models.DocTypePublicAmendment:  true,
	models.DocTypeAmendPermit:      true,
	models.DocTypeCancelPermit:     true,
	models.DocTypeExemptionRescind: true,
}

// ResolveContext carries the command flags that influence document type
// resolution beyond the registration type itself.
type ResolveContext struct {
	// Override is an explicit document type in the command payload; it
	// always wins.
	Override models.DocumentType
	// TransferDocumentType refines a standard transfer (severance, quit
	// claim, and similar sub-types).
	TransferDocumentType models.DocumentType
	// NoteDocumentType is the document type of an attached note; unit notes
	// take their document type from the note.
	NoteDocumentType models.DocumentType
	// Amendment and Extension refine a transport permit.
	Amendment bool
	Extension bool
}

// ResolveDocumentType resolves the canonical document type for a registration
// type under the given context.
//
// Resolution order: explicit override, then type-specific sub-rules, then the
// fixed table. An unmapped registration type is a configuration defect.
func ResolveDocumentType(regType models.RegistrationType, rctx ResolveContext) (models.DocumentType, error) {
	if rctx.Override != "" {
		return rctx.Override, nil
	}
	switch regType {
	case models.RegTypeUnitNote:
		if rctx.NoteDocumentType == "" {
			return "", dErrors.New(dErrors.CodeValidation, "unit note requires a note document type")
		}
		return rctx.NoteDocumentType, nil
	case models.RegTypeTransferSale:
		if rctx.TransferDocumentType != "" {
			return rctx.TransferDocumentType, nil
		}
	case models.RegTypePermit:
		if rctx.Amendment {
			return models.DocTypeAmendPermit, nil
		}
		if rctx.Extension {
			return models.DocTypePermitExt, nil
		}
	case models.RegTypeAdmin:
		if rctx.NoteDocumentType != "" && adminRetainedDocTypes[rctx.NoteDocumentType] {
			return rctx.NoteDocumentType, nil
		}
	}
	docType, ok := regToDocType[regType]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvariantViolation,
			"no document type mapping for registration type %s", regType)
	}
	return docType, nil
}

// RetainsAdminDocumentType reports whether an administrative action keeps the
// given document type in projections (dropping the declared value).
func RetainsAdminDocumentType(docType models.DocumentType) bool {
	return adminRetainedDocTypes[docType]
}

var docTypeDescriptions = map[models.DocumentType]string{
	models.DocTypeManHomeReg:         "MANUFACTURED HOME REGISTRATION",
	models.DocTypeConversion:         "RECORD CONVERSION",
	models.DocTypeDecalReplace:       "DECAL REPLACEMENT",
	models.DocTypeTransfer:           "TRANSFER DUE TO SALE OR GIFT",
	models.DocTypeTransferDeath:      "TRANSFER TO SURVIVING JOINT TENANT(S)",
	models.DocTypeTransferWill:       "TRANSFER TO EXECUTOR - GRANT OF PROBATE WITH WILL",
	models.DocTypeTransferAffidavit:  "TRANSFER TO EXECUTOR - ESTATE UNDER $25,000 WITH WILL",
	models.DocTypeTransferAdmin:      "TRANSFER TO ADMINISTRATOR - GRANT OF ADMINISTRATION",
	models.DocTypeExemptionRes:       "RESIDENTIAL EXEMPTION",
	models.DocTypeExemptionNonRes:    "NON-RESIDENTIAL EXEMPTION",
	models.DocTypeExemptionRescind:   "RESCIND EXEMPTION",
	models.DocTypePermit:             "TRANSPORT PERMIT",
	models.DocTypePermitExt:          "TRANSPORT PERMIT - EXTENDED",
	models.DocTypeAmendPermit:        "AMEND TRANSPORT PERMIT",
	models.DocTypeCancelPermit:       "CANCEL TRANSPORT PERMIT",
	models.DocTypeCaution:            "CAUTION",
	models.DocTypeCautionContinued:   "CONTINUED CAUTION",
	models.DocTypeCautionExtended:    "EXTENSION TO CAUTION",
	models.DocTypeCancelNote:         "CANCEL NOTE",
	models.DocTypeNoticeOfRedemption: "NOTICE OF REDEMPTION",
	models.DocTypeCorrectionStaff:    "REGISTRAR'S CORRECTION - STAFF ERROR OR OMISSION",
	models.DocTypeCorrectionClient:   "REGISTRAR'S CORRECTION - CLIENT ERROR OR OMISSION",
	models.DocTypePublicAmendment:    "PUBLIC AMENDMENT",
	models.DocTypeStatDeclaration:    "STATUTORY DECLARATION",
}

var regTypeDescriptions = map[models.RegistrationType]string{
	models.RegTypeManHome:           "MANUFACTURED HOME REGISTRATION",
	models.RegTypeConversion:        "RECORD CONVERSION",
	models.RegTypeTransferSale:      "TRANSFER DUE TO SALE OR GIFT",
	models.RegTypeTransferDeath:     "TRANSFER TO SURVIVING JOINT TENANT(S)",
	models.RegTypeTransferWill:      "TRANSFER TO EXECUTOR - GRANT OF PROBATE WITH WILL",
	models.RegTypeTransferAffidavit: "TRANSFER TO EXECUTOR - ESTATE UNDER $25,000 WITH WILL",
	models.RegTypeTransferAdmin:     "TRANSFER TO ADMINISTRATOR - GRANT OF ADMINISTRATION",
	models.RegTypeExemptionRes:      "RESIDENTIAL EXEMPTION",
	models.RegTypeExemptionNonRes:   "NON-RESIDENTIAL EXEMPTION",
	models.RegTypePermit:            "TRANSPORT PERMIT",
	models.RegTypePermitExtension:   "TRANSPORT PERMIT - EXTENDED",
	models.RegTypeAmendment:         "AMEND TRANSPORT PERMIT",
	models.RegTypeUnitNote:          "UNIT NOTE",
	models.RegTypeAdmin:             "REGISTRY STAFF ADMINISTRATION",
}

// DescribeDocumentType returns the display description of a document type,
// or "" when unknown.
func DescribeDocumentType(docType models.DocumentType) string {
	return docTypeDescriptions[docType]
}

// DescribeRegistrationType returns the display description of a registration
// type, or "" when unknown.
func DescribeRegistrationType(regType models.RegistrationType) string {
	return regTypeDescriptions[regType]
}
