package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mhregistry/internal/registry/models"
	dErrors "mhregistry/pkg/domain-errors"
)

func TestResolveDocumentType(t *testing.T) {
	tests := []struct {
		name    string
		regType models.RegistrationType
		rctx    ResolveContext
		want    models.DocumentType
	}{
		{"new registration maps to REG_101", models.RegTypeManHome, ResolveContext{}, models.DocTypeManHomeReg},
		{"conversion maps to CONV", models.RegTypeConversion, ResolveContext{}, models.DocTypeConversion},
		{"override always wins", models.RegTypeManHome, ResolveContext{Override: models.DocTypeDecalReplace}, models.DocTypeDecalReplace},
		{"standard transfer defaults to TRAN", models.RegTypeTransferSale, ResolveContext{}, models.DocTypeTransfer},
		{"transfer sub-type refines TRANS", models.RegTypeTransferSale, ResolveContext{TransferDocumentType: "QUIT"}, "QUIT"},
		{"death transfer maps to DEAT", models.RegTypeTransferDeath, ResolveContext{}, models.DocTypeTransferDeath},
		{"permit maps to REG_103", models.RegTypePermit, ResolveContext{}, models.DocTypePermit},
		{"permit amendment maps to AMEND_PERMIT", models.RegTypePermit, ResolveContext{Amendment: true}, models.DocTypeAmendPermit},
		{"permit extension maps to REG_103E", models.RegTypePermit, ResolveContext{Extension: true}, models.DocTypePermitExt},
		{"unit note takes the note document type", models.RegTypeUnitNote, ResolveContext{NoteDocumentType: models.DocTypeCaution}, models.DocTypeCaution},
		{"admin retains allow-listed note type", models.RegTypeAdmin, ResolveContext{NoteDocumentType: models.DocTypeStatDeclaration}, models.DocTypeStatDeclaration},
		{"admin falls back past non-retained note type", models.RegTypeAdmin, ResolveContext{NoteDocumentType: models.DocTypeCaution}, models.DocTypeCorrectionStaff},
		{"residential exemption maps to EXRS", models.RegTypeExemptionRes, ResolveContext{}, models.DocTypeExemptionRes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDocumentType(tt.regType, tt.rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDocumentTypeErrors(t *testing.T) {
	t.Run("unit note without note document type", func(t *testing.T) {
		_, err := ResolveDocumentType(models.RegTypeUnitNote, ResolveContext{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unmapped registration type is an invariant violation", func(t *testing.T) {
		_, err := ResolveDocumentType("BOGUS", ResolveContext{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestDescriptions(t *testing.T) {
	assert.Equal(t, "TRANSPORT PERMIT", DescribeDocumentType(models.DocTypePermit))
	assert.Equal(t, "MANUFACTURED HOME REGISTRATION", DescribeRegistrationType(models.RegTypeManHome))
	assert.Empty(t, DescribeDocumentType("UNKNOWN"))
}

func TestRetainsAdminDocumentType(t *testing.T) {
	assert.True(t, RetainsAdminDocumentType(models.DocTypePublicAmendment))
	assert.True(t, RetainsAdminDocumentType(models.DocTypeCancelPermit))
	assert.False(t, RetainsAdminDocumentType(models.DocTypeCaution))
}
