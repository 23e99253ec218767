// Package domain holds the typed identifiers shared across features.
//
// IDs are distinct types over uuid.UUID so the compiler rejects accidental
// cross-assignment. Construct them via the Parse helpers at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "mhregistry/pkg/domain-errors"
)

// RegistrationID identifies one registration row (base or change).
type RegistrationID uuid.UUID

// NewRegistrationID generates a fresh registration id.
func NewRegistrationID() RegistrationID {
	return RegistrationID(uuid.New())
}

// ParseRegistrationID validates external input into a RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RegistrationID{}, err
	}
	return RegistrationID(u), nil
}

func (id RegistrationID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id RegistrationID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so the id serializes as its
// canonical string form.
func (id RegistrationID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *RegistrationID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	*id = RegistrationID(u)
	return nil
}

// AccountID identifies the account submitting or owning a registration. It is
// an opaque external identifier, not a UUID.
type AccountID string

func (a AccountID) String() string {
	return string(a)
}

// IsEmpty reports whether no account was supplied.
func (a AccountID) IsEmpty() bool {
	return a == ""
}

// MHRNumber is the business key identifying one record's entire lifecycle
// chain: a zero-padded six digit number.
type MHRNumber string

const mhrNumberLength = 6

// ParseMHRNumber normalizes and validates an externally supplied MHR number.
// Short values are zero-padded on the left, matching registry convention.
func ParseMHRNumber(s string) (MHRNumber, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "MHR number cannot be empty")
	}
	if len(trimmed) > mhrNumberLength {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "MHR number %q exceeds %d characters", trimmed, mhrNumberLength)
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", dErrors.Newf(dErrors.CodeInvalidInput, "MHR number %q must be numeric", trimmed)
		}
	}
	for len(trimmed) < mhrNumberLength {
		trimmed = "0" + trimmed
	}
	return MHRNumber(trimmed), nil
}

func (m MHRNumber) String() string {
	return string(m)
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be nil")
	}
	return u, nil
}
