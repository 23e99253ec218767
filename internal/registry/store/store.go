// Package store persists registration chains. Implementations must provide
// at-least serializable-per-business-key write isolation: a transition (new
// change registration plus mutations to prior chain members) is applied as
// one atomic unit with all-or-nothing failure.
package store

import (
	"context"
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "registration not found")

// Store is the persistence collaborator for registration chains.
type Store interface {
	// SaveBase persists a new chain root.
	SaveBase(ctx context.Context, reg *models.Registration) error
	// SaveTransition persists the new change registration and applies every
	// declared mutation to prior chain members atomically.
	SaveTransition(ctx context.Context, transition *models.Transition) error
	// LoadAggregate returns the chain root plus ordered change registrations
	// for the business key, or ErrNotFound.
	LoadAggregate(ctx context.Context, mhrNumber id.MHRNumber) (*models.Aggregate, error)
	// LoadBase returns the chain root alone, or ErrNotFound.
	LoadBase(ctx context.Context, mhrNumber id.MHRNumber) (*models.Registration, error)
	// LoadByID returns one registration by id, or ErrNotFound.
	LoadByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	// CountDocumentID counts existing uses of a document id (must-not-exist
	// check before accepting an externally supplied id).
	CountDocumentID(ctx context.Context, documentID string) (int, error)
	// FindMHRNumberByDocRegNumber resolves the business key of the chain
	// containing the given document registration number, or ErrNotFound.
	FindMHRNumberByDocRegNumber(ctx context.Context, docRegNumber string) (id.MHRNumber, error)
	// HasExtraGrant reports whether the account holds an extra-registration
	// grant for the business key.
	HasExtraGrant(ctx context.Context, mhrNumber id.MHRNumber, accountID id.AccountID) (bool, error)
	// AddExtraGrant records an extra-registration grant.
	AddExtraGrant(ctx context.Context, mhrNumber id.MHRNumber, accountID id.AccountID) error
	// ListByAccount returns summaries of registrations visible to the
	// account, most recent first.
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]Summary, error)
	// NextMHRNumber allocates the next business key for a new registration.
	NextMHRNumber(ctx context.Context) (id.MHRNumber, error)
}

// Summarize builds the one-row summary of a chain, as returned by account
// lists and business-key lookups.
func Summarize(agg *models.Aggregate, now time.Time) Summary {
	base := agg.Base
	summary := Summary{
		MHRNumber:               base.MHRNumber,
		RegistrationType:        base.RegistrationType,
		RegistrationDescription: catalog.DescribeRegistrationType(base.RegistrationType),
		StatusType:              base.StatusType,
		CreateDateTime:          base.RegistrationTS,
		ClientReferenceID:       base.ClientReferenceID,
		DocumentID:              base.Document.DocumentID,
		HasCaution:              agg.HasActiveCaution(now),
	}
	if sub := base.SubmittingParty(); sub != nil {
		summary.SubmittingParty = sub.Name()
	}
	for _, group := range agg.ActiveGroups() {
		for _, owner := range group.Owners {
			summary.OwnerNames = append(summary.OwnerNames, owner.Name())
		}
	}
	return summary
}

// Summary is the account-list row for one registration chain.
type Summary struct {
	MHRNumber               id.MHRNumber                  `json:"mhrNumber"`
	RegistrationType        models.RegistrationType       `json:"registrationType"`
	RegistrationDescription string                        `json:"registrationDescription"`
	StatusType              models.RegistrationStatusType `json:"statusType"`
	CreateDateTime          time.Time                     `json:"createDateTime"`
	ClientReferenceID       string                        `json:"clientReferenceId,omitempty"`
	SubmittingParty         string                        `json:"submittingParty,omitempty"`
	OwnerNames              []string                      `json:"ownerNames,omitempty"`
	DocumentID              string                        `json:"documentId,omitempty"`
	HasCaution              bool                          `json:"hasCaution"`
}
