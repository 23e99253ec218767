package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"mhregistry/internal/registry/projection"
	"mhregistry/internal/registry/store"
	"mhregistry/internal/registry/transitions"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/requestcontext"
)

// GetRegistration returns the full view of a registration chain. Visibility
// requires staff access, holding the chain, or an extra-registration grant.
// currentView selects the folded composite; otherwise the chain root's own
// data is returned with change history summarized.
func (s *Service) GetRegistration(ctx context.Context, mhrNumber id.MHRNumber, actor transitions.Actor, currentView bool) (projection.View, error) {
	ctx, span := s.tracer.Start(ctx, "registry.GetRegistration")
	defer span.End()
	span.SetAttributes(attribute.String("mhr_number", mhrNumber.String()))
	s.recordSearch()

	agg, err := s.store.LoadAggregate(ctx, mhrNumber)
	if err != nil {
		return projection.View{}, err
	}
	if err := s.authorizeView(ctx, agg.Base.MHRNumber, agg.Base.AccountID, actor); err != nil {
		return projection.View{}, err
	}
	return projection.Composite(agg, currentView, actor.Staff, requestcontext.Now(ctx)), nil
}

// Search returns the current-state view of a registration chain. Search is
// open to any authenticated account; staff-only fields stay hidden for
// client accounts.
func (s *Service) Search(ctx context.Context, mhrNumber id.MHRNumber, actor transitions.Actor) (projection.View, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Search")
	defer span.End()
	span.SetAttributes(attribute.String("mhr_number", mhrNumber.String()))
	s.recordSearch()

	agg, err := s.store.LoadAggregate(ctx, mhrNumber)
	if err != nil {
		return projection.View{}, err
	}
	return projection.Search(agg, actor.Staff, requestcontext.Now(ctx)), nil
}

// GetRegistrationSummary resolves the chain containing the given document
// registration number and returns its summary row. The same visibility
// contract as GetRegistration applies.
func (s *Service) GetRegistrationSummary(ctx context.Context, docRegNumber string, actor transitions.Actor) (store.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "registry.GetRegistrationSummary")
	defer span.End()
	span.SetAttributes(attribute.String("doc_reg_number", docRegNumber))

	mhrNumber, err := s.store.FindMHRNumberByDocRegNumber(ctx, docRegNumber)
	if err != nil {
		return store.Summary{}, err
	}
	agg, err := s.store.LoadAggregate(ctx, mhrNumber)
	if err != nil {
		return store.Summary{}, err
	}
	if err := s.authorizeView(ctx, agg.Base.MHRNumber, agg.Base.AccountID, actor); err != nil {
		return store.Summary{}, err
	}
	return store.Summarize(agg, requestcontext.Now(ctx)), nil
}

// ListAccountRegistrations returns summaries of every chain the account
// holds or has been granted access to.
func (s *Service) ListAccountRegistrations(ctx context.Context, actor transitions.Actor) ([]store.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "registry.ListAccountRegistrations")
	defer span.End()

	summaries, err := s.store.ListByAccount(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// AddToAccount grants the actor's account visibility of a chain it does not
// hold. The chain must exist; holding accounts gain nothing from a grant.
func (s *Service) AddToAccount(ctx context.Context, mhrNumber id.MHRNumber, actor transitions.Actor) error {
	ctx, span := s.tracer.Start(ctx, "registry.AddToAccount")
	defer span.End()
	span.SetAttributes(attribute.String("mhr_number", mhrNumber.String()))

	base, err := s.store.LoadBase(ctx, mhrNumber)
	if err != nil {
		return err
	}
	if base.AccountID == actor.AccountID {
		return dErrors.New(dErrors.CodeValidation, "account already holds this registration")
	}
	if err := s.store.AddExtraGrant(ctx, mhrNumber, actor.AccountID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "extra registration granted",
		"mhr_number", mhrNumber,
		"account_id", actor.AccountID,
	)
	return nil
}

// authorizeView enforces the read contract: staff, holding account, or extra
// grant. Anything else is unauthorized even though the chain exists.
func (s *Service) authorizeView(ctx context.Context, mhrNumber id.MHRNumber, holder id.AccountID, actor transitions.Actor) error {
	if actor.Staff || holder == actor.AccountID {
		return nil
	}
	granted, err := s.store.HasExtraGrant(ctx, mhrNumber, actor.AccountID)
	if err != nil {
		return err
	}
	if !granted {
		return dErrors.New(dErrors.CodeUnauthorized, "account does not have access to this registration")
	}
	return nil
}
