package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/payment"
	"mhregistry/internal/registry/projection"
	"mhregistry/internal/registry/transitions"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/requestcontext"
)

// feeCodes maps each registration type to the fee schedule filing type
// charged for it.
var feeCodes = map[models.RegistrationType]string{
	models.RegTypeManHome:           "MHREG",
	models.RegTypeConversion:        "MHREG",
	models.RegTypeTransferSale:      "MHRTX",
	models.RegTypeTransferDeath:     "MHRTX",
	models.RegTypeTransferWill:      "MHRTA",
	models.RegTypeTransferAffidavit: "MHRTA",
	models.RegTypeTransferAdmin:     "MHRTA",
	models.RegTypeExemptionRes:      "MHEXE",
	models.RegTypeExemptionNonRes:   "MHEXE",
	models.RegTypePermit:            "MHRTP",
	models.RegTypePermitExtension:   "MHRTP",
	models.RegTypeAmendment:         "MHRTP",
	models.RegTypeUnitNote:          "MHRUN",
	models.RegTypeAdmin:             "MHRSA",
}

// CreateRegistration files a brand-new manufactured home registration. The
// business key is allocated before payment so it appears on the invoice.
func (s *Service) CreateRegistration(ctx context.Context, in *models.TransitionInput, actor transitions.Actor) (projection.View, error) {
	ctx, span := s.tracer.Start(ctx, "registry.CreateRegistration")
	defer span.End()

	if err := s.ensureDocumentIDUnused(ctx, in.DocumentID); err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	mhrNumber, err := s.store.NextMHRNumber(ctx)
	if err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	span.SetAttributes(attribute.String("mhr_number", mhrNumber.String()))

	now := requestcontext.Now(ctx)
	transition, err := transitions.BuildNew(mhrNumber, in, actor, now)
	if err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	reg := transition.Registration

	invoice, err := s.collectFee(ctx, actor, reg.RegistrationType, in)
	if err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	applyInvoice(reg, invoice)

	if err := s.store.SaveBase(ctx, reg); err != nil {
		s.reverseFee(ctx, actor, invoice)
		s.recordError(err)
		return projection.View{}, err
	}
	s.finishFiling(ctx, reg, actor, now)

	agg := &models.Aggregate{Base: reg}
	return projection.Snapshot(agg, now), nil
}

// Transfer files an ownership transfer on an existing registration.
func (s *Service) Transfer(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error) {
	return s.applyChange(ctx, "registry.Transfer", mhrNumber, in, actor,
		func(agg *models.Aggregate, now time.Time) (*models.Transition, error) {
			return transitions.BuildTransfer(agg, in, actor, now)
		})
}

// Exemption files a residential or non-residential exemption, closing any
// active transport permit and retiring the home from active status.
func (s *Service) Exemption(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error) {
	return s.applyChange(ctx, "registry.Exemption", mhrNumber, in, actor,
		func(agg *models.Aggregate, now time.Time) (*models.Transition, error) {
			return transitions.BuildExemption(agg, in, actor, now)
		})
}

// Permit files a new transport permit, or an amendment or extension of the
// active one.
func (s *Service) Permit(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error) {
	return s.applyChange(ctx, "registry.Permit", mhrNumber, in, actor,
		func(agg *models.Aggregate, now time.Time) (*models.Transition, error) {
			return transitions.BuildPermit(agg, in, actor, now, s.permitDuration)
		})
}

// UnitNote attaches a unit note to the registration. Cancellation note types
// route through the administrative builder.
func (s *Service) UnitNote(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error) {
	return s.applyChange(ctx, "registry.UnitNote", mhrNumber, in, actor,
		func(agg *models.Aggregate, now time.Time) (*models.Transition, error) {
			return transitions.BuildUnitNote(agg, in, actor, now)
		})
}

// Admin files a registry staff administrative registration.
func (s *Service) Admin(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error) {
	if !actor.Staff {
		err := dErrors.New(dErrors.CodeUnauthorized, "administrative registrations require staff access")
		s.recordError(err)
		return projection.View{}, err
	}
	return s.applyChange(ctx, "registry.Admin", mhrNumber, in, actor,
		func(agg *models.Aggregate, now time.Time) (*models.Transition, error) {
			return transitions.BuildAdmin(agg, in, actor, now)
		})
}

type buildFunc func(agg *models.Aggregate, now time.Time) (*models.Transition, error)

// applyChange runs the shared change-registration flow: load and authorize,
// check the supplied document id, build, collect the fee, persist atomically,
// and unwind the fee if persistence fails.
func (s *Service) applyChange(ctx context.Context, spanName string, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor, build buildFunc) (projection.View, error) {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("mhr_number", mhrNumber.String()))

	agg, err := s.store.LoadAggregate(ctx, mhrNumber)
	if err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	if err := s.authorizeChange(ctx, agg, actor); err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	if err := s.ensureDocumentIDUnused(ctx, in.DocumentID); err != nil {
		s.recordError(err)
		return projection.View{}, err
	}

	now := requestcontext.Now(ctx)
	transition, err := build(agg, now)
	if err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	reg := transition.Registration

	invoice, err := s.collectFee(ctx, actor, reg.RegistrationType, in)
	if err != nil {
		s.recordError(err)
		return projection.View{}, err
	}
	applyInvoice(reg, invoice)

	if err := s.store.SaveTransition(ctx, transition); err != nil {
		s.reverseFee(ctx, actor, invoice)
		s.recordError(err)
		return projection.View{}, err
	}
	s.finishFiling(ctx, reg, actor, now)

	// Reload so the returned view reflects the mutations the store applied
	// to prior chain members.
	fresh, err := s.store.LoadAggregate(ctx, mhrNumber)
	if err != nil {
		return projection.View{}, err
	}
	return projection.Registration(reg, fresh, now), nil
}

// authorizeChange enforces who may file against an existing chain. Staff can
// always file; a client account must hold the chain or carry an
// extra-registration grant for it, and the chain must still be active.
func (s *Service) authorizeChange(ctx context.Context, agg *models.Aggregate, actor transitions.Actor) error {
	if actor.Staff {
		return nil
	}
	if agg.Base.AccountID != actor.AccountID {
		granted, err := s.store.HasExtraGrant(ctx, agg.Base.MHRNumber, actor.AccountID)
		if err != nil {
			return err
		}
		if !granted {
			return dErrors.New(dErrors.CodeUnauthorized, "account does not have access to this registration")
		}
	}
	if agg.Base.StatusType != models.StatusActive {
		return dErrors.Newf(dErrors.CodeValidation, "registration status is %s, changes require an active registration", agg.Base.StatusType)
	}
	return nil
}

// ensureDocumentIDUnused rejects an externally supplied document id that is
// already attached to any registration. Generated ids skip the check.
func (s *Service) ensureDocumentIDUnused(ctx context.Context, documentID string) error {
	if documentID == "" {
		return nil
	}
	if s.docCache != nil {
		seen, err := s.docCache.Seen(ctx, documentID)
		if err != nil {
			s.logger.WarnContext(ctx, "document id cache lookup failed", "error", err)
		} else if seen {
			return dErrors.Newf(dErrors.CodeConflict, "document id %s is already registered", documentID)
		}
	}
	count, err := s.store.CountDocumentID(ctx, documentID)
	if err != nil {
		return err
	}
	if count > 0 {
		return dErrors.Newf(dErrors.CodeConflict, "document id %s is already registered", documentID)
	}
	return nil
}

func (s *Service) collectFee(ctx context.Context, actor transitions.Actor, regType models.RegistrationType, in *models.TransitionInput) (*payment.Invoice, error) {
	if s.payments == nil {
		return nil, nil
	}
	req := payment.InvoiceRequest{
		AccountID:         actor.AccountID,
		FilingType:        feeCodes[regType],
		Quantity:          1,
		ClientReferenceID: in.ClientReferenceID,
	}
	// Fee routing details are honoured for staff only. Client accounts
	// always pay the schedule fee.
	if actor.Staff && in.StaffPayment != nil {
		req.WaiveFees = in.StaffPayment.WaiveFees
		req.RoutingSlipNumber = in.StaffPayment.RoutingSlipNumber
		req.BCOLAccountNumber = in.StaffPayment.BCOLAccountNumber
		req.DATNumber = in.StaffPayment.DATNumber
	}
	invoice, err := s.payments.CreateInvoice(ctx, req)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// reverseFee cancels an invoice after a failed save so the account is not
// charged for a filing that never persisted. Best effort: a failed reversal
// is logged for manual follow-up.
func (s *Service) reverseFee(ctx context.Context, actor transitions.Actor, invoice *payment.Invoice) {
	if invoice == nil {
		return
	}
	if s.metrics != nil {
		s.metrics.PaymentReversals.Inc()
	}
	if err := s.payments.CancelInvoice(ctx, actor.AccountID, invoice.InvoiceID); err != nil {
		s.logger.ErrorContext(ctx, "payment reversal failed",
			"invoice_id", invoice.InvoiceID,
			"error", err,
		)
	}
}

func applyInvoice(reg *models.Registration, invoice *payment.Invoice) {
	if invoice == nil {
		return
	}
	reg.Payment = &models.PaymentReference{InvoiceID: invoice.InvoiceID}
}

// finishFiling runs the post-commit side effects shared by every filing:
// document id cache update, metrics, and event publishing. All best effort.
func (s *Service) finishFiling(ctx context.Context, reg *models.Registration, actor transitions.Actor, now time.Time) {
	s.recordCreated(string(reg.RegistrationType))
	if s.docCache != nil && reg.Document.DocumentID != "" {
		if err := s.docCache.Remember(ctx, reg.Document.DocumentID); err != nil {
			s.logger.WarnContext(ctx, "document id cache update failed", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "registration filed",
		"mhr_number", reg.MHRNumber,
		"registration_type", reg.RegistrationType,
		"registration_id", reg.ID,
	)
	s.publishEvents(ctx, reg, actor, now)
}

// publishEvents enqueues report generation and, for staff filings, document
// record sync. Failed produces are logged, never surfaced: consumers replay
// from the store.
func (s *Service) publishEvents(ctx context.Context, reg *models.Registration, actor transitions.Actor, now time.Time) {
	if s.events == nil {
		return
	}
	report := map[string]any{
		"mhrNumber":        reg.MHRNumber.String(),
		"registrationId":   reg.ID.String(),
		"registrationType": string(reg.RegistrationType),
		"documentId":       reg.Document.DocumentID,
		"accountId":        reg.AccountID.String(),
		"createDateTime":   now,
	}
	if err := s.events.Publish(ctx, s.topics.Report, reg.MHRNumber.String(), report); err != nil {
		s.logger.WarnContext(ctx, "report event publish failed", "error", err)
	}
	if !actor.Staff {
		return
	}
	record := map[string]any{
		"documentId":     reg.Document.DocumentID,
		"documentType":   string(reg.Document.DocumentType),
		"mhrNumber":      reg.MHRNumber.String(),
		"createDateTime": now,
	}
	if err := s.events.Publish(ctx, s.topics.Record, reg.Document.DocumentID, record); err != nil {
		s.logger.WarnContext(ctx, "document record publish failed", "error", err)
	}
}
