// Package handler is the thin HTTP layer over the registry service. It
// decodes payloads, resolves the acting account from the request context,
// and translates domain errors to HTTP responses. No business rules here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mhregistry/internal/platform/metrics"
	"mhregistry/internal/platform/middleware"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/projection"
	"mhregistry/internal/registry/store"
	"mhregistry/internal/registry/transitions"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/requestcontext"
)

// Service defines the registry operations the HTTP layer exposes.
type Service interface {
	CreateRegistration(ctx context.Context, in *models.TransitionInput, actor transitions.Actor) (projection.View, error)
	Transfer(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error)
	Exemption(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error)
	Permit(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error)
	UnitNote(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error)
	Admin(ctx context.Context, mhrNumber id.MHRNumber, in *models.TransitionInput, actor transitions.Actor) (projection.View, error)
	GetRegistration(ctx context.Context, mhrNumber id.MHRNumber, actor transitions.Actor, currentView bool) (projection.View, error)
	Search(ctx context.Context, mhrNumber id.MHRNumber, actor transitions.Actor) (projection.View, error)
	GetRegistrationSummary(ctx context.Context, docRegNumber string, actor transitions.Actor) (store.Summary, error)
	ListAccountRegistrations(ctx context.Context, actor transitions.Actor) ([]store.Summary, error)
	AddToAccount(ctx context.Context, mhrNumber id.MHRNumber, actor transitions.Actor) error
}

// Handler handles the registry endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a registry Handler.
func New(registry Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		registry:  registry,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.RequireAuth(h.validator, h.logger))

	router.Post("/registrations", h.handleCreate)
	router.Get("/registrations", h.handleList)
	router.Get("/registrations/{mhrNumber}", h.handleGet)
	router.Get("/registrations/summaries/{docRegNumber}", h.handleSummary)
	router.Post("/registrations/{mhrNumber}/grants", h.handleAddToAccount)
	router.Post("/registrations/{mhrNumber}/transfers", h.change(h.registry.Transfer))
	router.Post("/registrations/{mhrNumber}/exemptions", h.change(h.registry.Exemption))
	router.Post("/registrations/{mhrNumber}/permits", h.change(h.registry.Permit))
	router.Post("/registrations/{mhrNumber}/notes", h.change(h.registry.UnitNote))
	router.Post("/registrations/{mhrNumber}/admin-registrations", h.change(h.registry.Admin))
	router.Get("/searches/{mhrNumber}", h.handleSearch)

	r.Mount("/", router)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	view, err := h.registry.CreateRegistration(ctx, in, actorFromContext(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "create registration", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// change adapts the shared change-registration flow for one route.
func (h *Handler) change(op func(context.Context, id.MHRNumber, *models.TransitionInput, transitions.Actor) (projection.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mhrNumber, ok := h.mhrNumber(w, r)
		if !ok {
			return
		}
		in, ok := h.decodeInput(w, r)
		if !ok {
			return
		}
		view, err := op(ctx, mhrNumber, in, actorFromContext(ctx))
		if err != nil {
			h.writeServiceError(ctx, w, "file change registration", err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mhrNumber, ok := h.mhrNumber(w, r)
	if !ok {
		return
	}
	currentView := r.URL.Query().Get("current") == "true"
	view, err := h.registry.GetRegistration(ctx, mhrNumber, actorFromContext(ctx), currentView)
	if err != nil {
		h.writeServiceError(ctx, w, "get registration", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mhrNumber, ok := h.mhrNumber(w, r)
	if !ok {
		return
	}
	view, err := h.registry.Search(ctx, mhrNumber, actorFromContext(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "search registration", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.registry.GetRegistrationSummary(ctx, chi.URLParam(r, "docRegNumber"), actorFromContext(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "get registration summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summaries, err := h.registry.ListAccountRegistrations(ctx, actorFromContext(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "list registrations", err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleAddToAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mhrNumber, ok := h.mhrNumber(w, r)
	if !ok {
		return
	}
	if err := h.registry.AddToAccount(ctx, mhrNumber, actorFromContext(ctx)); err != nil {
		h.writeServiceError(ctx, w, "grant registration access", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mhrNumber(w http.ResponseWriter, r *http.Request) (id.MHRNumber, bool) {
	mhrNumber, err := id.ParseMHRNumber(chi.URLParam(r, "mhrNumber"))
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return mhrNumber, true
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (*models.TransitionInput, bool) {
	in := &models.TransitionInput{}
	if err := json.NewDecoder(r.Body).Decode(in); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return nil, false
	}
	return in, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "rejected "+op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	writeError(w, err)
}

func actorFromContext(ctx context.Context) transitions.Actor {
	return transitions.Actor{
		AccountID:    requestcontext.AccountID(ctx),
		Username:     requestcontext.Username(ctx),
		AffirmByName: requestcontext.AffirmByName(ctx),
		Staff:        requestcontext.IsStaff(ctx),
	}
}
