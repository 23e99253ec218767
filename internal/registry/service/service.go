// Package service orchestrates registration filings: authorization, document
// id uniqueness, fee collection, persistence, and downstream event publishing.
// Domain rules live in the builder and lifecycle packages; this package owns
// the order in which collaborators are called and how failures unwind.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mhregistry/internal/platform/metrics"
	"mhregistry/internal/registry/notes"
	"mhregistry/internal/registry/payment"
	"mhregistry/internal/registry/store"
	dErrors "mhregistry/pkg/domain-errors"
)

// EventPublisher emits registration lifecycle events for downstream
// consumers. A nil publisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// DocumentIDCache short-circuits document id uniqueness checks so repeat
// lookups avoid a table scan. Misses always fall through to the store.
type DocumentIDCache interface {
	Seen(ctx context.Context, documentID string) (bool, error)
	Remember(ctx context.Context, documentID string) error
}

// Topics names the destinations for published events.
type Topics struct {
	Report string
	Record string
}

// Service orchestrates registry filings and lookups.
type Service struct {
	store          store.Store
	payments       payment.Client
	events         EventPublisher
	docCache       DocumentIDCache
	topics         Topics
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	permitDuration time.Duration
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPayments enables fee collection. Without it filings are free, which is
// only appropriate for local development.
func WithPayments(client payment.Client) Option {
	return func(s *Service) {
		s.payments = client
	}
}

func WithPublisher(publisher EventPublisher, topics Topics) Option {
	return func(s *Service) {
		s.events = publisher
		s.topics = topics
	}
}

func WithDocumentIDCache(cache DocumentIDCache) Option {
	return func(s *Service) {
		s.docCache = cache
	}
}

func WithPermitDuration(d time.Duration) Option {
	return func(s *Service) {
		s.permitDuration = d
	}
}

// New constructs a Service.
func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "store is required")
	}
	s := &Service{
		store:          st,
		logger:         slog.Default(),
		tracer:         otel.Tracer("mhregistry/registry"),
		permitDuration: notes.DefaultPermitDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) recordCreated(registrationType string) {
	if s.metrics != nil {
		s.metrics.IncRegistrationCreated(registrationType)
	}
}

func (s *Service) recordError(err error) {
	if s.metrics != nil {
		s.metrics.IncRegistrationError(string(dErrors.CodeOf(err)))
	}
}

func (s *Service) recordSearch() {
	if s.metrics != nil {
		s.metrics.SearchRequests.Inc()
	}
}
