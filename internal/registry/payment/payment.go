// Package payment integrates with the fee and invoicing service. Every
// registration is paid for before it is persisted; when persistence fails the
// invoice is cancelled so the account is not charged for a registration that
// never happened.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// Invoice is the payment service's record of a collected fee.
type Invoice struct {
	InvoiceID  string  `json:"invoiceId"`
	StatusCode string  `json:"statusCode"`
	Total      float64 `json:"total"`
}

// InvoiceRequest describes the fee to collect for a registration filing.
// The fee routing fields apply to staff filings only: fees may be waived or
// routed to a routing slip, BCOL account, or DAT number instead of the
// filing account.
type InvoiceRequest struct {
	AccountID         id.AccountID `json:"-"`
	FilingType        string       `json:"filingType"`
	Quantity          int          `json:"quantity"`
	ClientReferenceID string       `json:"folioNumber,omitempty"`
	Priority          bool         `json:"priority,omitempty"`
	WaiveFees         bool         `json:"waiveFees,omitempty"`
	RoutingSlipNumber string       `json:"routingSlipNumber,omitempty"`
	BCOLAccountNumber string       `json:"bcolAccountNumber,omitempty"`
	DATNumber         string       `json:"datNumber,omitempty"`
}

// Client collects and reverses registration fees.
type Client interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	CancelInvoice(ctx context.Context, accountID id.AccountID, invoiceID string) error
}

// HTTPClient talks to the payment service over HTTP. A circuit breaker wraps
// every call so a failing payment service rejects fast instead of holding
// registration requests open.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithLogger sets the logger used for breaker state changes and call failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// NewHTTPClient constructs a payment client for the service at baseURL.
func NewHTTPClient(baseURL, apiKey string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "payment",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("payment circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return c
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode invoice request")
	}
	resp, err := c.do(ctx, http.MethodPost, "/payment-requests", req.AccountID, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.statusError(resp)
	}
	invoice := &Invoice{}
	if err := json.NewDecoder(resp.Body).Decode(invoice); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode invoice response")
	}
	return invoice, nil
}

func (c *HTTPClient) CancelInvoice(ctx context.Context, accountID id.AccountID, invoiceID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/payment-requests/"+invoiceID, accountID, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNoContent {
		return c.statusError(resp)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, accountID id.AccountID, body io.Reader) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Account-Id", accountID.String())
		if c.apiKey != "" {
			req.Header.Set("x-apikey", c.apiKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			// Server-side failures count against the breaker. Client errors
			// are the caller's problem and must not trip it.
			defer func() { _ = resp.Body.Close() }()
			return nil, fmt.Errorf("payment service returned %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "payment service call")
	}
	return resp, nil
}

func (c *HTTPClient) statusError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusBadRequest {
		return dErrors.Newf(dErrors.CodeValidation, "payment declined: %s", string(payload))
	}
	return dErrors.Newf(dErrors.CodeInternal, "payment service returned %d: %s", resp.StatusCode, string(payload))
}
