// Package inference provides the HTTP client for the remote eligibility
// scoring service. The client implements eligibility.RemoteScorer; wrapping
// it in Resilient adds circuit breaker protection so a dead service stops
// costing a connection attempt per call.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	contracts "hemolink/contracts/inference"
	"hemolink/internal/eligibility"
	"hemolink/internal/healthtext"
	"hemolink/internal/platform/tracing"
	dErrors "hemolink/pkg/domain-errors"
)

// Client calls the inference service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     tracing.Tracer
}

var _ eligibility.RemoteScorer = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer enables distributed tracing for outbound calls.
func WithTracer(t tracing.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New creates an inference client for the given base URL. The timeout bounds
// each individual call; there are no retries at this layer.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
		tracer: tracing.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict asks the model to score a donor.
func (c *Client) Predict(ctx context.Context, in eligibility.Input) (eligibility.Result, error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanPredictCall,
		tracing.Int64(tracing.AttrFlagCount, int64(len(in.HealthFlags))),
	)

	req := contracts.PredictRequest{
		DaysSinceLastDonation: in.DaysSinceLastDonation,
		DistanceKm:            in.DistanceKm,
		IsAvailableNow:        in.AvailableNow,
		HealthFlags:           healthtext.Strings(in.HealthFlags),
		HealthSummary:         in.HealthSummary,
	}

	var resp contracts.PredictResponse
	err := c.post(ctx, "/predict-eligibility", req, &resp)
	span.End(err)
	if err != nil {
		return eligibility.Result{}, err
	}

	return eligibility.Result{Score: resp.Score, Reasons: resp.Reasons}, nil
}

// NormalizeHealth asks the model to extract health flags from free text.
// Unknown flags in the response are dropped so the vocabulary stays closed.
func (c *Client) NormalizeHealth(ctx context.Context, text string) ([]healthtext.Flag, error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanNormalizeCall,
		tracing.String(tracing.AttrTextHash, tracing.HashText(text)),
	)

	var resp contracts.NormalizeResponse
	err := c.post(ctx, "/normalize-health", contracts.NormalizeRequest{Text: text}, &resp)
	span.End(err)
	if err != nil {
		return nil, err
	}

	return healthtext.Canon(resp.Flags), nil
}

// CheckOverride asks the model for a hard eligibility judgment on free text.
// The wire contract speaks in terms of eligibility; an ineligible verdict
// maps to an override carrying the fixed override score.
func (c *Client) CheckOverride(ctx context.Context, text string) (eligibility.OverrideDecision, error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanOverrideCall,
		tracing.String(tracing.AttrTextHash, tracing.HashText(text)),
	)

	var resp contracts.OverrideResponse
	err := c.post(ctx, "/check-eligibility-from-health", contracts.OverrideRequest{Text: text}, &resp)
	span.End(err)
	if err != nil {
		return eligibility.OverrideDecision{}, err
	}

	if resp.Eligible {
		return eligibility.OverrideDecision{}, nil
	}

	reason := resp.Reason
	if reason == "" {
		reason = eligibility.SeriousConditionReason
	}
	return eligibility.OverrideDecision{
		Overridden: true,
		Score:      eligibility.OverrideScore,
		Reason:     reason,
	}, nil
}

// Ping checks the service health endpoint. Used by readiness reporting; a
// failing ping degrades readiness without failing it, since scoring falls
// back to local rules.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create health request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("inference service unhealthy: status %d", resp.StatusCode))
	}
	return nil
}

// errorResponse is the error body shape the inference service returns.
type errorResponse struct {
	Error string `json:"error"`
}

// post sends a JSON request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode inference request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create inference request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read inference response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Parse below.
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return dErrors.New(dErrors.CodeBadRequest, serverMessage(raw, "inference rejected request"))
	case http.StatusServiceUnavailable:
		return dErrors.New(dErrors.CodeUnavailable, "inference service unavailable")
	default:
		return dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("inference service returned status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode inference response")
	}
	return nil
}

// transportError classifies a failed HTTP round trip. Timeouts get their own
// code so callers can distinguish a slow service from a dead one.
func (c *Client) transportError(ctx context.Context, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "inference request timed out")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "inference request timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "inference service unreachable")
}

func serverMessage(raw []byte, fallback string) string {
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error != "" {
		return fmt.Sprintf("%s: %s", fallback, er.Error)
	}
	return fallback
}
