package inference

import (
	"context"
	"log/slog"

	"hemolink/internal/eligibility"
	"hemolink/internal/healthtext"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/circuit"
)

// Resilient wraps a RemoteScorer with circuit breaker protection. While the
// circuit is open, calls fail fast without dialing so the scoring gateway
// falls back to local rules at no added latency. One probe per interval
// still reaches the delegate to detect recovery.
type Resilient struct {
	delegate eligibility.RemoteScorer
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

var _ eligibility.RemoteScorer = (*Resilient)(nil)

// ResilientOption configures the Resilient wrapper.
type ResilientOption func(*Resilient)

// WithBreaker sets a custom-tuned circuit breaker.
func WithBreaker(b *circuit.Breaker) ResilientOption {
	return func(r *Resilient) {
		if b != nil {
			r.breaker = b
		}
	}
}

// NewResilient creates a circuit-breaker-protected scorer around delegate.
func NewResilient(delegate eligibility.RemoteScorer, logger *slog.Logger, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		delegate: delegate,
		breaker:  circuit.New("inference"),
		logger:   logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Predict calls the delegate unless the circuit is open.
func (r *Resilient) Predict(ctx context.Context, in eligibility.Input) (eligibility.Result, error) {
	if !r.breaker.AllowProbe() {
		return eligibility.Result{}, errCircuitOpen()
	}

	res, err := r.delegate.Predict(ctx, in)
	r.observe(ctx, err)
	if err != nil {
		return eligibility.Result{}, err
	}
	return res, nil
}

// NormalizeHealth calls the delegate unless the circuit is open.
func (r *Resilient) NormalizeHealth(ctx context.Context, text string) ([]healthtext.Flag, error) {
	if !r.breaker.AllowProbe() {
		return nil, errCircuitOpen()
	}

	flags, err := r.delegate.NormalizeHealth(ctx, text)
	r.observe(ctx, err)
	if err != nil {
		return nil, err
	}
	return flags, nil
}

// CheckOverride calls the delegate unless the circuit is open.
func (r *Resilient) CheckOverride(ctx context.Context, text string) (eligibility.OverrideDecision, error) {
	if !r.breaker.AllowProbe() {
		return eligibility.OverrideDecision{}, errCircuitOpen()
	}

	decision, err := r.delegate.CheckOverride(ctx, text)
	r.observe(ctx, err)
	if err != nil {
		return eligibility.OverrideDecision{}, err
	}
	return decision, nil
}

// observe feeds the call outcome to the breaker and logs state transitions.
func (r *Resilient) observe(ctx context.Context, err error) {
	if err != nil {
		_, change := r.breaker.RecordFailure()
		if change.Opened {
			r.logger.ErrorContext(ctx, "inference circuit opened",
				"circuit", r.breaker.Name(),
				"error", err,
			)
		}
		return
	}

	_, change := r.breaker.RecordSuccess()
	if change.Closed {
		r.logger.InfoContext(ctx, "inference circuit closed",
			"circuit", r.breaker.Name(),
		)
	}
}

func errCircuitOpen() error {
	return dErrors.New(dErrors.CodeUnavailable, "inference circuit open")
}
