package eligibility

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hemolink/internal/eligibility/metrics"
	"hemolink/internal/healthtext"
	"hemolink/internal/platform/tracing"
)

// Gateway routes scoring work between the remote inference service and the
// local rule engine. Remote failures never surface to callers: every
// operation degrades to the deterministic local path and tags the result
// with its source.
type Gateway struct {
	remote RemoteScorer

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracing.Tracer
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithTracer enables distributed tracing for scoring operations.
func WithTracer(t tracing.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = t
	}
}

// NewGateway creates a scoring gateway. Pass a nil remote to run purely on
// local rules, e.g. when no inference endpoint is configured.
func NewGateway(remote RemoteScorer, opts ...Option) *Gateway {
	g := &Gateway{
		remote: remote,
		logger: slog.Default(),
		tracer: tracing.NewNoop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RemoteEnabled reports whether a remote scorer is wired in.
func (g *Gateway) RemoteEnabled() bool {
	return g.remote != nil
}

// Evaluate scores a donor. The pipeline runs the override check on the
// narrative first (a hit bypasses scoring entirely), then derives flags,
// then scores, each stage remote-first with local fallback. It never
// returns an error; the worst case is a purely local result.
func (g *Gateway) Evaluate(ctx context.Context, in Input) Result {
	ctx, span := g.tracer.Start(ctx, tracing.SpanEvaluate,
		tracing.Bool(tracing.AttrRemoteEnabled, g.remote != nil),
		tracing.Float64(tracing.AttrDistanceKm, in.DistanceKm),
	)

	result := g.evaluate(ctx, span, in)

	span.SetAttributes(
		tracing.String(tracing.AttrSource, string(result.Source)),
		tracing.Int64(tracing.AttrScore, int64(result.Score)),
	)
	span.End(nil)

	g.recordEvaluation(result.Source)
	return result
}

func (g *Gateway) evaluate(ctx context.Context, span tracing.Span, in Input) Result {
	narrative := strings.TrimSpace(in.HealthSummary)
	in.HealthSummary = narrative

	if narrative != "" {
		if decision := g.checkOverride(ctx, span, narrative); decision.Overridden {
			span.SetAttributes(tracing.Bool(tracing.AttrOverridden, true))
			return overrideResult(decision)
		}
		// A narrative re-derives the flags; the stored set may be stale
		// relative to the text.
		in.HealthFlags = g.normalizeFlags(ctx, span, narrative)
	}

	span.SetAttributes(tracing.Int64(tracing.AttrFlagCount, int64(len(in.HealthFlags))))

	if g.remote == nil {
		return Score(in)
	}

	start := time.Now()
	remote, err := g.remote.Predict(ctx, in)
	if err != nil {
		g.logger.WarnContext(ctx, "remote predict failed, using local rules", "error", err)
		span.AddEvent(tracing.EventFallback)
		g.recordFallback("predict")
		return Score(in)
	}
	g.observeRemote(time.Since(start))

	return g.constrain(in, remote)
}

// constrain normalizes a remote prediction into the shared contract: score
// clamped to the common range, reasons never empty, and the serious-condition
// cap re-applied. The cap is skipped when the model saw the full narrative,
// in which case its judgment stands even for flagged donors.
func (g *Gateway) constrain(in Input, r Result) Result {
	r.Source = SourceRemote
	r.Score = clampScore(r.Score)

	if len(r.Reasons) == 0 {
		r.Reasons = Explain(in, r.Score)
	}

	if in.HealthSummary == "" && healthtext.Contains(in.HealthFlags, healthtext.FlagSeriousCondition) {
		if r.Score > seriousScoreCap {
			r.Score = seriousScoreCap
		}
		r.Reasons = []string{SeriousConditionReason}
	}

	return r
}

// NormalizeHealth maps free text onto the health flag vocabulary. Empty text
// yields no flags and never dials the remote service.
func (g *Gateway) NormalizeHealth(ctx context.Context, text string) []healthtext.Flag {
	ctx, span := g.tracer.Start(ctx, tracing.SpanNormalize,
		tracing.Bool(tracing.AttrRemoteEnabled, g.remote != nil),
		tracing.String(tracing.AttrTextHash, tracing.HashText(text)),
	)
	defer span.End(nil)

	if strings.TrimSpace(text) == "" {
		return nil
	}
	return g.normalizeFlags(ctx, span, text)
}

// normalizeFlags runs the remote normalizer with local keyword fallback.
// Text must be non-empty.
func (g *Gateway) normalizeFlags(ctx context.Context, span tracing.Span, text string) []healthtext.Flag {
	if g.remote != nil {
		flags, err := g.remote.NormalizeHealth(ctx, text)
		if err == nil {
			return flags
		}
		g.logger.WarnContext(ctx, "remote normalize failed, using keyword matcher", "error", err)
		span.AddEvent(tracing.EventFallback)
		g.recordFallback("normalize")
	}
	return healthtext.Normalize(text)
}

// CheckOverride asks the remote service for a categorical ineligibility
// judgment on free text. The check is a remote-only enhancement with no
// rule-based equivalent: empty text, a disabled remote, or any failure
// resolves to not-overridden so normal scoring proceeds.
func (g *Gateway) CheckOverride(ctx context.Context, text string) OverrideDecision {
	ctx, span := g.tracer.Start(ctx, tracing.SpanOverride,
		tracing.Bool(tracing.AttrRemoteEnabled, g.remote != nil),
		tracing.String(tracing.AttrTextHash, tracing.HashText(text)),
	)
	defer span.End(nil)

	if strings.TrimSpace(text) == "" {
		return OverrideDecision{}
	}

	decision := g.checkOverride(ctx, span, text)
	span.SetAttributes(tracing.Bool(tracing.AttrOverridden, decision.Overridden))
	return decision
}

func (g *Gateway) checkOverride(ctx context.Context, span tracing.Span, text string) OverrideDecision {
	if g.remote == nil {
		return OverrideDecision{}
	}

	decision, err := g.remote.CheckOverride(ctx, text)
	if err != nil {
		g.logger.WarnContext(ctx, "remote override check failed, proceeding with scoring", "error", err)
		span.AddEvent(tracing.EventFallback)
		g.recordFallback("override")
		return OverrideDecision{}
	}
	g.recordOverride(decision.Overridden)
	return decision
}

// overrideResult shapes an override hit into the shared result contract.
func overrideResult(d OverrideDecision) Result {
	reason := d.Reason
	if reason == "" {
		reason = SeriousConditionReason
	}
	score := d.Score
	if score <= 0 || score > seriousScoreCap {
		score = seriousScoreCap
	}
	return Result{Score: score, Reasons: []string{reason}, Source: SourceRemote}
}

func (g *Gateway) recordEvaluation(src Source) {
	if g.metrics != nil {
		g.metrics.RecordEvaluation(string(src))
	}
}

func (g *Gateway) recordFallback(op string) {
	if g.metrics != nil {
		g.metrics.RecordFallback(op)
	}
}

func (g *Gateway) recordOverride(overridden bool) {
	if g.metrics != nil {
		g.metrics.RecordOverride(overridden)
	}
}

func (g *Gateway) observeRemote(d time.Duration) {
	if g.metrics != nil {
		g.metrics.ObserveRemoteDuration(d.Seconds())
	}
}
