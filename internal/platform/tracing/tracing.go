// Package tracing provides a lightweight tracing abstraction for the scoring pipeline.
//
// This package defines an internal tracer interface that doesn't depend directly on
// OpenTelemetry APIs, allowing the eligibility and inference modules to emit
// distributed traces while remaining decoupled from specific tracing implementations.
//
// The interface supports:
//   - Starting parent and child spans with attributes
//   - Recording errors on span completion
//   - Adding span events for fallback correlation
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
// Spans track the execution of a single operation and can record errors and events.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	// Attributes provide context for debugging and analysis.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	// Events mark significant points during span execution.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to child operations.
	// The span must be ended by calling Span.End().
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracing.SpanEvaluate,
	//       tracing.String(tracing.AttrDonorID, donorID.String()),
	//       tracing.Bool(tracing.AttrRemoteEnabled, true),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashText returns a short SHA-256 hash of free text for safe correlation in
// traces. Health narratives are sensitive and must never appear verbatim in
// telemetry.
func HashText(text string) string {
	if text == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:8]) // First 8 bytes for brevity
}

// Span names used by the scoring pipeline.
const (
	SpanEvaluate      = "eligibility.evaluate"
	SpanOverride      = "eligibility.override"
	SpanNormalize     = "eligibility.normalize"
	SpanScore         = "eligibility.score"
	SpanRank          = "match.rank"
	SpanPredictCall   = "inference.predict.call"
	SpanNormalizeCall = "inference.normalize.call"
	SpanOverrideCall  = "inference.override.call"
)

// Attribute keys used by the scoring pipeline.
const (
	AttrDonorID       = "donor_id"
	AttrRemoteEnabled = "remote_enabled"
	AttrSource        = "source"
	AttrScore         = "score"
	AttrDistanceKm    = "distance_km"
	AttrFlagCount     = "flag_count"
	AttrOverridden    = "overridden"
	AttrTextHash      = "text_hash"
	AttrCandidates    = "candidate_count"
)

// Event names used by the scoring pipeline.
const (
	EventFallback = "fallback.local"
)
