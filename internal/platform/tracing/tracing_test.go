package tracing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hemolink/internal/platform/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracing.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, "test.span",
		tracing.String("key", "value"),
		tracing.Bool("flag", true),
	)

	// Context should be returned unchanged
	assert.Equal(t, ctx, newCtx)
	// Span should not be nil
	require.NotNil(t, span)

	// Span methods should not panic
	span.SetAttributes(tracing.String("another", "attr"))
	span.AddEvent("test.event", tracing.Int64("count", 42))
	span.End(nil)
}

func TestNoopTracer_SpanEndWithError(t *testing.T) {
	tr := tracing.NewNoop()
	ctx := context.Background()

	_, span := tr.Start(ctx, "test.span")
	require.NotNil(t, span)

	// Should not panic when ending with error
	span.End(errors.New("test error"))
}

func TestHashText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
	}{
		{
			name:    "empty string returns empty",
			input:   "",
			wantLen: 0,
		},
		{
			name:    "short text produces 16 char hash",
			input:   "flu",
			wantLen: 16,
		},
		{
			name:    "long narrative produces 16 char hash",
			input:   "had a mild fever last week but feeling fine now",
			wantLen: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tracing.HashText(tt.input)
			assert.Len(t, result, tt.wantLen)
		})
	}
}

func TestHashText_Deterministic(t *testing.T) {
	text := "recovering from a cold"
	hash1 := tracing.HashText(text)
	hash2 := tracing.HashText(text)
	assert.Equal(t, hash1, hash2, "same input should produce same hash")
}

func TestHashText_DifferentInputs(t *testing.T) {
	hash1 := tracing.HashText("diabetes and fever")
	hash2 := tracing.HashText("no known conditions")
	assert.NotEqual(t, hash1, hash2, "different inputs should produce different hashes")
}

func TestAttributeConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		attr := tracing.String("key", "value")
		assert.Equal(t, "key", attr.Key)
		assert.Equal(t, "value", attr.Value)
	})

	t.Run("Bool", func(t *testing.T) {
		attr := tracing.Bool("flag", true)
		assert.Equal(t, "flag", attr.Key)
		assert.Equal(t, true, attr.Value)
	})

	t.Run("Int64", func(t *testing.T) {
		attr := tracing.Int64("count", 42)
		assert.Equal(t, "count", attr.Key)
		assert.Equal(t, int64(42), attr.Value)
	})

	t.Run("Float64", func(t *testing.T) {
		attr := tracing.Float64("ratio", 3.14)
		assert.Equal(t, "ratio", attr.Key)
		assert.Equal(t, 3.14, attr.Value)
	})

	t.Run("Duration", func(t *testing.T) {
		attr := tracing.Duration("latency", 150*time.Millisecond)
		assert.Equal(t, "latency", attr.Key)
		assert.Equal(t, int64(150), attr.Value)
	})
}

func TestSpanConstants(t *testing.T) {
	assert.Equal(t, "eligibility.evaluate", tracing.SpanEvaluate)
	assert.Equal(t, "eligibility.override", tracing.SpanOverride)
	assert.Equal(t, "eligibility.normalize", tracing.SpanNormalize)
	assert.Equal(t, "eligibility.score", tracing.SpanScore)
	assert.Equal(t, "match.rank", tracing.SpanRank)
	assert.Equal(t, "inference.predict.call", tracing.SpanPredictCall)
}

func TestAttributeConstants(t *testing.T) {
	assert.Equal(t, "donor_id", tracing.AttrDonorID)
	assert.Equal(t, "remote_enabled", tracing.AttrRemoteEnabled)
	assert.Equal(t, "source", tracing.AttrSource)
	assert.Equal(t, "score", tracing.AttrScore)
}

func TestEventConstants(t *testing.T) {
	assert.Equal(t, "fallback.local", tracing.EventFallback)
}
