package eligibility

import (
	"context"

	"hemolink/internal/healthtext"
)

// RemoteScorer is the inference-service surface the gateway consumes.
// Implementations signal transient failure with an error; the gateway treats
// every error as a cue to fall back to local rules. Passing a nil
// RemoteScorer to NewGateway disables the remote path entirely.
type RemoteScorer interface {
	// Predict returns the model's score and reasons for the input.
	Predict(ctx context.Context, in Input) (Result, error)

	// NormalizeHealth maps free text to flags from the shared vocabulary.
	NormalizeHealth(ctx context.Context, text string) ([]healthtext.Flag, error)

	// CheckOverride asks for a hard eligibility judgment on free text.
	CheckOverride(ctx context.Context, text string) (OverrideDecision, error)
}
