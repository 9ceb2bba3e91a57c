// Package eligibility scores donor suitability for a blood request.
//
// Two paths produce scores: a remote inference service and a local rule
// engine. Both emit the same contract (a 0-100 score plus human-readable
// reasons) so callers never care which path served them. The Gateway owns
// the routing and the fallback; the rule engine is pure and always
// available.
package eligibility

import "hemolink/internal/healthtext"

// Source identifies which scoring path produced a result.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// NeverDonatedDays is the sentinel gap used when a donor has no recorded
// donation. Large enough to land in the best gap band.
const NeverDonatedDays = 999

// Input carries the donor facts the scorer consumes. Callers assemble it
// from the donor record and the query: DaysSinceLastDonation uses the
// NeverDonatedDays sentinel when no donation is recorded, DistanceKm is 0
// when the query has no origin.
type Input struct {
	DaysSinceLastDonation int
	DistanceKm            float64
	AvailableNow          bool

	// HealthFlags are the donor's stored categorical flags. The gateway
	// consults them only when HealthSummary is absent; a present narrative
	// is re-normalized as part of the evaluation pipeline.
	HealthFlags []healthtext.Flag

	// HealthSummary is the donor's free-text narrative. When present it
	// drives the override check and flag derivation, and is forwarded to
	// the remote model, which then owns the serious-condition judgment.
	HealthSummary string
}

// Result is a scored assessment. Reasons is never empty.
type Result struct {
	Score   int
	Reasons []string
	Source  Source
}

// OverrideDecision is a categorical ineligibility judgment derived from
// free-text health context. When Overridden is set it bypasses numeric
// scoring entirely: Score holds the fixed override value and Reason the
// single explanatory string.
type OverrideDecision struct {
	Overridden bool
	Score      int
	Reason     string
}
