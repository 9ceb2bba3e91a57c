package inference

// ContractVersion identifies the wire schema shared between the gateway and the
// inference service (and its local mock).
const ContractVersion = "v0.1.0"

// PredictRequest carries the scalar donor vector, optionally plus the raw health
// narrative for context-aware scoring.
type PredictRequest struct {
	DaysSinceLastDonation int      `json:"daysSinceLastDonation"`
	DistanceKm            float64  `json:"distanceKm"`
	IsAvailableNow        bool     `json:"isAvailableNow"`
	HealthFlags           []string `json:"healthFlags"`
	HealthSummary         string   `json:"healthSummary,omitempty"`
}

// PredictResponse is the scored verdict. Reasons are ordered by importance.
type PredictResponse struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// NormalizeRequest asks the service to reduce free text to categorical flags.
type NormalizeRequest struct {
	Text string `json:"text"`
}

// NormalizeResponse lists the detected flags, constrained to the fixed vocabulary.
type NormalizeResponse struct {
	Flags []string `json:"flags"`
}

// OverrideRequest asks whether free text implies categorical ineligibility.
type OverrideRequest struct {
	Text string `json:"text"`
}

// OverrideResponse signals ineligibility with a human-readable reason.
// Eligible=true means "no objection", not a positive endorsement.
type OverrideResponse struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// HealthResponse is the service liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}
