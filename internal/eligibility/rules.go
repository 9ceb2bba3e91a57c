package eligibility

import "hemolink/internal/healthtext"

// Scoring weights for the rule engine. The remote model is trained on labels
// generated from this same rule set, so both paths share range and meaning.
const (
	baseScore         = 50
	longGapBonus      = 25 // 90+ days since last donation
	moderateGapBonus  = 10 // 60-89 days
	availabilityBonus = 15
	nearBonus         = 10 // within 5 km
	midBonus          = 5  // within 15 km
	cleanHealthBonus  = 5
	perFlagPenalty    = 10
	seriousScoreCap   = 15
)

// Score bounds shared by both scoring paths.
const (
	MinScore = 0
	MaxScore = 100
)

// SeriousConditionReason replaces all other reasons when a donor reports a
// serious condition. Identical on the local and remote-capped paths so
// clients can match on it.
const SeriousConditionReason = "Serious health condition (e.g. cancer) – not eligible for donation"

// OverrideScore is the fixed score carried by a categorical override
// decision. It matches the serious-condition cap so both disqualification
// paths rank the same.
const OverrideScore = seriousScoreCap

// Score computes the rule-based eligibility result for a donor.
func Score(in Input) Result {
	score := baseScore

	switch {
	case in.DaysSinceLastDonation >= 90:
		score += longGapBonus
	case in.DaysSinceLastDonation >= 60:
		score += moderateGapBonus
	}

	if in.AvailableNow {
		score += availabilityBonus
	}

	switch {
	case in.DistanceKm <= 5:
		score += nearBonus
	case in.DistanceKm <= 15:
		score += midBonus
	}

	if n := len(in.HealthFlags); n == 0 {
		score += cleanHealthBonus
	} else {
		score -= perFlagPenalty * n
	}

	score = clampScore(score)

	if healthtext.Contains(in.HealthFlags, healthtext.FlagSeriousCondition) {
		if score > seriousScoreCap {
			score = seriousScoreCap
		}
		return Result{Score: score, Reasons: []string{SeriousConditionReason}, Source: SourceLocal}
	}

	return Result{Score: score, Reasons: Explain(in, score), Source: SourceLocal}
}

// Explain builds the ordered reason list for a scored input. The final score
// is passed in because the high-suitability reason depends on it.
func Explain(in Input, score int) []string {
	reasons := make([]string, 0, 4)

	switch {
	case in.DaysSinceLastDonation >= 90:
		reasons = append(reasons, "Eligible by donation gap (90+ days)")
	case in.DaysSinceLastDonation >= 60:
		reasons = append(reasons, "Donation gap moderate (60–90 days)")
	default:
		reasons = append(reasons, "Recently donated – check eligibility")
	}

	switch {
	case in.DistanceKm <= 5:
		reasons = append(reasons, "Proximity match – within 5 km")
	case in.DistanceKm <= 15:
		reasons = append(reasons, "Within 15 km")
	}

	if in.AvailableNow {
		reasons = append(reasons, "Marked available now")
	}

	if score >= 80 {
		reasons = append(reasons, "High suitability score")
	}

	return reasons
}

func clampScore(s int) int {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}
