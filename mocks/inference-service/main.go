// Mock inference service for local development and e2e testing.
//
// Implements the same wire contract as the real ML service but scores with
// the deterministic rule formula the gateway also uses as its fallback, so
// either path produces comparable results. Supports simulated latency and
// failure injection via environment variables, and the magic phrase
// "force-override" in any health text to trigger the override path without
// naming a real condition.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort      = "8000"
	defaultLatencyMs = "100"
)

// forceOverride is the test hook: any health text containing it is judged
// categorically ineligible.
const forceOverride = "force-override"

const seriousReason = "Serious health condition (e.g. cancer) – not eligible for donation"

type PredictRequest struct {
	DaysSinceLastDonation int      `json:"daysSinceLastDonation"`
	DistanceKm            float64  `json:"distanceKm"`
	IsAvailableNow        bool     `json:"isAvailableNow"`
	HealthFlags           []string `json:"healthFlags"`
	HealthSummary         string   `json:"healthSummary"`
}

type PredictResponse struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type NormalizeResponse struct {
	Flags []string `json:"flags"`
}

type OverrideResponse struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

var (
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
	failMode  = os.Getenv("FAIL_MODE") // "", "unavailable" (503 everywhere), "error" (500 on scoring)
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/predict-eligibility", handlePredict)
	http.HandleFunc("/normalize-health", handleNormalize)
	http.HandleFunc("/check-eligibility-from-health", handleOverride)

	log.Printf("🧠 Mock Inference Service starting on port %s", port)
	log.Printf("⏱️  Simulated latency: %dms", latencyMs)
	if failMode != "" {
		log.Printf("💥 Fail mode active: %s", failMode)
	}

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if failMode == "unavailable" {
		sendError(w, "service unavailable (FAIL_MODE)", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !acceptPost(w, r, &req) {
		return
	}

	flags := canonFlags(req.HealthFlags)

	// The real model reads the narrative for context the flags miss. The
	// mock approximates that by extracting flags from the summary too.
	for _, f := range extractFlags(req.HealthSummary) {
		if !containsString(flags, f) {
			flags = append(flags, f)
		}
	}
	if strings.Contains(strings.ToLower(req.HealthSummary), forceOverride) &&
		!containsString(flags, "serious_condition") {
		flags = append(flags, "serious_condition")
	}

	score, reasons := scoreDonor(req.DaysSinceLastDonation, req.DistanceKm, req.IsAvailableNow, flags)

	log.Printf("🩸 predict: days=%d dist=%.1f available=%v flags=%v -> %d",
		req.DaysSinceLastDonation, req.DistanceKm, req.IsAvailableNow, flags, score)
	sendJSON(w, PredictResponse{Score: score, Reasons: reasons})
}

func handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !acceptPost(w, r, &req) {
		return
	}

	flags := extractFlags(req.Text)
	log.Printf("🔤 normalize: %q -> %v", truncate(req.Text, 60), flags)
	sendJSON(w, NormalizeResponse{Flags: flags})
}

func handleOverride(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !acceptPost(w, r, &req) {
		return
	}

	text := strings.ToLower(req.Text)
	if strings.Contains(text, forceOverride) {
		log.Printf("🚫 override: forced ineligible (test hook)")
		sendJSON(w, OverrideResponse{Eligible: false, Reason: "Forced ineligible (test hook)"})
		return
	}
	for _, term := range vocabulary["serious_condition"] {
		if strings.Contains(text, term) {
			log.Printf("🚫 override: ineligible (%s)", term)
			sendJSON(w, OverrideResponse{Eligible: false, Reason: seriousReason})
			return
		}
	}

	// No objection. The real service also fails open here.
	sendJSON(w, OverrideResponse{Eligible: true})
}

// scoreDonor mirrors the gateway's rule formula so remote and fallback
// scores agree: base 50, donation-gap and proximity bonuses, availability
// bonus, clean-health bonus or per-flag penalty, clamped to 0..100, capped
// at 15 for serious conditions.
func scoreDonor(days int, distanceKm float64, available bool, flags []string) (int, []string) {
	score := 50

	switch {
	case days >= 90:
		score += 25
	case days >= 60:
		score += 10
	}

	if available {
		score += 15
	}

	switch {
	case distanceKm <= 5:
		score += 10
	case distanceKm <= 15:
		score += 5
	}

	if len(flags) == 0 {
		score += 5
	} else {
		score -= 10 * len(flags)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if containsString(flags, "serious_condition") {
		if score > 15 {
			score = 15
		}
		return score, []string{seriousReason}
	}

	reasons := make([]string, 0, 4)
	switch {
	case days >= 90:
		reasons = append(reasons, "Eligible by donation gap (90+ days)")
	case days >= 60:
		reasons = append(reasons, "Donation gap moderate (60–90 days)")
	default:
		reasons = append(reasons, "Recently donated – check eligibility")
	}
	switch {
	case distanceKm <= 5:
		reasons = append(reasons, "Proximity match – within 5 km")
	case distanceKm <= 15:
		reasons = append(reasons, "Within 15 km")
	}
	if available {
		reasons = append(reasons, "Marked available now")
	}
	if score >= 80 {
		reasons = append(reasons, "High suitability score")
	}
	return score, reasons
}

// vocabulary is a trimmed copy of the gateway's keyword table, enough for
// demo narratives. Order fixes the output order.
var flagOrder = []string{
	"recent_illness", "diabetes", "anemia", "bp", "medication", "serious_condition",
}

var vocabulary = map[string][]string{
	"recent_illness": {"ill", "sick", "fever", "cold", "cough", "infection", "flu", "unwell"},
	"diabetes":       {"diabetes", "diabetic", "blood sugar", "insulin", "glucose"},
	"anemia":         {"anemia", "anaemia", "hemoglobin", "haemoglobin", "low iron"},
	"bp":             {"blood pressure", "hypertension", "bp", "hypotension"},
	"medication":     {"medication", "medicine", "drug", "antibiotic", "taking", "prescription", "tablet"},
	"serious_condition": {
		"cancer", "chemotherapy", "hiv", "aids", "hepatitis",
		"heart disease", "stroke", "major surgery", "leukemia", "tumor",
	},
}

func extractFlags(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return []string{}
	}

	flags := []string{}
	for _, flag := range flagOrder {
		for _, term := range vocabulary[flag] {
			if strings.Contains(lower, term) {
				flags = append(flags, flag)
				break
			}
		}
	}
	return flags
}

func canonFlags(raw []string) []string {
	flags := []string{}
	for _, s := range raw {
		f := strings.TrimSpace(strings.ToLower(s))
		if _, ok := vocabulary[f]; ok && !containsString(flags, f) {
			flags = append(flags, f)
		}
	}
	return flags
}

func containsString(list []string, s string) bool {
	for _, have := range list {
		if have == s {
			return true
		}
	}
	return false
}

// acceptPost applies latency and fail-mode simulation, enforces POST, and
// decodes the body. Returns false when the response has been written.
func acceptPost(w http.ResponseWriter, r *http.Request, body any) bool {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	log.Printf("📥 %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	switch failMode {
	case "unavailable":
		sendError(w, "service unavailable (FAIL_MODE)", http.StatusServiceUnavailable)
		return false
	case "error":
		sendError(w, "internal error (FAIL_MODE)", http.StatusInternalServerError)
		return false
	}

	if r.Method != http.MethodPost {
		sendError(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		sendError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func sendJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

func sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
	log.Printf("❌ %d - %s", code, message)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
