// Command score-probe posts a set of sample donor vectors to a running
// inference service and prints the remote score next to the local rule
// score, so drift between the model and the rules is visible at a glance.
//
//	INFERENCE_URL=http://localhost:8000 go run .
//
// It is a manual harness, not part of the main module.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type predictRequest struct {
	DaysSinceLastDonation int      `json:"daysSinceLastDonation"`
	DistanceKm            float64  `json:"distanceKm"`
	IsAvailableNow        bool     `json:"isAvailableNow"`
	HealthFlags           []string `json:"healthFlags"`
	HealthSummary         string   `json:"healthSummary,omitempty"`
}

type predictResponse struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

type sample struct {
	label string
	req   predictRequest
}

var samples = []sample{
	{"ideal donor, close by", predictRequest{
		DaysSinceLastDonation: 120, DistanceKm: 2.5, IsAvailableNow: true, HealthFlags: []string{},
	}},
	{"never donated, mid range", predictRequest{
		DaysSinceLastDonation: 999, DistanceKm: 12, IsAvailableNow: true, HealthFlags: []string{},
	}},
	{"recent donation, unavailable", predictRequest{
		DaysSinceLastDonation: 30, DistanceKm: 4, IsAvailableNow: false, HealthFlags: []string{},
	}},
	{"moderate gap, two flags", predictRequest{
		DaysSinceLastDonation: 75, DistanceKm: 8, IsAvailableNow: true,
		HealthFlags: []string{"diabetes", "bp"},
	}},
	{"serious condition flag", predictRequest{
		DaysSinceLastDonation: 200, DistanceKm: 1, IsAvailableNow: true,
		HealthFlags: []string{"serious_condition"},
	}},
	{"clean flags, serious narrative", predictRequest{
		DaysSinceLastDonation: 200, DistanceKm: 1, IsAvailableNow: true,
		HealthFlags:   []string{},
		HealthSummary: "in remission after chemotherapy last year",
	}},
}

func main() {
	baseURL := getenv("INFERENCE_URL", "http://localhost:8000")
	client := &http.Client{Timeout: 5 * time.Second}

	if err := ping(client, baseURL); err != nil {
		log.Fatalf("inference service not reachable at %s: %v", baseURL, err)
	}
	log.Printf("probing inference service at %s", baseURL)

	fmt.Printf("%-32s %7s %7s %6s  %s\n", "sample", "remote", "local", "drift", "first remote reason")
	for _, s := range samples {
		local := scoreLocal(s.req)
		remote, reasons, err := predict(client, baseURL, s.req)
		if err != nil {
			fmt.Printf("%-32s %7s %7d %6s  error: %v\n", s.label, "-", local, "-", err)
			continue
		}
		drift := " "
		if remote != local {
			drift = fmt.Sprintf("%+d", remote-local)
		}
		first := ""
		if len(reasons) > 0 {
			first = reasons[0]
		}
		fmt.Printf("%-32s %7d %7d %6s  %s\n", s.label, remote, local, drift, first)
	}
}

func ping(client *http.Client, baseURL string) error {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func predict(client *http.Client, baseURL string, req predictRequest) (int, []string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, nil, err
	}
	resp, err := client.Post(baseURL+"/predict-eligibility", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, nil, fmt.Errorf("predict returned %d", resp.StatusCode)
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, nil, err
	}
	return out.Score, out.Reasons, nil
}

// scoreLocal mirrors the rule fallback in the main module so the probe
// stays a standalone module. Keep in sync with internal/eligibility.
func scoreLocal(req predictRequest) int {
	score := 50
	if req.DaysSinceLastDonation >= 90 {
		score += 25
	} else if req.DaysSinceLastDonation >= 60 {
		score += 10
	}
	if req.IsAvailableNow {
		score += 15
	}
	if req.DistanceKm <= 5 {
		score += 10
	} else if req.DistanceKm <= 15 {
		score += 5
	}
	if len(req.HealthFlags) == 0 {
		score += 5
	} else {
		score -= 10 * len(req.HealthFlags)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	for _, f := range req.HealthFlags {
		if f == "serious_condition" && score > 15 {
			score = 15
		}
	}
	return score
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
