package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the service is running$`, tc.serviceIsRunning)
	ctx.Step(`^the following donors:$`, tc.createDonors)
	ctx.Step(`^an open "([^"]*)" urgency request from "([^"]*)" for "([^"]*)" blood in "([^"]*)" at \(([-\d.]+), ([-\d.]+)\)$`, tc.createRequest)

	// Inference mode steps
	ctx.Step(`^the inference service mirrors the trained rule model$`, tc.inferenceMirrors)
	ctx.Step(`^the inference service is offline$`, tc.inferenceOffline)

	// Action steps
	ctx.Step(`^I search for "([^"]*)" donors near \(([-\d.]+), ([-\d.]+)\) within (\d+) km$`, tc.searchDonors)
	ctx.Step(`^I fetch matches for that request$`, tc.fetchRequestMatches)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the matches should be "([^"]*)" in that order$`, tc.matchesShouldBe)
	ctx.Step(`^"([^"]*)" should not be matched$`, tc.shouldNotBeMatched)
	ctx.Step(`^every match should carry a score and at least one reason$`, tc.matchesCarryScores)
	ctx.Step(`^every match should be scored by the "([^"]*)" engine$`, tc.matchesScoredBy)
	ctx.Step(`^"([^"]*)" should have a score of (\d+)$`, tc.shouldHaveScore)
	ctx.Step(`^"([^"]*)" should have a score of at most (\d+)$`, tc.shouldHaveScoreAtMost)
	ctx.Step(`^the only reason for "([^"]*)" should mention a serious health condition$`, tc.onlyReasonShouldBeSerious)
}

func (tc *TestContext) serviceIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live"); err != nil {
		return err
	}
	if tc.LastResponse.StatusCode != http.StatusOK {
		return fmt.Errorf("liveness probe returned %d", tc.LastResponse.StatusCode)
	}
	return nil
}

func (tc *TestContext) createDonors(ctx context.Context, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("donor table needs a header row and at least one donor")
	}

	col := make(map[string]int, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		col[cell.Value] = i
	}
	cell := func(row *messages.PickleTableRow, name string) (string, error) {
		i, ok := col[name]
		if !ok {
			return "", fmt.Errorf("donor table is missing column %q", name)
		}
		return strings.TrimSpace(row.Cells[i].Value), nil
	}

	for _, row := range table.Rows[1:] {
		body := map[string]any{}
		for key, column := range map[string]string{
			"name":              "name",
			"bloodGroup":        "bloodGroup",
			"city":              "city",
			"healthSummaryText": "healthSummary",
		} {
			value, err := cell(row, column)
			if err != nil {
				return err
			}
			body[key] = value
		}

		for key, column := range map[string]string{"lat": "lat", "lng": "lng"} {
			raw, err := cell(row, column)
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("column %s: %w", column, err)
			}
			body[key] = value
		}

		rawDays, err := cell(row, "daysSinceDonation")
		if err != nil {
			return err
		}
		days, err := strconv.Atoi(rawDays)
		if err != nil {
			return fmt.Errorf("column daysSinceDonation: %w", err)
		}
		body["lastDonationDate"] = time.Now().AddDate(0, 0, -days).Format("2006-01-02")

		rawAvailable, err := cell(row, "availableNow")
		if err != nil {
			return err
		}
		available, err := strconv.ParseBool(rawAvailable)
		if err != nil {
			return fmt.Errorf("column availableNow: %w", err)
		}
		body["isAvailableNow"] = available

		if err := tc.POST("/api/donors", body); err != nil {
			return err
		}
		if tc.LastResponse.StatusCode != http.StatusCreated {
			return fmt.Errorf("donor %v: expected 201 but got %d\n%s",
				body["name"], tc.LastResponse.StatusCode, tc.LastResponseBody)
		}
	}
	return nil
}

func (tc *TestContext) createRequest(ctx context.Context, urgency, seeker, group, city string, lat, lng float64) error {
	err := tc.POST("/api/requests", map[string]any{
		"seekerName": seeker,
		"bloodGroup": group,
		"city":       city,
		"lat":        lat,
		"lng":        lng,
		"urgency":    urgency,
	})
	if err != nil {
		return err
	}
	if tc.LastResponse.StatusCode != http.StatusCreated {
		return fmt.Errorf("expected 201 but got %d\n%s", tc.LastResponse.StatusCode, tc.LastResponseBody)
	}

	requestID, err := tc.GetResponseField("id")
	if err != nil {
		return err
	}
	tc.RequestID = fmt.Sprint(requestID)
	return nil
}

func (tc *TestContext) inferenceMirrors(ctx context.Context) error {
	tc.UseMirrorInference()
	return nil
}

func (tc *TestContext) inferenceOffline(ctx context.Context) error {
	tc.UseOfflineInference()
	return nil
}

func (tc *TestContext) searchDonors(ctx context.Context, group string, lat, lng float64, radiusKm int) error {
	query := url.Values{}
	query.Set("bloodGroup", group)
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("radiusKm", strconv.Itoa(radiusKm))

	return tc.GET("/api/match?" + query.Encode())
}

func (tc *TestContext) fetchRequestMatches(ctx context.Context) error {
	if tc.RequestID == "" {
		return fmt.Errorf("no blood request created in this scenario")
	}
	return tc.GET("/api/requests/" + tc.RequestID + "/matches")
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.LastResponse.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\n%s",
			expectedStatus, tc.LastResponse.StatusCode, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) matchesShouldBe(ctx context.Context, names string) error {
	expected := strings.Split(names, ",")
	for i := range expected {
		expected[i] = strings.TrimSpace(expected[i])
	}

	matches, err := tc.Matches()
	if err != nil {
		return err
	}

	actual := make([]string, len(matches))
	for i, m := range matches {
		actual[i] = m.Donor.Name
	}

	if len(actual) != len(expected) {
		return fmt.Errorf("expected matches %v but got %v", expected, actual)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			return fmt.Errorf("expected matches %v but got %v", expected, actual)
		}
	}
	return nil
}

func (tc *TestContext) shouldNotBeMatched(ctx context.Context, name string) error {
	matches, err := tc.Matches()
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.Donor.Name == name {
			return fmt.Errorf("donor %q should not be matched but was, score %d", name, m.Score)
		}
	}
	return nil
}

func (tc *TestContext) matchesCarryScores(ctx context.Context) error {
	matches, err := tc.Matches()
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no matches to check")
	}
	for _, m := range matches {
		if m.Score < 0 || m.Score > 100 {
			return fmt.Errorf("donor %q: score %d out of range", m.Donor.Name, m.Score)
		}
		if len(m.Reasons) == 0 {
			return fmt.Errorf("donor %q: no reasons", m.Donor.Name)
		}
	}
	return nil
}

func (tc *TestContext) matchesScoredBy(ctx context.Context, source string) error {
	matches, err := tc.Matches()
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no matches to check")
	}
	for _, m := range matches {
		if m.Source != source {
			return fmt.Errorf("donor %q: scored by %q, expected %q", m.Donor.Name, m.Source, source)
		}
	}
	return nil
}

func (tc *TestContext) shouldHaveScore(ctx context.Context, name string, score int) error {
	m, err := tc.Match(name)
	if err != nil {
		return err
	}
	if m.Score != score {
		return fmt.Errorf("donor %q: score %d, expected %d (reasons: %v)", name, m.Score, score, m.Reasons)
	}
	return nil
}

func (tc *TestContext) shouldHaveScoreAtMost(ctx context.Context, name string, maxScore int) error {
	m, err := tc.Match(name)
	if err != nil {
		return err
	}
	if m.Score > maxScore {
		return fmt.Errorf("donor %q: score %d exceeds %d (reasons: %v)", name, m.Score, maxScore, m.Reasons)
	}
	return nil
}

func (tc *TestContext) onlyReasonShouldBeSerious(ctx context.Context, name string) error {
	m, err := tc.Match(name)
	if err != nil {
		return err
	}
	if len(m.Reasons) != 1 {
		return fmt.Errorf("donor %q: expected a single reason, got %v", name, m.Reasons)
	}
	if !strings.Contains(m.Reasons[0], "Serious health condition") {
		return fmt.Errorf("donor %q: reason %q does not mention a serious condition", name, m.Reasons[0])
	}
	return nil
}
