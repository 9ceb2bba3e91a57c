// Package request implements blood requests: seekers post a need, donors are
// matched against it, and requests age out past their deadline. The package is
// flat; model, stores, service, and handler live together.
package request

import (
	"fmt"
	"strings"
	"time"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// Urgency grades how quickly a request needs a donor.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

var validUrgencies = map[Urgency]bool{
	UrgencyLow:      true,
	UrgencyNormal:   true,
	UrgencyHigh:     true,
	UrgencyCritical: true,
}

// ParseUrgency parses an urgency level. Empty input defaults to normal.
func ParseUrgency(s string) (Urgency, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return UrgencyNormal, nil
	}
	u := Urgency(trimmed)
	if !validUrgencies[u] {
		return "", fmt.Errorf("invalid urgency %q: %w", s, sentinel.ErrInvalidInput)
	}
	return u, nil
}

func (u Urgency) String() string { return string(u) }

// Status tracks a request through its lifecycle. Requests start open; the
// expiry sweep moves past-deadline ones to expired, fulfilment closes them.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFulfilled Status = "fulfilled"
	StatusExpired   Status = "expired"
)

func (s Status) String() string { return string(s) }

// Request is a seeker's call for blood of a given group near a location.
type Request struct {
	ID         id.RequestID
	SeekerName string
	BloodGroup donormodels.BloodGroup
	City       string
	Latitude   float64
	Longitude  float64
	Urgency    Urgency
	Note       string
	Status     Status
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Open reports whether the request still accepts donors at the given instant.
func (r *Request) Open(now time.Time) bool {
	return r.Status == StatusOpen && r.ExpiresAt.After(now)
}
