package models

import (
	"fmt"
	"strings"
	"time"

	"hemolink/internal/sentinel"
	"hemolink/pkg/domain"
	"hemolink/pkg/platform/validation"
)

const dateOnly = "2006-01-02"

// ParseDonationDate accepts an RFC3339 timestamp or a plain YYYY-MM-DD date.
// Empty input means the donor never donated.
func ParseDonationDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("last donation date must be RFC3339 or YYYY-MM-DD: %w", sentinel.ErrInvalidInput)
}

// ProfileRequest is the full donor profile payload, shared by the public
// create endpoint and the owner's profile update.
type ProfileRequest struct {
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"dateOfBirth"`
	BloodGroup       string   `json:"bloodGroup"`
	City             string   `json:"city"`
	Phone            string   `json:"phone"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	IsAvailableNow   bool     `json:"isAvailableNow"`
	LastDonationDate string   `json:"lastDonationDate"`
	HealthSummary    string   `json:"healthSummaryText"`

	bloodGroup   BloodGroup
	dateOfBirth  *time.Time
	lastDonation *time.Time
}

// Normalize trims free-text fields before validation.
func (r *ProfileRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.City = strings.TrimSpace(r.City)
	r.Phone = strings.TrimSpace(r.Phone)
	r.LastDonationDate = strings.TrimSpace(r.LastDonationDate)
	r.HealthSummary = strings.TrimSpace(r.HealthSummary)
}

// Validate checks the request and caches the parsed blood group and donation
// date for the accessors below.
func (r *ProfileRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrInvalidInput)
	}
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", sentinel.ErrInvalidInput)
	}
	if err := validation.CheckStringLength("name", r.Name, validation.MaxNameLength); err != nil {
		return err
	}
	if r.DateOfBirth != "" {
		born, err := time.Parse(dateOnly, r.DateOfBirth)
		if err != nil {
			return fmt.Errorf("date of birth must be YYYY-MM-DD: %w", sentinel.ErrInvalidInput)
		}
		if !domain.IsOver18(born, time.Now()) {
			return fmt.Errorf("donors must be at least 18 years old: %w", sentinel.ErrInvalidInput)
		}
		r.dateOfBirth = &born
	}
	if r.BloodGroup == "" {
		return fmt.Errorf("blood group is required: %w", sentinel.ErrInvalidInput)
	}
	group, err := ParseBloodGroup(r.BloodGroup)
	if err != nil {
		return err
	}
	r.bloodGroup = group
	if r.City == "" {
		return fmt.Errorf("city is required: %w", sentinel.ErrInvalidInput)
	}
	if err := validation.CheckStringLength("city", r.City, validation.MaxCityLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("phone", r.Phone, validation.MaxPhoneLength); err != nil {
		return err
	}
	if r.Lat == nil || r.Lng == nil {
		return fmt.Errorf("lat and lng are required: %w", sentinel.ErrInvalidInput)
	}
	if *r.Lat < -90 || *r.Lat > 90 {
		return fmt.Errorf("lat must be within [-90, 90]: %w", sentinel.ErrInvalidInput)
	}
	if *r.Lng < -180 || *r.Lng > 180 {
		return fmt.Errorf("lng must be within [-180, 180]: %w", sentinel.ErrInvalidInput)
	}
	donated, err := ParseDonationDate(r.LastDonationDate)
	if err != nil {
		return err
	}
	r.lastDonation = donated
	if err := validation.CheckStringLength("healthSummaryText", r.HealthSummary, validation.MaxHealthTextLength); err != nil {
		return err
	}
	return nil
}

// ParsedBloodGroup returns the canonical blood group. Call after Validate.
func (r *ProfileRequest) ParsedBloodGroup() BloodGroup {
	return r.bloodGroup
}

// ParsedDateOfBirth returns the parsed date of birth, nil when not given.
// Call after Validate.
func (r *ProfileRequest) ParsedDateOfBirth() *time.Time {
	return r.dateOfBirth
}

// LastDonation returns the parsed donation date, nil when never donated.
// Call after Validate.
func (r *ProfileRequest) LastDonation() *time.Time {
	return r.lastDonation
}

// SetAvailabilityRequest toggles the owner's availability flag.
type SetAvailabilityRequest struct {
	IsAvailableNow *bool `json:"isAvailableNow"`
}

// Validate checks that the flag is present.
func (r *SetAvailabilityRequest) Validate() error {
	if r == nil || r.IsAvailableNow == nil {
		return fmt.Errorf("isAvailableNow is required: %w", sentinel.ErrInvalidInput)
	}
	return nil
}
