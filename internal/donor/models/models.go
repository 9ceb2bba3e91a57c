package models

import (
	"time"

	"hemolink/internal/eligibility"
	"hemolink/internal/healthtext"
	id "hemolink/pkg/domain"
)

// Donor is a registered donor profile.
//
// Profiles created through the public endpoint or the seed loader carry a nil
// OwnerID; profiles managed through the /me endpoints are bound to the account
// that owns them, at most one profile per account.
type Donor struct {
	ID               id.DonorID
	OwnerID          id.UserID
	Name             string
	DateOfBirth      *time.Time
	BloodGroup       BloodGroup
	City             string
	Phone            string
	Latitude         float64
	Longitude        float64
	IsAvailableNow   bool
	LastDonationDate *time.Time
	HealthFlags      []healthtext.Flag
	HealthSummary    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DaysSinceLastDonation converts the stored donation date into the scorer's
// day count. Donors with no recorded donation get the never-donated sentinel;
// future-dated records count as donated today.
func (d Donor) DaysSinceLastDonation(now time.Time) int {
	if d.LastDonationDate == nil {
		return eligibility.NeverDonatedDays
	}
	days := int(now.Sub(*d.LastDonationDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ScoredDonor pairs a donor with its current suitability verdict.
type ScoredDonor struct {
	Donor      Donor
	Result     eligibility.Result
	DistanceKm float64
}
