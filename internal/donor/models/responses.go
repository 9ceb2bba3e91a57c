package models

import (
	"time"

	"hemolink/internal/healthtext"
)

// DonorResponse is the wire form of a donor profile.
type DonorResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"dateOfBirth,omitempty"`
	BloodGroup       string   `json:"bloodGroup"`
	City             string   `json:"city"`
	Phone            string   `json:"phone,omitempty"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	IsAvailableNow   bool     `json:"isAvailableNow"`
	LastDonationDate string   `json:"lastDonationDate,omitempty"`
	HealthFlags      []string `json:"healthFlags"`
	CreatedAt        string   `json:"createdAt"`
}

// ScoredDonorResponse is a donor enriched with its suitability verdict.
type ScoredDonorResponse struct {
	Donor      DonorResponse `json:"donor"`
	Score      int           `json:"score"`
	Reasons    []string      `json:"reasons"`
	Source     string        `json:"source"`
	DistanceKm float64       `json:"distanceKm"`
}

// ListResponse wraps a scored donor listing.
type ListResponse struct {
	Donors []ScoredDonorResponse `json:"donors"`
	Count  int                   `json:"count"`
}

// NewDonorResponse converts a donor into its wire form.
func NewDonorResponse(d Donor) DonorResponse {
	resp := DonorResponse{
		ID:             d.ID.String(),
		Name:           d.Name,
		BloodGroup:     d.BloodGroup.String(),
		City:           d.City,
		Phone:          d.Phone,
		Lat:            d.Latitude,
		Lng:            d.Longitude,
		IsAvailableNow: d.IsAvailableNow,
		HealthFlags:    healthtext.Strings(d.HealthFlags),
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.DateOfBirth != nil {
		resp.DateOfBirth = d.DateOfBirth.UTC().Format(dateOnly)
	}
	if d.LastDonationDate != nil {
		resp.LastDonationDate = d.LastDonationDate.UTC().Format(time.RFC3339)
	}
	return resp
}

// NewScoredDonorResponse converts a scored donor into its wire form.
// Reasons are never null in API output.
func NewScoredDonorResponse(sd ScoredDonor) ScoredDonorResponse {
	reasons := sd.Result.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return ScoredDonorResponse{
		Donor:      NewDonorResponse(sd.Donor),
		Score:      sd.Result.Score,
		Reasons:    reasons,
		Source:     string(sd.Result.Source),
		DistanceKm: sd.DistanceKm,
	}
}
