package request

import (
	"fmt"
	"strings"
	"time"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/sentinel"
	"hemolink/pkg/platform/validation"
)

// CreateRequest is the payload for posting a blood request.
type CreateRequest struct {
	SeekerName string   `json:"seekerName"`
	BloodGroup string   `json:"bloodGroup"`
	City       string   `json:"city"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Urgency    string   `json:"urgency"`
	Note       string   `json:"note"`

	bloodGroup donormodels.BloodGroup
	urgency    Urgency
}

// Normalize trims whitespace from free-text fields.
func (r *CreateRequest) Normalize() {
	r.SeekerName = strings.TrimSpace(r.SeekerName)
	r.BloodGroup = strings.TrimSpace(r.BloodGroup)
	r.City = strings.TrimSpace(r.City)
	r.Urgency = strings.TrimSpace(r.Urgency)
	r.Note = strings.TrimSpace(r.Note)
}

// Validate checks required fields and caches the parsed blood group and
// urgency for the accessors below.
func (r *CreateRequest) Validate() error {
	if r.SeekerName == "" {
		return fmt.Errorf("seeker name is required: %w", sentinel.ErrInvalidInput)
	}
	if err := validation.CheckStringLength("seekerName", r.SeekerName, validation.MaxNameLength); err != nil {
		return err
	}
	if r.BloodGroup == "" {
		return fmt.Errorf("blood group is required: %w", sentinel.ErrInvalidInput)
	}
	group, err := donormodels.ParseBloodGroup(r.BloodGroup)
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
	if r.Lat == nil || r.Lng == nil {
		return fmt.Errorf("lat and lng are required: %w", sentinel.ErrInvalidInput)
	}
	if *r.Lat < -90 || *r.Lat > 90 {
		return fmt.Errorf("lat must be within [-90, 90]: %w", sentinel.ErrInvalidInput)
	}
	if *r.Lng < -180 || *r.Lng > 180 {
		return fmt.Errorf("lng must be within [-180, 180]: %w", sentinel.ErrInvalidInput)
	}
	urgency, err := ParseUrgency(r.Urgency)
	if err != nil {
		return err
	}
	r.urgency = urgency
	if err := validation.CheckStringLength("note", r.Note, validation.MaxNoteLength); err != nil {
		return err
	}
	return nil
}

// ParsedBloodGroup returns the blood group cached by Validate.
func (r *CreateRequest) ParsedBloodGroup() donormodels.BloodGroup { return r.bloodGroup }

// ParsedUrgency returns the urgency cached by Validate.
func (r *CreateRequest) ParsedUrgency() Urgency { return r.urgency }

// Response is the wire form of a blood request.
type Response struct {
	ID         string  `json:"id"`
	SeekerName string  `json:"seekerName"`
	BloodGroup string  `json:"bloodGroup"`
	City       string  `json:"city"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Urgency    string  `json:"urgency"`
	Note       string  `json:"note,omitempty"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
	ExpiresAt  string  `json:"expiresAt"`
}

// ListResponse wraps an open-request listing.
type ListResponse struct {
	Requests []Response `json:"requests"`
	Count    int        `json:"count"`
}

// NewResponse converts a request into its wire form.
func NewResponse(r *Request) Response {
	return Response{
		ID:         r.ID.String(),
		SeekerName: r.SeekerName,
		BloodGroup: r.BloodGroup.String(),
		City:       r.City,
		Lat:        r.Latitude,
		Lng:        r.Longitude,
		Urgency:    r.Urgency.String(),
		Note:       r.Note,
		Status:     r.Status.String(),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:  r.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
