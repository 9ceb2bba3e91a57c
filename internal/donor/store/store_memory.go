// Package store persists donor profiles. Both implementations follow the same
// error contract: sentinel.ErrNotFound for missing donors, sentinel.ErrConflict
// when an owner already has a profile, wrapped infrastructure errors otherwise.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hemolink/internal/donor/models"
	"hemolink/internal/healthtext"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// Memory stores donor profiles in process memory.
type Memory struct {
	mu      sync.RWMutex
	byID    map[id.DonorID]*models.Donor
	byOwner map[id.UserID]id.DonorID
}

// NewMemory constructs an empty in-memory donor store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[id.DonorID]*models.Donor),
		byOwner: make(map[id.UserID]id.DonorID),
	}
}

func (s *Memory) Create(_ context.Context, donor *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[donor.ID]; ok {
		return sentinel.ErrConflict
	}
	if !donor.OwnerID.IsNil() {
		if _, ok := s.byOwner[donor.OwnerID]; ok {
			return sentinel.ErrConflict
		}
		s.byOwner[donor.OwnerID] = donor.ID
	}
	s.byID[donor.ID] = cloneDonor(donor)
	return nil
}

func (s *Memory) GetByID(_ context.Context, donorID id.DonorID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donor, ok := s.byID[donorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDonor(donor), nil
}

func (s *Memory) GetByOwner(_ context.Context, ownerID id.UserID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donorID, ok := s.byOwner[ownerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	donor, ok := s.byID[donorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDonor(donor), nil
}

func (s *Memory) Update(_ context.Context, donor *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[donor.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !existing.OwnerID.IsNil() && existing.OwnerID != donor.OwnerID {
		delete(s.byOwner, existing.OwnerID)
	}
	if !donor.OwnerID.IsNil() {
		s.byOwner[donor.OwnerID] = donor.ID
	}
	s.byID[donor.ID] = cloneDonor(donor)
	return nil
}

func (s *Memory) SetAvailability(_ context.Context, donorID id.DonorID, available bool, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	donor, ok := s.byID[donorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	donor.IsAvailableNow = available
	donor.UpdatedAt = updatedAt
	return nil
}

// List returns every donor ordered by creation time, then ID for stable ties.
func (s *Memory) List(_ context.Context) ([]*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donors := make([]*models.Donor, 0, len(s.byID))
	for _, donor := range s.byID {
		donors = append(donors, cloneDonor(donor))
	}
	sort.Slice(donors, func(i, j int) bool {
		if !donors[i].CreatedAt.Equal(donors[j].CreatedAt) {
			return donors[i].CreatedAt.Before(donors[j].CreatedAt)
		}
		return donors[i].ID.String() < donors[j].ID.String()
	})
	return donors, nil
}

func cloneDonor(d *models.Donor) *models.Donor {
	clone := *d
	if d.DateOfBirth != nil {
		born := *d.DateOfBirth
		clone.DateOfBirth = &born
	}
	if d.LastDonationDate != nil {
		date := *d.LastDonationDate
		clone.LastDonationDate = &date
	}
	if d.HealthFlags != nil {
		clone.HealthFlags = append([]healthtext.Flag(nil), d.HealthFlags...)
	}
	return &clone
}
