// Package store persists user accounts. Both implementations follow the same
// error contract: sentinel.ErrNotFound for missing users, sentinel.ErrConflict
// when an email is already registered, wrapped infrastructure errors otherwise.
package store

import (
	"context"
	"sync"

	"hemolink/internal/auth/models"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// Memory stores accounts in process memory.
type Memory struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *Memory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[user.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return sentinel.ErrConflict
	}
	s.byID[user.ID] = cloneUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *Memory) GetByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Memory) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(user), nil
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	return &clone
}
