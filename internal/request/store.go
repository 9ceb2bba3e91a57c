package request

import (
	"context"
	"sort"
	"sync"
	"time"

	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// Store persists blood requests.
//
// Error Contract:
//   - sentinel.ErrNotFound when a request does not exist
//   - sentinel.ErrConflict on duplicate IDs
//   - other errors wrap infrastructure failures
type Store interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, requestID id.RequestID) (*Request, error)
	ListOpen(ctx context.Context) ([]*Request, error)
	UpdateStatus(ctx context.Context, requestID id.RequestID, status Status) error
	ExpireOlderThan(ctx context.Context, now time.Time) (int, error)
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Memory is an in-memory Store for tests and single-node deployments.
type Memory struct {
	mu   sync.RWMutex
	byID map[id.RequestID]*Request
}

// NewMemory creates an empty in-memory request store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[id.RequestID]*Request)}
}

func (m *Memory) Create(_ context.Context, r *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[r.ID]; exists {
		return sentinel.ErrConflict
	}
	m.byID[r.ID] = cloneRequest(r)
	return nil
}

func (m *Memory) GetByID(_ context.Context, requestID id.RequestID) (*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(r), nil
}

// ListOpen returns open requests, newest first.
func (m *Memory) ListOpen(_ context.Context) ([]*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Request, 0)
	for _, r := range m.byID {
		if r.Status == StatusOpen {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, requestID id.RequestID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	return nil
}

// ExpireOlderThan moves open requests whose deadline has passed to expired and
// reports how many it transitioned.
func (m *Memory) ExpireOlderThan(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for _, r := range m.byID {
		if r.Status == StatusOpen && !r.ExpiresAt.After(now) {
			r.Status = StatusExpired
			expired++
		}
	}
	return expired, nil
}

// PurgeFinishedBefore deletes fulfilled and expired requests whose deadline
// passed before the cutoff and reports how many it removed.
func (m *Memory) PurgeFinishedBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for requestID, r := range m.byID {
		if r.Status != StatusOpen && !r.ExpiresAt.After(cutoff) {
			delete(m.byID, requestID)
			purged++
		}
	}
	return purged, nil
}

func cloneRequest(r *Request) *Request {
	clone := *r
	return &clone
}
