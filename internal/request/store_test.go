package request

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/platform/database"
	"hemolink/internal/sentinel"
	"hemolink/migrations"
	id "hemolink/pkg/domain"
)

var storeBaseTime = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "requests.db")
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background(), migrations.FS))
	return db
}

func eachStore(t *testing.T, run func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		run(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		run(t, NewSQLite(openTestDB(t).DB))
	})
}

func newRequest(seeker string) *Request {
	return &Request{
		ID:         id.NewRequestID(),
		SeekerName: seeker,
		BloodGroup: donormodels.ONegative,
		City:       "Mumbai",
		Latitude:   19.076,
		Longitude:  72.8777,
		Urgency:    UrgencyHigh,
		Note:       "post-surgery transfusion",
		Status:     StatusOpen,
		CreatedAt:  storeBaseTime,
		ExpiresAt:  storeBaseTime.Add(24 * time.Hour),
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := newRequest("Meera Iyer")
		require.NoError(t, s.Create(ctx, r))

		got, err := s.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})
}

func TestStoreGetMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetByID(context.Background(), id.NewRequestID())
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStoreDuplicateID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := newRequest("Meera Iyer")
		require.NoError(t, s.Create(ctx, r))
		require.ErrorIs(t, s.Create(ctx, r), sentinel.ErrConflict)
	})
}

func TestStoreListOpenFiltersAndOrders(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		older := newRequest("First Seeker")
		older.CreatedAt = storeBaseTime
		newer := newRequest("Second Seeker")
		newer.CreatedAt = storeBaseTime.Add(time.Hour)
		closed := newRequest("Closed Seeker")
		closed.Status = StatusFulfilled

		for _, r := range []*Request{older, newer, closed} {
			require.NoError(t, s.Create(ctx, r))
		}

		open, err := s.ListOpen(ctx)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "Second Seeker", open[0].SeekerName, "newest first")
		assert.Equal(t, "First Seeker", open[1].SeekerName)
	})
}

func TestStoreUpdateStatus(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := newRequest("Meera Iyer")
		require.NoError(t, s.Create(ctx, r))

		require.NoError(t, s.UpdateStatus(ctx, r.ID, StatusFulfilled))

		got, err := s.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusFulfilled, got.Status)

		require.ErrorIs(t, s.UpdateStatus(ctx, id.NewRequestID(), StatusExpired), sentinel.ErrNotFound)
	})
}

func TestStoreExpireOlderThan(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		now := storeBaseTime.Add(48 * time.Hour)

		pastOpen := newRequest("Past Open")
		pastOpen.ExpiresAt = now.Add(-time.Hour)
		futureOpen := newRequest("Future Open")
		futureOpen.ExpiresAt = now.Add(time.Hour)
		pastFulfilled := newRequest("Past Fulfilled")
		pastFulfilled.Status = StatusFulfilled
		pastFulfilled.ExpiresAt = now.Add(-time.Hour)

		for _, r := range []*Request{pastOpen, futureOpen, pastFulfilled} {
			require.NoError(t, s.Create(ctx, r))
		}

		expired, err := s.ExpireOlderThan(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, expired, "only past-deadline open requests transition")

		got, err := s.GetByID(ctx, pastOpen.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, got.Status)

		got, err = s.GetByID(ctx, futureOpen.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, got.Status)

		got, err = s.GetByID(ctx, pastFulfilled.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusFulfilled, got.Status, "fulfilled requests stay fulfilled")
	})
}

func TestStorePurgeFinishedBefore(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		cutoff := storeBaseTime.Add(30 * 24 * time.Hour)

		oldExpired := newRequest("Old Expired")
		oldExpired.Status = StatusExpired
		oldExpired.ExpiresAt = cutoff.Add(-time.Hour)
		oldFulfilled := newRequest("Old Fulfilled")
		oldFulfilled.Status = StatusFulfilled
		oldFulfilled.ExpiresAt = cutoff.Add(-time.Hour)
		oldOpen := newRequest("Old Open")
		oldOpen.ExpiresAt = cutoff.Add(-time.Hour)
		recentExpired := newRequest("Recent Expired")
		recentExpired.Status = StatusExpired
		recentExpired.ExpiresAt = cutoff.Add(time.Hour)

		for _, r := range []*Request{oldExpired, oldFulfilled, oldOpen, recentExpired} {
			require.NoError(t, s.Create(ctx, r))
		}

		purged, err := s.PurgeFinishedBefore(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, 2, purged)

		_, err = s.GetByID(ctx, oldExpired.ID)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.GetByID(ctx, oldFulfilled.ID)
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		// Open requests are never purged, however old; the sweep expires them first.
		_, err = s.GetByID(ctx, oldOpen.ID)
		require.NoError(t, err)
		_, err = s.GetByID(ctx, recentExpired.ID)
		require.NoError(t, err)
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := newRequest("Meera Iyer")
		require.NoError(t, s.Create(ctx, r))

		got, err := s.GetByID(ctx, r.ID)
		require.NoError(t, err)
		got.SeekerName = "Changed"

		again, err := s.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meera Iyer", again.SeekerName)
	})
}
