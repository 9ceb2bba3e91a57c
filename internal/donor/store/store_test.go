package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemolink/internal/donor/models"
	"hemolink/internal/healthtext"
	"hemolink/internal/platform/database"
	"hemolink/internal/sentinel"
	"hemolink/migrations"
	id "hemolink/pkg/domain"
	"hemolink/pkg/testutil"
)

// donorStore is the behavior contract both implementations must satisfy.
type donorStore interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	GetByOwner(ctx context.Context, ownerID id.UserID) (*models.Donor, error)
	Update(ctx context.Context, donor *models.Donor) error
	SetAvailability(ctx context.Context, donorID id.DonorID, available bool, updatedAt time.Time) error
	List(ctx context.Context) ([]*models.Donor, error)
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "donors.db")
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background(), migrations.FS))
	return db
}

// eachStore runs the conformance suite against every implementation.
func eachStore(t *testing.T, run func(t *testing.T, s donorStore)) {
	t.Run("memory", func(t *testing.T) {
		run(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		run(t, NewSQLite(openTestDB(t).DB))
	})
}

var baseTime = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newDonor(name string) *models.Donor {
	return &models.Donor{
		ID:             id.NewDonorID(),
		Name:           name,
		BloodGroup:     models.OPositive,
		City:           "Mumbai",
		Phone:          "+91 98200 00000",
		Latitude:       19.076,
		Longitude:      72.8777,
		IsAvailableNow: true,
		CreatedAt:      baseTime,
		UpdatedAt:      baseTime,
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()
		born := time.Date(1994, 3, 12, 0, 0, 0, 0, time.UTC)
		donated := baseTime.AddDate(0, -4, 0)
		donor := newDonor("Asha Rao")
		donor.OwnerID = id.NewUserID()
		donor.DateOfBirth = &born
		donor.LastDonationDate = &donated
		donor.HealthFlags = []healthtext.Flag{healthtext.FlagDiabetes, healthtext.FlagBP}
		donor.HealthSummary = "diabetic, on bp medication"

		require.NoError(t, s.Create(ctx, donor))

		got, err := s.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		assert.Equal(t, donor, got)

		byOwner, err := s.GetByOwner(ctx, donor.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, donor.ID, byOwner.ID)
	})
}

func TestStoreGetMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()

		_, err := s.GetByID(ctx, id.NewDonorID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = s.GetByOwner(ctx, id.NewUserID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStoreOwnerUniqueness(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()
		owner := id.NewUserID()

		first := newDonor("First Profile")
		first.OwnerID = owner
		require.NoError(t, s.Create(ctx, first))

		second := newDonor("Second Profile")
		second.OwnerID = owner
		assert.ErrorIs(t, s.Create(ctx, second), sentinel.ErrConflict)
	})
}

func TestStoreUnownedDonorsCoexist(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()

		require.NoError(t, s.Create(ctx, newDonor("Walk-in One")))
		require.NoError(t, s.Create(ctx, newDonor("Walk-in Two")))

		donors, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, donors, 2)
	})
}

func TestStoreDuplicateID(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()
		donor := newDonor("Asha Rao")

		require.NoError(t, s.Create(ctx, donor))
		assert.ErrorIs(t, s.Create(ctx, donor), sentinel.ErrConflict)
	})
}

func TestStoreUpdate(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()
		donor := newDonor("Asha Rao")
		donor.OwnerID = id.NewUserID()
		require.NoError(t, s.Create(ctx, donor))

		donated := baseTime.AddDate(0, -1, 0)
		donor.City = "Pune"
		donor.BloodGroup = models.ABNegative
		donor.LastDonationDate = &donated
		donor.HealthFlags = []healthtext.Flag{healthtext.FlagAnemia}
		donor.UpdatedAt = baseTime.Add(time.Hour)
		require.NoError(t, s.Update(ctx, donor))

		got, err := s.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		assert.Equal(t, donor, got)
	})
}

func TestStoreUpdateMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		err := s.Update(context.Background(), newDonor("Ghost"))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStoreSetAvailability(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()
		donor := newDonor("Asha Rao")
		require.NoError(t, s.Create(ctx, donor))

		flipped := baseTime.Add(2 * time.Hour)
		require.NoError(t, s.SetAvailability(ctx, donor.ID, false, flipped))

		got, err := s.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		assert.False(t, got.IsAvailableNow)
		assert.Equal(t, flipped, got.UpdatedAt)

		err = s.SetAvailability(ctx, id.NewDonorID(), true, flipped)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStoreListOrder(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()

		third := newDonor("Third")
		third.CreatedAt = baseTime.Add(2 * time.Hour)
		second := newDonor("Second")
		second.CreatedAt = baseTime.Add(time.Hour)
		first := newDonor("First")

		for _, d := range []*models.Donor{third, first, second} {
			require.NoError(t, s.Create(ctx, d))
		}

		donors, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, donors, 3)
		assert.Equal(t, "First", donors[0].Name)
		assert.Equal(t, "Second", donors[1].Name)
		assert.Equal(t, "Third", donors[2].Name)
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		ctx := context.Background()
		donor := newDonor("Asha Rao")
		donor.HealthFlags = []healthtext.Flag{healthtext.FlagDiabetes}
		require.NoError(t, s.Create(ctx, donor))

		got, err := s.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		got.Name = "Tampered"
		got.HealthFlags[0] = healthtext.FlagSeriousCondition

		fresh, err := s.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", fresh.Name)
		assert.Equal(t, healthtext.FlagDiabetes, fresh.HealthFlags[0])
	})
}

func TestStoreConcurrentOwnerClaim(t *testing.T) {
	eachStore(t, func(t *testing.T, s donorStore) {
		owner := testutil.TestIDs.UserID1

		res := testutil.RunConcurrent(8, func(idx int) error {
			donor := testutil.NewDonorBuilder().
				WithName(fmt.Sprintf("Claimant %d", idx)).
				WithOwner(owner).
				Build()
			return s.Create(context.Background(), donor)
		})

		assert.EqualValues(t, 1, res.Successes, "exactly one profile may claim an owner")
		assert.EqualValues(t, 7, res.Conflicts)
		assert.Zero(t, res.Errors)

		_, err := s.GetByOwner(context.Background(), owner)
		require.NoError(t, err)
	})
}
