package testutil

import (
	"time"

	"github.com/google/uuid"

	authmodels "hemolink/internal/auth/models"
	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/healthtext"
	"hemolink/internal/request"
	id "hemolink/pkg/domain"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	UserID1    id.UserID
	UserID2    id.UserID
	DonorID1   id.DonorID
	DonorID2   id.DonorID
	RequestID1 id.RequestID
	RequestID2 id.RequestID
}{
	UserID1:    id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:    id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	DonorID1:   id.DonorID(uuid.MustParse("dddd0000-0000-0000-0000-000000000001")),
	DonorID2:   id.DonorID(uuid.MustParse("dddd0000-0000-0000-0000-000000000002")),
	RequestID1: id.RequestID(uuid.MustParse("eeee0000-0000-0000-0000-000000000001")),
	RequestID2: id.RequestID(uuid.MustParse("eeee0000-0000-0000-0000-000000000002")),
}

// FixtureTime anchors builder timestamps so equality assertions never race
// the wall clock.
var FixtureTime = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

// DonorBuilder provides a fluent interface for building test donors.
type DonorBuilder struct {
	donor *donormodels.Donor
}

// NewDonorBuilder creates a DonorBuilder with sensible defaults: an
// available unowned O+ donor in Mumbai who never donated.
func NewDonorBuilder() *DonorBuilder {
	return &DonorBuilder{
		donor: &donormodels.Donor{
			ID:             id.NewDonorID(),
			Name:           "Asha Rao",
			BloodGroup:     donormodels.OPositive,
			City:           "Mumbai",
			Phone:          "+91 98200 00000",
			Latitude:       19.076,
			Longitude:      72.8777,
			IsAvailableNow: true,
			CreatedAt:      FixtureTime,
			UpdatedAt:      FixtureTime,
		},
	}
}

func (b *DonorBuilder) WithID(donorID id.DonorID) *DonorBuilder {
	b.donor.ID = donorID
	return b
}

func (b *DonorBuilder) WithOwner(ownerID id.UserID) *DonorBuilder {
	b.donor.OwnerID = ownerID
	return b
}

func (b *DonorBuilder) WithName(name string) *DonorBuilder {
	b.donor.Name = name
	return b
}

func (b *DonorBuilder) WithBloodGroup(group donormodels.BloodGroup) *DonorBuilder {
	b.donor.BloodGroup = group
	return b
}

func (b *DonorBuilder) WithLocation(city string, lat, lng float64) *DonorBuilder {
	b.donor.City = city
	b.donor.Latitude = lat
	b.donor.Longitude = lng
	return b
}

func (b *DonorBuilder) Available(available bool) *DonorBuilder {
	b.donor.IsAvailableNow = available
	return b
}

func (b *DonorBuilder) WithDateOfBirth(born time.Time) *DonorBuilder {
	b.donor.DateOfBirth = &born
	return b
}

func (b *DonorBuilder) WithLastDonation(donated time.Time) *DonorBuilder {
	b.donor.LastDonationDate = &donated
	return b
}

func (b *DonorBuilder) WithHealthFlags(flags ...healthtext.Flag) *DonorBuilder {
	b.donor.HealthFlags = flags
	return b
}

func (b *DonorBuilder) WithHealthSummary(summary string) *DonorBuilder {
	b.donor.HealthSummary = summary
	return b
}

func (b *DonorBuilder) CreatedAt(t time.Time) *DonorBuilder {
	b.donor.CreatedAt = t
	b.donor.UpdatedAt = t
	return b
}

func (b *DonorBuilder) Build() *donormodels.Donor {
	return b.donor
}

// RequestBuilder provides a fluent interface for building blood requests.
type RequestBuilder struct {
	req *request.Request
}

// NewRequestBuilder creates a RequestBuilder with sensible defaults: an
// open high-urgency B+ request in Mumbai with a day left on the clock.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		req: &request.Request{
			ID:         id.NewRequestID(),
			SeekerName: "Meera Iyer",
			BloodGroup: donormodels.BPositive,
			City:       "Mumbai",
			Latitude:   19.076,
			Longitude:  72.8777,
			Urgency:    request.UrgencyHigh,
			Status:     request.StatusOpen,
			CreatedAt:  FixtureTime,
			ExpiresAt:  FixtureTime.Add(24 * time.Hour),
		},
	}
}

func (b *RequestBuilder) WithID(requestID id.RequestID) *RequestBuilder {
	b.req.ID = requestID
	return b
}

func (b *RequestBuilder) WithSeeker(name string) *RequestBuilder {
	b.req.SeekerName = name
	return b
}

func (b *RequestBuilder) WithBloodGroup(group donormodels.BloodGroup) *RequestBuilder {
	b.req.BloodGroup = group
	return b
}

func (b *RequestBuilder) WithLocation(city string, lat, lng float64) *RequestBuilder {
	b.req.City = city
	b.req.Latitude = lat
	b.req.Longitude = lng
	return b
}

func (b *RequestBuilder) WithUrgency(urgency request.Urgency) *RequestBuilder {
	b.req.Urgency = urgency
	return b
}

func (b *RequestBuilder) WithNote(note string) *RequestBuilder {
	b.req.Note = note
	return b
}

func (b *RequestBuilder) WithStatus(status request.Status) *RequestBuilder {
	b.req.Status = status
	return b
}

func (b *RequestBuilder) ExpiresAt(t time.Time) *RequestBuilder {
	b.req.ExpiresAt = t
	return b
}

func (b *RequestBuilder) Build() *request.Request {
	return b.req
}

// UserBuilder provides a fluent interface for building test accounts.
type UserBuilder struct {
	user *authmodels.User
}

// NewUserBuilder creates a UserBuilder with sensible defaults.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: &authmodels.User{
			ID:           id.NewUserID(),
			Name:         "Asha Rao",
			Email:        "asha@example.com",
			PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
			Role:         authmodels.RoleDonor,
			CreatedAt:    FixtureTime,
			UpdatedAt:    FixtureTime,
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

func (b *UserBuilder) WithRole(role authmodels.Role) *UserBuilder {
	b.user.Role = role
	return b
}

func (b *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	b.user.PasswordHash = hash
	return b
}

func (b *UserBuilder) Build() *authmodels.User {
	return b.user
}
