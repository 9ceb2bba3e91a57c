package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hemolink/internal/donor/models"
	"hemolink/internal/healthtext"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// SQLite persists donor profiles in the embedded database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed donor store over an opened database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

const donorColumns = `id, owner_id, name, date_of_birth, blood_group, city, phone, latitude, longitude,
	available_now, last_donation_date, health_flags, health_summary, created_at, updated_at`

func (s *SQLite) Create(ctx context.Context, donor *models.Donor) error {
	query := `
		INSERT INTO donors (` + donorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	flags, err := marshalFlags(donor.HealthFlags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query,
		donor.ID.String(),
		nullableOwner(donor.OwnerID),
		donor.Name,
		nullableUnix(donor.DateOfBirth),
		donor.BloodGroup.String(),
		donor.City,
		donor.Phone,
		donor.Latitude,
		donor.Longitude,
		donor.IsAvailableNow,
		nullableUnix(donor.LastDonationDate),
		flags,
		donor.HealthSummary,
		donor.CreatedAt.Unix(),
		donor.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert donor: %w", err)
	}
	return nil
}

func (s *SQLite) GetByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = ?`
	donor, err := scanDonor(s.db.QueryRowContext(ctx, query, donorID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get donor: %w", err)
	}
	return donor, nil
}

func (s *SQLite) GetByOwner(ctx context.Context, ownerID id.UserID) (*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE owner_id = ?`
	donor, err := scanDonor(s.db.QueryRowContext(ctx, query, ownerID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get donor by owner: %w", err)
	}
	return donor, nil
}

func (s *SQLite) Update(ctx context.Context, donor *models.Donor) error {
	query := `
		UPDATE donors
		SET owner_id = ?, name = ?, date_of_birth = ?, blood_group = ?, city = ?, phone = ?,
			latitude = ?, longitude = ?, available_now = ?, last_donation_date = ?,
			health_flags = ?, health_summary = ?, updated_at = ?
		WHERE id = ?
	`
	flags, err := marshalFlags(donor.HealthFlags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query,
		nullableOwner(donor.OwnerID),
		donor.Name,
		nullableUnix(donor.DateOfBirth),
		donor.BloodGroup.String(),
		donor.City,
		donor.Phone,
		donor.Latitude,
		donor.Longitude,
		donor.IsAvailableNow,
		nullableUnix(donor.LastDonationDate),
		flags,
		donor.HealthSummary,
		donor.UpdatedAt.Unix(),
		donor.ID.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update donor: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donor rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQLite) SetAvailability(ctx context.Context, donorID id.DonorID, available bool, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE donors SET available_now = ?, updated_at = ? WHERE id = ?`,
		available, updatedAt.Unix(), donorID.String(),
	)
	if err != nil {
		return fmt.Errorf("set donor availability: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set donor availability rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]*models.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	var donors []*models.Donor
	for rows.Next() {
		donor, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, donor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return donors, nil
}

type donorRow interface {
	Scan(dest ...any) error
}

func scanDonor(row donorRow) (*models.Donor, error) {
	var (
		donor        models.Donor
		donorID      string
		ownerID      sql.NullString
		dateOfBirth  sql.NullInt64
		bloodGroup   string
		lastDonation sql.NullInt64
		flagsJSON    string
		createdAt    int64
		updatedAt    int64
	)
	if err := row.Scan(
		&donorID,
		&ownerID,
		&donor.Name,
		&dateOfBirth,
		&bloodGroup,
		&donor.City,
		&donor.Phone,
		&donor.Latitude,
		&donor.Longitude,
		&donor.IsAvailableNow,
		&lastDonation,
		&flagsJSON,
		&donor.HealthSummary,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	parsedID, err := id.ParseDonorID(donorID)
	if err != nil {
		return nil, fmt.Errorf("stored donor id: %w", err)
	}
	donor.ID = parsedID
	if ownerID.Valid {
		owner, err := id.ParseUserID(ownerID.String)
		if err != nil {
			return nil, fmt.Errorf("stored owner id: %w", err)
		}
		donor.OwnerID = owner
	}
	if dateOfBirth.Valid {
		born := time.Unix(dateOfBirth.Int64, 0).UTC()
		donor.DateOfBirth = &born
	}
	donor.BloodGroup = models.BloodGroup(bloodGroup)
	if lastDonation.Valid {
		date := time.Unix(lastDonation.Int64, 0).UTC()
		donor.LastDonationDate = &date
	}
	var rawFlags []string
	if err := json.Unmarshal([]byte(flagsJSON), &rawFlags); err != nil {
		return nil, fmt.Errorf("stored health flags: %w", err)
	}
	donor.HealthFlags = healthtext.Canon(rawFlags)
	donor.CreatedAt = time.Unix(createdAt, 0).UTC()
	donor.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &donor, nil
}

func marshalFlags(flags []healthtext.Flag) (string, error) {
	data, err := json.Marshal(healthtext.Strings(flags))
	if err != nil {
		return "", fmt.Errorf("marshal health flags: %w", err)
	}
	return string(data), nil
}

func nullableOwner(ownerID id.UserID) any {
	if ownerID.IsNil() {
		return nil
	}
	return ownerID.String()
}

func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// modernc surfaces constraint failures as plain errors; the message text is the
// stable part of its contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
