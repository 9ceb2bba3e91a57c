package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// SQLite persists blood requests in the embedded database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed request store over an opened database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

const requestColumns = `id, seeker_name, blood_group, city, latitude, longitude,
	urgency, note, status, created_at, expires_at`

func (s *SQLite) Create(ctx context.Context, r *Request) error {
	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID.String(),
		r.SeekerName,
		r.BloodGroup.String(),
		r.City,
		r.Latitude,
		r.Longitude,
		r.Urgency.String(),
		r.Note,
		r.Status.String(),
		r.CreatedAt.Unix(),
		r.ExpiresAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *SQLite) GetByID(ctx context.Context, requestID id.RequestID) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = ?`
	r, err := scanRequest(s.db.QueryRowContext(ctx, query, requestID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

// ListOpen returns open requests, newest first.
func (s *SQLite) ListOpen(ctx context.Context) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE status = ? ORDER BY created_at DESC, id`
	rows, err := s.db.QueryContext(ctx, query, StatusOpen.String())
	if err != nil {
		return nil, fmt.Errorf("list open requests: %w", err)
	}
	defer rows.Close()

	out := make([]*Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return out, nil
}

func (s *SQLite) UpdateStatus(ctx context.Context, requestID id.RequestID, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE id = ?`,
		status.String(), requestID.String(),
	)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request status rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ExpireOlderThan moves open requests whose deadline has passed to expired and
// reports how many it transitioned.
func (s *SQLite) ExpireOlderThan(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE status = ? AND expires_at <= ?`,
		StatusExpired.String(), StatusOpen.String(), now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("expire requests: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire requests rows: %w", err)
	}
	return int(rows), nil
}

// PurgeFinishedBefore deletes fulfilled and expired requests whose deadline
// passed before the cutoff and reports how many it removed.
func (s *SQLite) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM requests WHERE status != ? AND expires_at <= ?`,
		StatusOpen.String(), cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge requests: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge requests rows: %w", err)
	}
	return int(rows), nil
}

type requestRow interface {
	Scan(dest ...any) error
}

func scanRequest(row requestRow) (*Request, error) {
	var (
		r          Request
		requestID  string
		bloodGroup string
		urgency    string
		status     string
		createdAt  int64
		expiresAt  int64
	)
	if err := row.Scan(
		&requestID,
		&r.SeekerName,
		&bloodGroup,
		&r.City,
		&r.Latitude,
		&r.Longitude,
		&urgency,
		&r.Note,
		&status,
		&createdAt,
		&expiresAt,
	); err != nil {
		return nil, err
	}

	parsedID, err := id.ParseRequestID(requestID)
	if err != nil {
		return nil, fmt.Errorf("stored request id: %w", err)
	}
	r.ID = parsedID
	r.BloodGroup = donormodels.BloodGroup(bloodGroup)
	r.Urgency = Urgency(urgency)
	r.Status = Status(status)
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	r.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &r, nil
}

// modernc surfaces constraint failures as plain errors; the message text is the
// stable part of its contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
