package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hemolink/internal/auth/models"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
)

// SQLite persists accounts in the embedded database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed user store over an opened database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

func (s *SQLite) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role.String(),
		user.CreatedAt.Unix(),
		user.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLite) GetByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *SQLite) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*models.User, error) {
	var (
		rawID     string
		email     string
		hash      string
		name      string
		role      string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&rawID, &email, &hash, &name, &role, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored user id %q: %w", rawID, err)
	}
	return &models.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.Role(role),
		CreatedAt:    time.Unix(createdAt, 0).UTC(),
		UpdatedAt:    time.Unix(updatedAt, 0).UTC(),
	}, nil
}

// modernc surfaces constraint failures as plain errors; the message text is the
// stable part of its contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
