// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "hemolink/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where DonorID is expected.
type (
	UserID    UUID
	DonorID   UUID
	RequestID UUID
)

// UUID aliases the underlying representation so callers do not import
// the uuid package directly for comparisons.
type UUID = uuid.UUID

// New functions - for freshly created records.

func NewUserID() UserID       { return UserID(uuid.New()) }
func NewDonorID() DonorID     { return DonorID(uuid.New()) }
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseDonorID(s string) (DonorID, error) {
	id, err := parseUUID(s, "donor ID")
	return DonorID(id), err
}

func ParseRequestID(s string) (RequestID, error) {
	id, err := parseUUID(s, "request ID")
	return RequestID(id), err
}

// String methods - for logging and debugging.

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id DonorID) String() string   { return uuid.UUID(id).String() }
func (id RequestID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DonorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Note: Nil UUIDs are allowed here. Use IsNil() at the service layer for
// business validation, which allows store lookups to return proper
// "not found" errors for consistency.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
