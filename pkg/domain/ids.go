package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "hydration/pkg/domain-errors"
)

// Typed identifiers keep user and intake IDs from being swapped at call sites.
type (
	UserID   uuid.UUID
	IntakeID uuid.UUID
)

func NewUserID() UserID { return UserID(uuid.New()) }
func NewIntakeID() IntakeID { return IntakeID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id IntakeID) String() string { return uuid.UUID(id).String() }
func (id IntakeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses a user ID at a trust boundary. Empty, malformed and nil
// UUIDs are rejected with CodeInvalidInput.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

// ParseIntakeID parses an intake ID at a trust boundary.
func ParseIntakeID(s string) (IntakeID, error) {
	u, err := parseUUID(s, "intake ID")
	return IntakeID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	// uuid.Parse also accepts urn and braced forms; only the canonical 36-char form is allowed here.
	if len(s) != 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
