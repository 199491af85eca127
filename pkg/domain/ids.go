// Package domain holds typed identifiers and enumerations shared across the
// identity core. Construct values via the Parse functions at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	"helix/pkg/domerr"
)

// UserID identifies a player record. Distinct from SiloID at the type level so
// the two can never be swapped in a call.
type UserID uuid.UUID

// DrillID identifies a single training drill instance.
type DrillID uuid.UUID

// ParseUserID validates external input as a user identifier.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseDrillID validates external input as a drill identifier.
func ParseDrillID(s string) (DrillID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DrillID{}, err
	}
	return DrillID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, domerr.New(domerr.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domerr.New(domerr.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, domerr.New(domerr.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// NewUserID mints a fresh user identifier. Intended for tests and seeding.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewDrillID mints a fresh drill identifier.
func NewDrillID() DrillID {
	return DrillID(uuid.New())
}

func (u UserID) String() string { return uuid.UUID(u).String() }
func (u UserID) IsNil() bool    { return uuid.UUID(u) == uuid.Nil }

// MarshalText renders the canonical UUID form so user ids serialize as
// strings rather than byte arrays.
func (u UserID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (d DrillID) String() string { return uuid.UUID(d).String() }
func (d DrillID) IsNil() bool    { return uuid.UUID(d) == uuid.Nil }

func (d DrillID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DrillID) UnmarshalText(b []byte) error {
	parsed, err := ParseDrillID(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SiloID names a registered external subsystem. Silo identifiers come from
// static registry configuration, not user input, so they are plain names
// rather than UUIDs (e.g. "identity-core", "training").
type SiloID string

// ParseSiloID validates external input as a silo identifier.
func ParseSiloID(s string) (SiloID, error) {
	if s == "" {
		return "", domerr.New(domerr.CodeInvalidInput, "silo id cannot be empty")
	}
	if len(s) > 64 {
		return "", domerr.New(domerr.CodeInvalidInput, "silo id must be 64 characters or less")
	}
	return SiloID(s), nil
}

func (s SiloID) String() string { return string(s) }
func (s SiloID) IsNil() bool    { return s == "" }
