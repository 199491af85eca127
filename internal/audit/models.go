// Package audit is the append-only record of authorization attempts and
// security-relevant actions. The handshake log lives here.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "helix/pkg/domain"
)

// Category groups events for retention and querying.
type Category string

const (
	// CategoryAuth covers gateway handshakes, secure updates, and
	// revocations.
	CategoryAuth Category = "auth"
	// CategorySecurity covers vault rejections and blocklist changes.
	CategorySecurity Category = "security"
	// CategoryAdmin covers manual grants and registry operations.
	CategoryAdmin Category = "admin"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  Category
	Timestamp time.Time
	UserID    *id.UserID
	Subject   string // silo or caller identifier
	Action    string
	Decision  string
	Reason    string
	RequestID string
}

// Common actions recorded in the handshake log.
const (
	ActionHandshake    = "gateway.handshake"
	ActionSecureUpdate = "gateway.secure_update"
	ActionRevoke       = "gateway.revoke"
)

// Decisions.
const (
	DecisionAuthorized = "authorized"
	DecisionDenied     = "denied"
)
