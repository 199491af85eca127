package gateway

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

const defaultSessionTTL = 15 * time.Minute

// sessionClaims is the JWT payload for a handshake-scoped session.
type sessionClaims struct {
	SiloID string `json:"silo_id"`
	Intent string `json:"intent"`
	jwt.RegisteredClaims
}

// Sessions issues and validates handshake-scoped tokens. The signing key is
// minted at construction, so sessions never survive a process restart.
type Sessions struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time

	mu     sync.Mutex
	active map[string]Session
}

func NewSessions(now func() time.Time) (*Sessions, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("could not generate session signing key: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{
		signingKey: key,
		ttl:        defaultSessionTTL,
		now:        now,
		active:     make(map[string]Session),
	}, nil
}

// Issue mints a session token for an authorized handshake.
func (s *Sessions) Issue(siloID id.SiloID, intent id.Intent) (string, error) {
	issuedAt := s.now()
	session := Session{
		TokenID:   uuid.NewString(),
		SiloID:    siloID,
		Intent:    intent,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SiloID: siloID.String(),
		Intent: intent.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			Issuer:    "helix.gateway",
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("could not sign session token: %w", err)
	}

	s.mu.Lock()
	s.active[session.TokenID] = session
	s.mu.Unlock()
	return signed, nil
}

// Validate checks a token and returns its session. Revoked and expired
// sessions fail with CodeInvalidKey.
func (s *Sessions) Validate(tokenString string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, domerr.New(domerr.CodeInvalidKey, "session has expired")
		}
		return Session{}, domerr.New(domerr.CodeInvalidKey, "invalid session token")
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Session{}, domerr.New(domerr.CodeInvalidKey, "invalid session token")
	}

	s.mu.Lock()
	session, live := s.active[claims.ID]
	s.mu.Unlock()
	if !live {
		return Session{}, domerr.New(domerr.CodeInvalidKey, "session revoked or unknown")
	}
	return session, nil
}

// Revoke invalidates a session. Revoking an unknown or already-revoked token
// is a no-op.
func (s *Sessions) Revoke(tokenString string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, &sessionClaims{})
	if err != nil {
		return
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.active, claims.ID)
	s.mu.Unlock()
}
