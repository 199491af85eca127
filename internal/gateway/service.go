package gateway

import (
	"context"
	"errors"
	"log/slog"

	"helix/internal/audit"
	"helix/internal/clock"
	"helix/internal/gateway/secrets"
	"helix/internal/platform/metrics"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/requestcontext"
)

// Applier executes the field writes an authorized SecureUpdate carries. The
// coordinator provides the production implementation; the gateway itself
// never touches the player record.
type Applier interface {
	Apply(ctx context.Context, userID id.UserID, updates Updates) (applied []string, err error)
}

// Service authenticates silos and mediates every write to the player record.
type Service struct {
	registry *Registry
	sessions *Sessions
	lockout  *Lockout
	applier  Applier
	auditor  *audit.Publisher
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLockout(l *Lockout) Option {
	return func(s *Service) { s.lockout = l }
}

func New(registry *Registry, applier Applier, auditor *audit.Publisher, clk clock.Clock, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("silo registry is required")
	}
	if applier == nil {
		return nil, errors.New("update applier is required")
	}
	if auditor == nil {
		return nil, errors.New("audit publisher is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	sessions, err := NewSessions(clk.Now)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		registry: registry,
		sessions: sessions,
		applier:  applier,
		auditor:  auditor,
		clock:    clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.lockout == nil {
		svc.lockout = NewLockout(DefaultLockoutPolicy())
	}
	return svc, nil
}

// Handshake authenticates a silo for the requested intent and, when
// authorized, issues a session token. Failures are reported in the result,
// never thrown; each failure is counted toward the silo's lockout.
func (s *Service) Handshake(ctx context.Context, siloID id.SiloID, apiKey string, intent id.Intent) (HandshakeResult, error) {
	now := s.clock.Now()

	if s.lockout.Locked(siloID.String(), now) {
		return s.deny(ctx, siloID, domerr.CodeLockedOut, false)
	}

	silo, ok := s.registry.Lookup(siloID)
	if !ok {
		return s.deny(ctx, siloID, domerr.CodeSiloNotFound, true)
	}
	if err := secrets.Verify(apiKey, silo.APIKeyDigest); err != nil {
		if domerr.HasCode(err, domerr.CodeInvalidKey) {
			return s.deny(ctx, siloID, domerr.CodeInvalidKey, true)
		}
		return HandshakeResult{}, err
	}
	if intent == id.IntentWrite && !silo.Has(id.CapabilityWrite) {
		return s.deny(ctx, siloID, domerr.CodeWriteNotAuthorized, false)
	}

	token, err := s.sessions.Issue(siloID, intent)
	if err != nil {
		return HandshakeResult{}, err
	}
	s.lockout.Reset(siloID.String())

	s.audit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Subject:  siloID.String(),
		Action:   audit.ActionHandshake,
		Decision: audit.DecisionAuthorized,
	})
	s.metrics.IncHandshake("authorized")
	if s.logger != nil {
		s.logger.InfoContext(ctx, "handshake authorized",
			"silo_id", siloID.String(),
			"intent", intent.String(),
		)
	}
	return HandshakeResult{Authorized: true, SiloName: silo.DisplayName, SessionToken: token}, nil
}

// SecureUpdate applies field writes under a valid write session. Every call
// lands in the handshake log, authorized or not.
func (s *Service) SecureUpdate(ctx context.Context, sessionToken string, userID id.UserID, updates Updates) (UpdateResult, error) {
	session, err := s.sessions.Validate(sessionToken)
	if err != nil {
		s.auditUpdate(ctx, "", userID, audit.DecisionDenied, domerr.CodeInvalidKey)
		return UpdateResult{Reason: domerr.CodeInvalidKey}, nil
	}

	silo, ok := s.registry.Lookup(session.SiloID)
	if !ok {
		s.auditUpdate(ctx, session.SiloID.String(), userID, audit.DecisionDenied, domerr.CodeSiloNotFound)
		return UpdateResult{Reason: domerr.CodeSiloNotFound}, nil
	}
	if session.Intent != id.IntentWrite || !silo.Has(id.CapabilityWrite) {
		s.auditUpdate(ctx, session.SiloID.String(), userID, audit.DecisionDenied, domerr.CodeWriteNotAuthorized)
		return UpdateResult{Reason: domerr.CodeWriteNotAuthorized}, nil
	}

	applied, err := s.applier.Apply(requestcontext.WithCallerSilo(ctx, session.SiloID.String()), userID, updates)
	if err != nil {
		s.auditUpdate(ctx, session.SiloID.String(), userID, audit.DecisionDenied, domerr.CodeOf(err))
		return UpdateResult{Reason: domerr.CodeOf(err)}, nil
	}

	s.auditUpdate(ctx, session.SiloID.String(), userID, audit.DecisionAuthorized, "")
	return UpdateResult{OK: true, AppliedFields: applied}, nil
}

// Revoke invalidates a session token.
func (s *Service) Revoke(ctx context.Context, sessionToken string) {
	s.sessions.Revoke(sessionToken)
	s.audit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Action:   audit.ActionRevoke,
		Decision: audit.DecisionAuthorized,
	})
}

// ListSilos returns the registry contents with key digests redacted.
func (s *Service) ListSilos() []Silo {
	return s.registry.List()
}

// Sessions exposes the session validator for components that share the
// gateway's authorization, such as the coordinator.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

func (s *Service) deny(ctx context.Context, siloID id.SiloID, reason domerr.Code, countFailure bool) (HandshakeResult, error) {
	if countFailure {
		if tripped := s.lockout.RecordFailure(siloID.String(), s.clock.Now()); tripped && s.logger != nil {
			s.logger.WarnContext(ctx, "silo locked out",
				"silo_id", siloID.String(),
				"log_type", "audit",
			)
		}
	}
	s.audit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Subject:  siloID.String(),
		Action:   audit.ActionHandshake,
		Decision: audit.DecisionDenied,
		Reason:   string(reason),
	})
	s.metrics.IncHandshake(string(reason))
	if s.logger != nil {
		s.logger.WarnContext(ctx, "handshake denied",
			"silo_id", siloID.String(),
			"reason", string(reason),
		)
	}
	return HandshakeResult{Reason: reason}, nil
}

func (s *Service) auditUpdate(ctx context.Context, subject string, userID id.UserID, decision string, reason domerr.Code) {
	s.audit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		UserID:   &userID,
		Subject:  subject,
		Action:   audit.ActionSecureUpdate,
		Decision: decision,
		Reason:   string(reason),
	})
}

// audit appends to the handshake log. Failures are logged, never raised: a
// broken audit sink must not block authorization decisions already made.
func (s *Service) audit(ctx context.Context, event audit.Event) {
	event.Timestamp = s.clock.Now()
	if rid := requestcontext.RequestID(ctx); rid != "" {
		event.RequestID = rid
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "handshake log append failed", "error", err)
	}
}
