package vault

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"helix/internal/clock"
	"helix/internal/platform/metrics"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/platform/sentinel"
)

// applyAttempts bounds the compare-on-prior-total retry loop. Per-user writes
// are serialized upstream, so more than one retry means something is wrong.
const applyAttempts = 3

// AlertNotifier receives every alert the vault records, synchronously, so the
// coordinator can fan it out as an outbound security signal.
type AlertNotifier interface {
	AlertRaised(ctx context.Context, alert SecurityAlert)
}

// Service enforces the vault laws. All business rejections come back as
// GrantResult values; errors are reserved for storage failures.
type Service struct {
	store    Store
	players  Players
	laws     Laws
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notifier AlertNotifier
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAlertNotifier(n AlertNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLaws(laws Laws) Option {
	return func(s *Service) { s.laws = laws }
}

// New builds the vault service. The store, player store, and clock are
// required; laws default to DefaultLaws.
func New(store Store, players Players, clk clock.Clock, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("vault store is required")
	}
	if players == nil {
		return nil, errors.New("player store is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	svc := &Service{
		store:   store,
		players: players,
		laws:    DefaultLaws(),
		clock:   clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if err := svc.laws.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

// AddXP applies one proposed grant. Check order: blocklist, increment bounds,
// mastery gate, monotonicity, then the atomic append. Every rejection records
// a SecurityAlert and mutates nothing.
func (s *Service) AddXP(ctx context.Context, req GrantRequest) (*GrantResult, error) {
	now := s.clock.Now()

	if rejected, result, err := s.checkBlocklist(ctx, req.UserID, req.CallerID, now); err != nil {
		return nil, err
	} else if rejected {
		return result, nil
	}

	if req.Amount < s.laws.MinIncrement || req.Amount > s.laws.MaxSingleIncrement {
		prior := s.currentTotal(ctx, req.UserID)
		s.recordAlert(ctx, SecurityAlert{
			UserID:           req.UserID,
			Kind:             AlertInvalidIncrement,
			PriorTotal:       prior,
			AttemptedTotal:   prior + req.Amount,
			SourceIdentifier: req.CallerID,
			Timestamp:        now,
		})
		return &GrantResult{NewTotal: prior, Reason: domerr.CodeInvalidIncrement}, nil
	}

	gateScore, gatePassed := s.evaluateGate(req)
	if !gatePassed {
		prior := s.currentTotal(ctx, req.UserID)
		s.recordAlert(ctx, SecurityAlert{
			UserID:           req.UserID,
			Kind:             AlertGateFailed,
			PriorTotal:       prior,
			AttemptedTotal:   prior + req.Amount,
			SourceIdentifier: req.CallerID,
			Timestamp:        now,
		})
		return &GrantResult{NewTotal: prior, GateScore: gateScore, Reason: domerr.CodeGateFailed}, nil
	}

	rec, err := s.players.Ensure(ctx, req.UserID, now)
	if err != nil {
		return nil, domerr.FromStore(err, "ensure player record")
	}

	for attempt := 0; attempt < applyAttempts; attempt++ {
		prior := rec.XPTotal
		newTotal := prior + req.Amount
		if newTotal < prior {
			// Overflow is the only way an addition proposes a lower total.
			return s.rejectDecrease(ctx, req.UserID, prior, newTotal, req.CallerID, now)
		}

		oldLevel := rec.Level
		newLevel := LevelForXP(newTotal)
		if newLevel < oldLevel {
			newLevel = oldLevel
		}

		entry := LedgerEntry{
			ID:              uuid.New(),
			UserID:          req.UserID,
			Delta:           req.Amount,
			Source:          req.Source,
			AccuracyAtGrant: req.Accuracy,
			GTOAtGrant:      req.GTOCompliance,
			GatePassed:      !req.BypassGate,
			PriorTotal:      prior,
			NewTotal:        newTotal,
			CallerSiloID:    id.SiloID(req.CallerID),
			Timestamp:       now,
		}

		err := s.store.ApplyGrant(ctx, entry, newLevel, SkillTierForLevel(newLevel))
		if errors.Is(err, sentinel.ErrConflict) {
			// A concurrent writer advanced the total. Re-read and re-derive.
			if rec, err = s.players.Get(ctx, req.UserID); err != nil {
				return nil, domerr.FromStore(err, "reload player record")
			}
			continue
		}
		if err != nil {
			return nil, domerr.FromStore(err, "apply xp grant")
		}

		s.metrics.IncGrant(req.Source.String())
		if s.logger != nil {
			s.logger.InfoContext(ctx, "xp granted",
				"user_id", req.UserID.String(),
				"delta", req.Amount,
				"new_total", newTotal,
				"source", req.Source.String(),
			)
		}

		result := &GrantResult{Granted: true, NewTotal: newTotal, GateScore: gateScore}
		if newLevel > oldLevel {
			result.LevelUp = &LevelUp{
				OldLevel: oldLevel,
				NewLevel: newLevel,
				Rewards:  RewardsForLevel(newLevel),
			}
		}
		return result, nil
	}

	return nil, domerr.New(domerr.CodeStoreUnavailable, "xp grant kept conflicting with concurrent writes")
}

// ProposeTotal handles an external caller proposing an absolute new total.
// A total strictly below the current one violates the monotonicity law: the
// proposal is rejected, alerted, and the caller is auto-blocklisted. There is
// no bypass for this rule.
func (s *Service) ProposeTotal(ctx context.Context, userID id.UserID, newTotal int64, callerID string) (*GrantResult, error) {
	now := s.clock.Now()

	if rejected, result, err := s.checkBlocklist(ctx, userID, callerID, now); err != nil {
		return nil, err
	} else if rejected {
		return result, nil
	}

	prior := s.currentTotal(ctx, userID)
	if newTotal < prior {
		return s.rejectDecrease(ctx, userID, prior, newTotal, callerID, now)
	}

	delta := newTotal - prior
	if delta == 0 {
		s.recordAlert(ctx, SecurityAlert{
			UserID:           userID,
			Kind:             AlertInvalidIncrement,
			PriorTotal:       prior,
			AttemptedTotal:   newTotal,
			SourceIdentifier: callerID,
			Timestamp:        now,
		})
		return &GrantResult{NewTotal: prior, Reason: domerr.CodeInvalidIncrement}, nil
	}

	// A strictly-higher proposal is an ordinary grant of the difference and
	// goes through every remaining law, including the increment bounds.
	return s.AddXP(ctx, GrantRequest{
		UserID:     userID,
		Amount:     delta,
		Source:     id.SourceManual,
		BypassGate: true,
		CallerID:   callerID,
	})
}

// History returns the user's ledger, most recent first.
func (s *Service) History(ctx context.Context, userID id.UserID, limit int) ([]LedgerEntry, error) {
	entries, err := s.store.History(ctx, userID, normalizeLimit(limit))
	if err != nil {
		return nil, domerr.FromStore(err, "read xp history")
	}
	return entries, nil
}

// Alerts returns security alerts, most recent first. A nil userID lists
// alerts across all users.
func (s *Service) Alerts(ctx context.Context, userID *id.UserID, limit int) ([]SecurityAlert, error) {
	alerts, err := s.store.Alerts(ctx, userID, normalizeLimit(limit))
	if err != nil {
		return nil, domerr.FromStore(err, "read security alerts")
	}
	return alerts, nil
}

// Laws exposes the active rule set for read-only consumers.
func (s *Service) Laws() Laws {
	return s.laws
}

// evaluateGate scores the mastery gate. Score = 0.6*accuracy + 0.4*gto when
// both inputs are present; a single input stands alone; no inputs or an
// explicit bypass means the gate is deemed passed with no score.
func (s *Service) evaluateGate(req GrantRequest) (*float64, bool) {
	if req.BypassGate {
		return nil, true
	}
	acc, gto := req.Accuracy, req.GTOCompliance
	var score float64
	switch {
	case acc != nil && gto != nil:
		score = s.laws.GateAccuracyWeight**acc + s.laws.GateGTOWeight**gto
	case acc != nil:
		score = *acc
	case gto != nil:
		score = *gto
	default:
		return nil, true
	}
	return &score, score >= s.laws.GateThreshold
}

func (s *Service) rejectDecrease(ctx context.Context, userID id.UserID, prior, attempted int64, callerID string, now time.Time) (*GrantResult, error) {
	s.recordAlert(ctx, SecurityAlert{
		UserID:           userID,
		Kind:             AlertDecreaseAttempt,
		PriorTotal:       prior,
		AttemptedTotal:   attempted,
		SourceIdentifier: callerID,
		Timestamp:        now,
	})
	if callerID != "" {
		if err := s.store.Block(ctx, callerID, now); err != nil {
			return nil, domerr.FromStore(err, "blocklist caller")
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "caller auto-blocklisted after decrease attempt",
				"source_id", callerID,
				"user_id", userID.String(),
				"log_type", "audit",
			)
		}
	}
	return &GrantResult{NewTotal: prior, Reason: domerr.CodeDecreaseAttempt}, nil
}

// checkBlocklist rejects calls from blocked sources before any other check.
func (s *Service) checkBlocklist(ctx context.Context, userID id.UserID, callerID string, now time.Time) (bool, *GrantResult, error) {
	if callerID == "" {
		return false, nil, nil
	}
	blocked, err := s.store.IsBlocked(ctx, callerID)
	if err != nil {
		return false, nil, domerr.FromStore(err, "check blocklist")
	}
	if !blocked {
		return false, nil, nil
	}
	prior := s.currentTotal(ctx, userID)
	s.recordAlert(ctx, SecurityAlert{
		UserID:           userID,
		Kind:             AlertUnauthorizedCaller,
		PriorTotal:       prior,
		AttemptedTotal:   prior,
		SourceIdentifier: callerID,
		Timestamp:        now,
	})
	return true, &GrantResult{NewTotal: prior, Reason: domerr.CodeLockedOut}, nil
}

// currentTotal reads the user's total for alert bookkeeping. A missing record
// reads as zero; rejection paths must not create records.
func (s *Service) currentTotal(ctx context.Context, userID id.UserID) int64 {
	rec, err := s.players.Get(ctx, userID)
	if err != nil {
		return 0
	}
	return rec.XPTotal
}

// recordAlert appends to the alert log and notifies subscribers. Alert
// persistence is fail-open: a failed append is logged, and the rejection that
// produced the alert still stands.
func (s *Service) recordAlert(ctx context.Context, alert SecurityAlert) {
	alert.ID = uuid.New()
	s.metrics.IncRejection(string(alert.Kind))
	if err := s.store.AppendAlert(ctx, alert); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to append security alert",
			"kind", string(alert.Kind),
			"user_id", alert.UserID.String(),
			"error", err,
		)
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "xp mutation blocked",
			"kind", string(alert.Kind),
			"user_id", alert.UserID.String(),
			"prior_total", alert.PriorTotal,
			"attempted_total", alert.AttemptedTotal,
			"source_id", alert.SourceIdentifier,
			"log_type", "audit",
		)
	}
	if s.notifier != nil {
		s.notifier.AlertRaised(ctx, alert)
	}
}

func normalizeLimit(limit int) int {
	const (
		defaultLimit = 50
		maxLimit     = 500
	)
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
