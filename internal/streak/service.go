package streak

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"helix/internal/clock"
	"helix/internal/platform/metrics"
	"helix/internal/player"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/platform/sentinel"
)

// Store is the slice of the player store the oracle needs. The oracle is the
// only writer of the streak fields.
type Store interface {
	Get(ctx context.Context, userID id.UserID) (*player.Record, error)
	Ensure(ctx context.Context, userID id.UserID, now time.Time) (*player.Record, error)
	SetStreak(ctx context.Context, userID id.UserID, current, longest int, lastActiveAt time.Time) error
}

// Service applies the day-window rule and derives tier, flame, and
// multiplier.
type Service struct {
	store   Store
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, clk clock.Clock, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("streak store is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	svc := &Service{store: store, clock: clk}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Tick applies the day-window rule once.
//
//	delta 0        -> maintain, counter unchanged
//	delta 1        -> increment, counter+1
//	delta >= 2     -> reset, counter = 1
//	no last active -> reset, counter = 1
//
// After mutation longest = max(longest, current) and lastActiveAt = now.
// CurrentStreak only decreases via the reset transition, and only to 1; zero
// is reserved for users who have never been active.
func (s *Service) Tick(ctx context.Context, userID id.UserID) (*TickResult, error) {
	now := s.clock.Now()

	rec, err := s.store.Ensure(ctx, userID, now)
	if err != nil {
		return nil, domerr.FromStore(err, "ensure player record")
	}

	action, current := s.apply(rec, now)
	longest := rec.LongestStreak
	if current > longest {
		longest = current
	}

	if err := s.store.SetStreak(ctx, userID, current, longest, now); err != nil {
		return nil, domerr.FromStore(err, "persist streak")
	}

	s.metrics.IncTick(string(action))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "streak tick",
			"user_id", userID.String(),
			"action", string(action),
			"current", current,
			"longest", longest,
		)
	}

	return &TickResult{
		Action: action,
		State:  s.derive(userID, current, longest, &now, now),
	}, nil
}

// Peek returns the derived state without mutating anything. Unknown users
// peek as the never-active zero state.
func (s *Service) Peek(ctx context.Context, userID id.UserID) (*State, error) {
	now := s.clock.Now()
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			state := s.derive(userID, 0, 0, nil, now)
			return &state, nil
		}
		return nil, domerr.FromStore(err, "read player record")
	}
	state := s.derive(userID, rec.CurrentStreak, rec.LongestStreak, rec.LastActiveAt, now)
	return &state, nil
}

// Signal builds the multiplier payload for the reward subsystem from the
// current state.
func (s *Service) Signal(ctx context.Context, userID id.UserID) (*MultiplierSignal, error) {
	state, err := s.Peek(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MultiplierSignal{
		Source:         SignalSource,
		Target:         SignalTarget,
		UserID:         userID,
		Multiplier:     state.Multiplier,
		Tier:           state.Tier,
		CurrentStreak:  state.CurrentStreak,
		HoursRemaining: state.HoursRemaining,
		ValidUntil:     s.validUntil(state.LastActiveAt),
	}, nil
}

func (s *Service) apply(rec *player.Record, now time.Time) (Action, int) {
	if rec.LastActiveAt == nil {
		return ActionReset, 1
	}
	switch delta := s.clock.DayDelta(*rec.LastActiveAt, now); {
	case delta == 0:
		return ActionMaintain, rec.CurrentStreak
	case delta == 1:
		return ActionIncrement, rec.CurrentStreak + 1
	default:
		return ActionReset, 1
	}
}

func (s *Service) derive(userID id.UserID, current, longest int, lastActiveAt *time.Time, now time.Time) State {
	return State{
		UserID:         userID,
		CurrentStreak:  current,
		LongestStreak:  longest,
		LastActiveAt:   lastActiveAt,
		Tier:           TierFor(current),
		Flame:          FlameFor(current),
		Multiplier:     MultiplierFor(current),
		HoursRemaining: s.hoursRemaining(lastActiveAt, now),
	}
}

// hoursRemaining is the time left before the streak would lapse: the window
// closes two reference midnights after the last activity.
func (s *Service) hoursRemaining(lastActiveAt *time.Time, now time.Time) float64 {
	if lastActiveAt == nil {
		return 0
	}
	lapse := s.clock.Midnight(*lastActiveAt).AddDate(0, 0, 2)
	remaining := s.clock.HoursBetween(now, lapse)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Service) validUntil(lastActiveAt *time.Time) time.Time {
	if lastActiveAt == nil {
		return s.clock.Midnight(s.clock.Now()).AddDate(0, 0, 2)
	}
	return s.clock.Midnight(*lastActiveAt).AddDate(0, 0, 2)
}
