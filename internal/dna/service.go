package dna

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"helix/internal/clock"
	"helix/internal/platform/metrics"
	"helix/internal/player"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

// Service recomputes the five-axis profile from recent events and streak
// state. Refresh is idempotent given identical inputs; only Refresh moves
// ComputedAt.
type Service struct {
	store   SourceStore
	players Players
	clock   clock.Clock
	cache   SnapshotCache
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

// WithCache installs a read-through snapshot cache. Refresh writes through;
// Get prefers the cache and falls back to the record.
func WithCache(cache SnapshotCache) Option {
	return func(s *Service) { s.cache = cache }
}

func New(store SourceStore, players Players, clk clock.Clock, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("source store is required")
	}
	if players == nil {
		return nil, errors.New("player store is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	svc := &Service{store: store, players: players, clock: clk}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RecordDrill appends one drill outcome to the accuracy window.
func (s *Service) RecordDrill(ctx context.Context, userID id.UserID, drillID id.DrillID, accuracy float64) error {
	if accuracy < 0 || accuracy > 1 {
		return domerr.Newf(domerr.CodeInvalidInput, "accuracy %v outside [0,1]", accuracy)
	}
	sample := DrillSample{
		ID:        uuid.New(),
		UserID:    userID,
		DrillID:   drillID,
		Accuracy:  accuracy,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.AppendDrill(ctx, sample); err != nil {
		return domerr.FromStore(err, "append drill sample")
	}
	return nil
}

// RecordAggression stores the latest arcade reading: a base aggression plus a
// speed score, both in [0,1].
func (s *Service) RecordAggression(ctx context.Context, userID id.UserID, base, speed float64) error {
	if base < 0 || base > 1 || speed < 0 || speed > 1 {
		return domerr.Newf(domerr.CodeInvalidInput, "aggression inputs (%v, %v) outside [0,1]", base, speed)
	}
	return s.setInput(ctx, AxisInput{UserID: userID, Axis: player.AxisAggression, Value: base, Secondary: &speed})
}

// RecordWealth stores the latest bankroll reading.
func (s *Service) RecordWealth(ctx context.Context, userID id.UserID, wealth float64) error {
	if wealth < 0 || wealth > 1 {
		return domerr.Newf(domerr.CodeInvalidInput, "wealth %v outside [0,1]", wealth)
	}
	return s.setInput(ctx, AxisInput{UserID: userID, Axis: player.AxisWealth, Value: wealth})
}

// RecordLuck stores the latest social/reputation reading.
func (s *Service) RecordLuck(ctx context.Context, userID id.UserID, luck float64) error {
	if luck < 0 || luck > 1 {
		return domerr.Newf(domerr.CodeInvalidInput, "luck %v outside [0,1]", luck)
	}
	return s.setInput(ctx, AxisInput{UserID: userID, Axis: player.AxisLuck, Value: luck})
}

func (s *Service) setInput(ctx context.Context, input AxisInput) error {
	input.UpdatedAt = s.clock.Now()
	if err := s.store.SetAxisInput(ctx, input); err != nil {
		return domerr.FromStore(err, "upsert axis input")
	}
	return nil
}

// Refresh recomputes the profile from the last 50 drills, the latest axis
// inputs, and the current streak state, then persists it as the new snapshot.
//
// An axis with no source data keeps its previous snapshot value; with no
// prior snapshot, accuracy, wealth, and luck default to 0.5 while aggression
// starts at 0. Grit is always derivable from streak state.
func (s *Service) Refresh(ctx context.Context, userID id.UserID) (player.Profile, error) {
	start := time.Now()
	now := s.clock.Now()

	rec, err := s.players.Ensure(ctx, userID, now)
	if err != nil {
		return player.Profile{}, domerr.FromStore(err, "ensure player record")
	}

	var (
		drills []DrillSample
		inputs map[player.Axis]AxisInput
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		drills, err = s.store.RecentDrills(gctx, userID, DrillWindow)
		return err
	})
	g.Go(func() error {
		var err error
		inputs, err = s.store.AxisInputs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return player.Profile{}, domerr.FromStore(err, "read axis sources")
	}

	prev := rec.DNA
	axes := map[player.Axis]float64{
		player.AxisAccuracy:   s.accuracyAxis(drills, prev),
		player.AxisGrit:       s.gritAxis(rec, now),
		player.AxisAggression: aggressionAxis(inputs, prev),
		player.AxisWealth:     suppliedAxis(player.AxisWealth, inputs, prev, 0.5),
		player.AxisLuck:       suppliedAxis(player.AxisLuck, inputs, prev, 0.5),
	}
	profile := player.NewProfile(axes, now)

	if err := s.players.SetSnapshot(ctx, userID, profile); err != nil {
		return player.Profile{}, domerr.FromStore(err, "persist snapshot")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, profile); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "snapshot cache write failed", "user_id", userID.String(), "error", err)
		}
	}

	s.metrics.ObserveRefresh(time.Since(start).Seconds())
	if s.logger != nil {
		s.logger.InfoContext(ctx, "dna refresh",
			"user_id", userID.String(),
			"drills", len(drills),
			"composite", profile.Composite,
		)
	}
	return profile, nil
}

// Archive marks the player record archived and drops any cached snapshot.
// Archived records keep their history; nothing is deleted.
func (s *Service) Archive(ctx context.Context, userID id.UserID) error {
	if err := s.players.Archive(ctx, userID, s.clock.Now()); err != nil {
		return domerr.FromStore(err, "archive player record")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "snapshot cache invalidate failed", "user_id", userID.String(), "error", err)
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "player archived", "user_id", userID.String())
	}
	return nil
}

// Get returns the last computed snapshot without recomputing. Users with no
// snapshot yet get the zero profile.
func (s *Service) Get(ctx context.Context, userID id.UserID) (player.Profile, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "snapshot cache read failed", "user_id", userID.String(), "error", err)
		}
		if cached != nil {
			return *cached, nil
		}
	}
	rec, err := s.players.Ensure(ctx, userID, s.clock.Now())
	if err != nil {
		return player.Profile{}, domerr.FromStore(err, "read player record")
	}
	return rec.DNA, nil
}

// accuracyAxis is the recency-weighted mean over the drill window, most
// recent drill first with weight 1.00 decaying by 0.01 per position.
func (s *Service) accuracyAxis(drills []DrillSample, prev player.Profile) float64 {
	if len(drills) == 0 {
		if prev.IsZero() {
			return 0.5
		}
		return prev.Accuracy
	}
	var weighted, weights float64
	for i, d := range drills {
		w := 1.0 - float64(i)*recencyDecay
		if w <= 0 {
			break
		}
		weighted += d.Accuracy * w
		weights += w
	}
	return player.Clamp01(weighted / weights)
}

func (s *Service) gritAxis(rec *player.Record, now time.Time) float64 {
	bonus := 0.0
	if rec.LastActiveAt != nil {
		switch delta := s.clock.DayDelta(*rec.LastActiveAt, now); {
		case delta == 0:
			bonus = 10
		case delta <= 3:
			bonus = 5
		}
	}
	raw := (float64(rec.CurrentStreak)*5 + float64(rec.LongestStreak)*2 + bonus) / 100
	return player.Clamp01(raw)
}

func aggressionAxis(inputs map[player.Axis]AxisInput, prev player.Profile) float64 {
	in, ok := inputs[player.AxisAggression]
	if !ok {
		if prev.IsZero() {
			return 0
		}
		return prev.Aggression
	}
	speed := 0.0
	if in.Secondary != nil {
		speed = *in.Secondary
	}
	return player.Clamp01(in.Value + 0.2*speed)
}

func suppliedAxis(axis player.Axis, inputs map[player.Axis]AxisInput, prev player.Profile, fallback float64) float64 {
	in, ok := inputs[axis]
	if !ok {
		if prev.IsZero() {
			return fallback
		}
		return prev.Axis(axis)
	}
	return player.Clamp01(in.Value)
}
