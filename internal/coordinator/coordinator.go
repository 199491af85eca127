package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"helix/internal/platform/metrics"
	"helix/internal/signals"
	"helix/internal/streak"
	"helix/internal/vault"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/requestcontext"
)

const defaultSyncSLA = 5 * time.Second

// Coordinator drives the drill-completion sequence. A failed grant never
// suppresses the later steps: activity is recorded whether or not XP landed.
type Coordinator struct {
	vault     XPVault
	oracle    StreakOracle
	dna       DNAAggregator
	publisher signals.Publisher
	syncSLA   time.Duration
	tracer    trace.Tracer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithSyncSLA bounds how long one event sequence may spend on retries.
func WithSyncSLA(sla time.Duration) Option {
	return func(c *Coordinator) {
		if sla > 0 {
			c.syncSLA = sla
		}
	}
}

func New(xpVault XPVault, oracle StreakOracle, aggregator DNAAggregator, publisher signals.Publisher, opts ...Option) (*Coordinator, error) {
	if xpVault == nil || oracle == nil || aggregator == nil {
		return nil, errors.New("vault, oracle, and aggregator are required")
	}
	if publisher == nil {
		return nil, errors.New("signal publisher is required")
	}
	c := &Coordinator{
		vault:     xpVault,
		oracle:    oracle,
		dna:       aggregator,
		publisher: publisher,
		syncSLA:   defaultSyncSLA,
		tracer:    otel.Tracer("helix/coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnDrillCompletion runs the full sequence: grant (gate enforced), drill
// record, streak tick, DNA refresh, multiplier signal. Steps after the grant
// run even when the grant is rejected.
func (c *Coordinator) OnDrillCompletion(ctx context.Context, event DrillCompletion) (*DrillOutcome, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.drill_completion",
		trace.WithAttributes(attribute.String("user_id", event.UserID.String())))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.syncSLA)
	defer cancel()

	outcome := &DrillOutcome{}

	grant, err := c.grantWithRetry(ctx, vault.GrantRequest{
		UserID:        event.UserID,
		Amount:        event.XPAmount,
		Source:        id.SourceGreenContent,
		Accuracy:      &event.Accuracy,
		GTOCompliance: &event.GTOCompliance,
		CallerID:      requestcontext.CallerSilo(ctx),
	})
	if err != nil {
		c.metrics.IncSequence("drill_completion", "error")
		return nil, err
	}
	outcome.Granted = grant.Granted
	outcome.NewTotal = grant.NewTotal
	outcome.GateScore = grant.GateScore
	outcome.Reason = string(grant.Reason)

	if err := c.dna.RecordDrill(ctx, event.UserID, event.DrillID, event.Accuracy); err != nil {
		return nil, c.fail(ctx, "drill_completion", "record drill", err)
	}

	tick, err := c.oracle.Tick(ctx, event.UserID)
	if err != nil {
		return nil, c.fail(ctx, "drill_completion", "streak tick", err)
	}
	outcome.StreakAction = string(tick.Action)
	outcome.CurrentStreak = tick.CurrentStreak
	outcome.Multiplier = tick.Multiplier

	profile, err := c.dna.Refresh(ctx, event.UserID)
	if err != nil {
		return nil, c.fail(ctx, "drill_completion", "dna refresh", err)
	}
	outcome.Composite = profile.Composite

	if err := c.emitSignals(ctx, event.UserID, grant); err != nil {
		return nil, c.fail(ctx, "drill_completion", "emit signals", err)
	}

	result := "granted"
	if !grant.Granted {
		result = outcome.Reason
	}
	c.metrics.IncSequence("drill_completion", result)
	if c.logger != nil {
		c.logger.InfoContext(ctx, "drill completion processed",
			"user_id", event.UserID.String(),
			"granted", grant.Granted,
			"new_total", grant.NewTotal,
			"streak_action", outcome.StreakAction,
			"multiplier", outcome.Multiplier,
		)
	}
	return outcome, nil
}

// OnArcadeResult records aggression inputs, grants arcade XP (no mastery
// gate: arcade grants carry no accuracy), and runs the tail of the sequence.
func (c *Coordinator) OnArcadeResult(ctx context.Context, event ArcadeResult) error {
	ctx, cancel := context.WithTimeout(ctx, c.syncSLA)
	defer cancel()

	if err := c.dna.RecordAggression(ctx, event.UserID, event.BaseAggression, event.SpeedScore); err != nil {
		return c.fail(ctx, "arcade_result", "record aggression", err)
	}
	if event.XPAmount > 0 {
		if _, err := c.grantWithRetry(ctx, vault.GrantRequest{
			UserID:   event.UserID,
			Amount:   event.XPAmount,
			Source:   id.SourceArcade,
			CallerID: requestcontext.CallerSilo(ctx),
		}); err != nil {
			return c.fail(ctx, "arcade_result", "grant", err)
		}
	}
	return c.tickRefreshSignal(ctx, "arcade_result", event.UserID)
}

// OnBankrollUpdate stores the wealth reading and refreshes the profile. No
// streak tick: bankroll movement is not training activity.
func (c *Coordinator) OnBankrollUpdate(ctx context.Context, event BankrollUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, c.syncSLA)
	defer cancel()

	if err := c.dna.RecordWealth(ctx, event.UserID, event.Wealth); err != nil {
		return c.fail(ctx, "bankroll_update", "record wealth", err)
	}
	if _, err := c.dna.Refresh(ctx, event.UserID); err != nil {
		return c.fail(ctx, "bankroll_update", "dna refresh", err)
	}
	c.metrics.IncSequence("bankroll_update", "ok")
	return nil
}

// OnReputationUpdate stores the luck reading and refreshes the profile.
func (c *Coordinator) OnReputationUpdate(ctx context.Context, event ReputationUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, c.syncSLA)
	defer cancel()

	if err := c.dna.RecordLuck(ctx, event.UserID, event.Luck); err != nil {
		return c.fail(ctx, "reputation_update", "record luck", err)
	}
	if _, err := c.dna.Refresh(ctx, event.UserID); err != nil {
		return c.fail(ctx, "reputation_update", "dna refresh", err)
	}
	c.metrics.IncSequence("reputation_update", "ok")
	return nil
}

// OnManualGrant applies an admin-reviewed grant. The mastery gate is
// bypassed; monotonicity and bounds still hold.
func (c *Coordinator) OnManualGrant(ctx context.Context, event ManualGrant) (*vault.GrantResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.syncSLA)
	defer cancel()

	source := event.Source
	if source == "" {
		source = id.SourceManual
	}
	grant, err := c.grantWithRetry(ctx, vault.GrantRequest{
		UserID:     event.UserID,
		Amount:     event.Amount,
		Source:     source,
		BypassGate: true,
		CallerID:   requestcontext.CallerSilo(ctx),
	})
	if err != nil {
		c.metrics.IncSequence("manual_grant", "error")
		return nil, err
	}
	if grant.Granted && grant.LevelUp != nil {
		if err := c.publish(ctx, signals.LevelUp(event.UserID, *grant.LevelUp, time.Now())); err != nil {
			return nil, c.fail(ctx, "manual_grant", "emit level up", err)
		}
	}
	c.metrics.IncSequence("manual_grant", "ok")
	return grant, nil
}

// OnErasureRequest archives the player record. History stays in place;
// archived users stop appearing in read surfaces that filter on it.
func (c *Coordinator) OnErasureRequest(ctx context.Context, userID id.UserID) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.erasure_request",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.syncSLA)
	defer cancel()

	if err := c.dna.Archive(ctx, userID); err != nil {
		return c.fail(ctx, "erasure_request", "archive", err)
	}
	c.metrics.IncSequence("erasure_request", "ok")
	if c.logger != nil {
		c.logger.InfoContext(ctx, "player archived", "user_id", userID.String())
	}
	return nil
}

// tickRefreshSignal is the shared tail: tick, refresh with the post-tick
// streak, then emit the multiplier signal.
func (c *Coordinator) tickRefreshSignal(ctx context.Context, event string, userID id.UserID) error {
	if _, err := c.oracle.Tick(ctx, userID); err != nil {
		return c.fail(ctx, event, "streak tick", err)
	}
	if _, err := c.dna.Refresh(ctx, userID); err != nil {
		return c.fail(ctx, event, "dna refresh", err)
	}
	sig, err := c.oracle.Signal(ctx, userID)
	if err != nil {
		return c.fail(ctx, event, "build signal", err)
	}
	if err := c.publish(ctx, signals.Multiplier(*sig, time.Now())); err != nil {
		return c.fail(ctx, event, "emit signal", err)
	}
	c.metrics.IncSequence(event, "ok")
	return nil
}

func (c *Coordinator) emitSignals(ctx context.Context, userID id.UserID, grant *vault.GrantResult) error {
	sig, err := c.oracle.Signal(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.publish(ctx, signals.Multiplier(*sig, time.Now())); err != nil {
		return err
	}
	if grant.Granted && grant.LevelUp != nil {
		return c.publish(ctx, signals.LevelUp(userID, *grant.LevelUp, time.Now()))
	}
	return nil
}

// grantWithRetry retries transient store failures inside the sync SLA. Gate
// failures and monotonicity rejections come back as results, not errors, and
// are never retried.
func (c *Coordinator) grantWithRetry(ctx context.Context, req vault.GrantRequest) (*vault.GrantResult, error) {
	var grant *vault.GrantResult
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		grant, err = c.vault.AddXP(ctx, req)
		return err
	})
	return grant, err
}

func (c *Coordinator) publish(ctx context.Context, msg signals.Message) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.publisher.Publish(ctx, msg)
	})
}

func (c *Coordinator) fail(ctx context.Context, event, step string, err error) error {
	c.metrics.IncSequence(event, "error")
	if c.logger != nil {
		c.logger.ErrorContext(ctx, "sequence step failed",
			"event", event,
			"step", step,
			"error", err,
		)
	}
	return domerr.Wrap(err, domerr.CodeOf(err), step)
}

// Signal exposes the current multiplier payload for transports that surface
// it synchronously.
func (c *Coordinator) Signal(ctx context.Context, userID id.UserID) (*streak.MultiplierSignal, error) {
	return c.oracle.Signal(ctx, userID)
}
