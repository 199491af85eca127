package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"helix/internal/clock"
	"helix/internal/coordinator"
	"helix/internal/dna"
	dnamem "helix/internal/dna/store/memory"
	playermem "helix/internal/player/store/memory"
	"helix/internal/signals"
	"helix/internal/streak"
	"helix/internal/vault"
	vaultmem "helix/internal/vault/store/memory"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/requestcontext"
)

// CoordinatorSuite runs the full pipeline over in-memory stores: vault,
// oracle, and aggregator are the real services.
type CoordinatorSuite struct {
	suite.Suite
	ctx       context.Context
	players   *playermem.Store
	vaultSt   *vaultmem.Store
	vault     *vault.Service
	oracle    *streak.Service
	dna       *dna.Service
	publisher *signals.Memory
	coord     *coordinator.Coordinator
	userID    id.UserID
	now       time.Time
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.userID = id.NewUserID()
	s.now = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

	clk, err := clock.New("UTC", clock.WithNowFunc(func() time.Time { return s.now }))
	s.Require().NoError(err)

	s.players = playermem.New()
	s.vaultSt = vaultmem.New(s.players)
	s.vault, err = vault.New(s.vaultSt, s.players, clk)
	s.Require().NoError(err)
	s.oracle, err = streak.New(s.players, clk)
	s.Require().NoError(err)
	s.dna, err = dna.New(dnamem.New(), s.players, clk)
	s.Require().NoError(err)

	s.publisher = signals.NewMemory()
	s.coord, err = coordinator.New(s.vault, s.oracle, s.dna, s.publisher)
	s.Require().NoError(err)
}

// seed puts the user at a known XP total and streak state via authorized
// paths.
func (s *CoordinatorSuite) seed(total int64, streakDays int, lastActive time.Time) {
	if total > 0 {
		res, err := s.vault.AddXP(s.ctx, vault.GrantRequest{
			UserID: s.userID, Amount: total, Source: id.SourceManual, BypassGate: true,
		})
		s.Require().NoError(err)
		s.Require().True(res.Granted)
	}
	_, err := s.players.Ensure(s.ctx, s.userID, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.players.SetStreak(s.ctx, s.userID, streakDays, streakDays, lastActive))
}

func (s *CoordinatorSuite) TestPassingGrant() {
	// xpTotal 1000, streak 6, last active yesterday at reference midnight.
	yesterdayMidnight := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	s.seed(1000, 6, yesterdayMidnight)

	outcome, err := s.coord.OnDrillCompletion(s.ctx, coordinator.DrillCompletion{
		UserID:        s.userID,
		DrillID:       id.NewDrillID(),
		Accuracy:      0.90,
		GTOCompliance: 0.80,
		XPAmount:      100,
	})
	s.Require().NoError(err)

	s.True(outcome.Granted)
	s.Equal(int64(1100), outcome.NewTotal)
	s.Require().NotNil(outcome.GateScore)
	s.InDelta(0.86, *outcome.GateScore, 1e-9)
	s.Equal("increment", outcome.StreakAction)
	s.Equal(7, outcome.CurrentStreak)
	s.Equal(2.0, outcome.Multiplier)

	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(1100), rec.XPTotal)
	s.Equal(streak.FlameOrangeRoaring, streak.FlameFor(rec.CurrentStreak))

	history, err := s.vault.History(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Len(history, 2) // seed grant + drill grant

	emitted := s.publisher.ByType(signals.TypeMultiplier)
	s.Require().Len(emitted, 1)
	sig, ok := emitted[0].Payload.(streak.MultiplierSignal)
	s.Require().True(ok)
	s.Equal(2.0, sig.Multiplier)
}

func (s *CoordinatorSuite) TestFailingGateStillRecordsActivity() {
	yesterdayMidnight := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	s.seed(1000, 6, yesterdayMidnight)

	outcome, err := s.coord.OnDrillCompletion(s.ctx, coordinator.DrillCompletion{
		UserID:        s.userID,
		DrillID:       id.NewDrillID(),
		Accuracy:      0.70,
		GTOCompliance: 0.60,
		XPAmount:      100,
	})
	s.Require().NoError(err)

	s.False(outcome.Granted)
	s.Equal(string(domerr.CodeGateFailed), outcome.Reason)

	// XP unchanged, gate-failed alert recorded.
	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(1000), rec.XPTotal)

	alerts, err := s.vault.Alerts(s.ctx, &s.userID, 10)
	s.Require().NoError(err)
	s.Require().Len(alerts, 1)
	s.Equal(vault.AlertGateFailed, alerts[0].Kind)

	// The tick still ran and the signal still went out.
	s.Equal(7, outcome.CurrentStreak)
	s.Len(s.publisher.ByType(signals.TypeMultiplier), 1)
}

func (s *CoordinatorSuite) TestDecreaseAttemptBlacklistsCaller() {
	s.seed(1000, 0, s.now)

	callerCtx := requestcontext.WithCallerSilo(s.ctx, "rogue-silo")
	res, err := s.vault.ProposeTotal(callerCtx, s.userID, 900, "rogue-silo")
	s.Require().NoError(err)
	s.False(res.Granted)
	s.Equal(domerr.CodeDecreaseAttempt, res.Reason)

	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(1000), rec.XPTotal)

	// A later valid grant from the same caller is refused outright.
	res, err = s.vault.AddXP(s.ctx, vault.GrantRequest{
		UserID: s.userID, Amount: 50, Source: id.SourceManual, BypassGate: true,
		CallerID: "rogue-silo",
	})
	s.Require().NoError(err)
	s.False(res.Granted)
	s.Equal(domerr.CodeLockedOut, res.Reason)
}

func (s *CoordinatorSuite) TestStreakResetAfterIdleDays() {
	s.seed(0, 10, s.now.AddDate(0, 0, -2))

	outcome, err := s.coord.OnDrillCompletion(s.ctx, coordinator.DrillCompletion{
		UserID:        s.userID,
		DrillID:       id.NewDrillID(),
		Accuracy:      0.90,
		GTOCompliance: 0.90,
		XPAmount:      10,
	})
	s.Require().NoError(err)

	s.Equal("reset", outcome.StreakAction)
	s.Equal(1, outcome.CurrentStreak)
	s.Equal(1.0, outcome.Multiplier)

	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.GreaterOrEqual(rec.LongestStreak, 10)
	s.Equal(streak.FlameNone, streak.FlameFor(rec.CurrentStreak))
}

func (s *CoordinatorSuite) TestLevelUpSignal() {
	s.seed(90, 0, s.now)

	outcome, err := s.coord.OnDrillCompletion(s.ctx, coordinator.DrillCompletion{
		UserID:        s.userID,
		DrillID:       id.NewDrillID(),
		Accuracy:      0.95,
		GTOCompliance: 0.95,
		XPAmount:      20,
	})
	s.Require().NoError(err)
	s.True(outcome.Granted)
	s.Equal(int64(110), outcome.NewTotal)

	ups := s.publisher.ByType(signals.TypeLevelUp)
	s.Require().Len(ups, 1)
	payload, ok := ups[0].Payload.(signals.LevelUpNotification)
	s.Require().True(ok)
	s.Equal(1, payload.OldLevel)
	s.Equal(2, payload.NewLevel)
}

func (s *CoordinatorSuite) TestBankrollAndReputationUpdates() {
	s.Require().NoError(s.coord.OnBankrollUpdate(s.ctx, coordinator.BankrollUpdate{
		UserID: s.userID, Wealth: 0.8,
	}))
	s.Require().NoError(s.coord.OnReputationUpdate(s.ctx, coordinator.ReputationUpdate{
		UserID: s.userID, Luck: 0.3,
	}))

	profile, err := s.dna.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(0.8, profile.Wealth)
	s.Equal(0.3, profile.Luck)

	// No training happened, so no tick and no multiplier signal.
	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(0, rec.CurrentStreak)
	s.Empty(s.publisher.ByType(signals.TypeMultiplier))
}

func (s *CoordinatorSuite) TestArcadeResult() {
	err := s.coord.OnArcadeResult(s.ctx, coordinator.ArcadeResult{
		UserID:         s.userID,
		BaseAggression: 0.5,
		SpeedScore:     0.5,
		XPAmount:       25,
	})
	s.Require().NoError(err)

	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(25), rec.XPTotal)
	s.Equal(1, rec.CurrentStreak)
	s.InDelta(0.6, rec.DNA.Aggression, 1e-9)
	s.Len(s.publisher.ByType(signals.TypeMultiplier), 1)
}

func (s *CoordinatorSuite) TestApplySecureUpdateFields() {
	s.Run("axis fields write through and refresh", func() {
		applied, err := s.coord.Apply(s.ctx, s.userID, map[string]any{
			"wealth": 0.9,
			"luck":   0.2,
		})
		s.Require().NoError(err)
		s.Equal([]string{"luck", "wealth"}, applied)

		profile, err := s.dna.Get(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(0.9, profile.Wealth)
		s.Equal(0.2, profile.Luck)
	})

	s.Run("unknown field rejects the whole update", func() {
		_, err := s.coord.Apply(s.ctx, s.userID, map[string]any{"level": 99})
		s.True(domerr.HasCode(err, domerr.CodeInvalidInput))
	})

	s.Run("xp_total proposal below current is refused", func() {
		s.seed(1000, 0, s.now)
		_, err := s.coord.Apply(s.ctx, s.userID, map[string]any{"xp_total": float64(900)})
		s.True(domerr.HasCode(err, domerr.CodeDecreaseAttempt))
	})
}

func (s *CoordinatorSuite) TestManualGrant() {
	res, err := s.coord.OnManualGrant(s.ctx, coordinator.ManualGrant{
		UserID: s.userID, Amount: 1200,
	})
	s.Require().NoError(err)
	s.True(res.Granted)
	s.Require().NotNil(res.LevelUp)
	s.Equal(5, res.LevelUp.NewLevel)
	s.Len(s.publisher.ByType(signals.TypeLevelUp), 1)
}

func (s *CoordinatorSuite) TestErasureRequestArchivesRecord() {
	s.seed(500, 3, s.now)

	s.Require().NoError(s.coord.OnErasureRequest(s.ctx, s.userID))

	rec, err := s.players.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.True(rec.Archived)
	// History survives archival; only the record is flagged.
	history, err := s.vault.History(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Len(history, 1)
}
