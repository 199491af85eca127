package vault_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"helix/internal/clock"
	playermem "helix/internal/player/store/memory"
	"helix/internal/vault"
	vaultmem "helix/internal/vault/store/memory"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

type VaultServiceSuite struct {
	suite.Suite
	players *playermem.Store
	store   *vaultmem.Store
	service *vault.Service
	userID  id.UserID
	now     time.Time
}

func TestVaultServiceSuite(t *testing.T) {
	suite.Run(t, new(VaultServiceSuite))
}

func (s *VaultServiceSuite) SetupTest() {
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clk, err := clock.New("UTC", clock.WithNowFunc(func() time.Time { return s.now }))
	s.Require().NoError(err)

	s.players = playermem.New()
	s.store = vaultmem.New(s.players)
	s.service, err = vault.New(s.store, s.players, clk)
	s.Require().NoError(err)
	s.userID = id.NewUserID()
}

func (s *VaultServiceSuite) grant(amount int64, opts ...func(*vault.GrantRequest)) *vault.GrantResult {
	req := vault.GrantRequest{
		UserID:   s.userID,
		Amount:   amount,
		Source:   id.SourceGreenContent,
		CallerID: "training",
	}
	for _, opt := range opts {
		opt(&req)
	}
	res, err := s.service.AddXP(context.Background(), req)
	s.Require().NoError(err)
	return res
}

func f(v float64) *float64 { return &v }

func (s *VaultServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := vault.New(nil, s.players, nil)
		s.Error(err)
	})

	s.Run("invalid laws rejected at construction", func() {
		clk, err := clock.New("UTC")
		s.Require().NoError(err)
		_, err = vault.New(s.store, s.players, clk, vault.WithLaws(vault.Laws{
			MinIncrement:       1,
			MaxSingleIncrement: 100,
			GateThreshold:      1.5,
			GateAccuracyWeight: 0.6,
			GateGTOWeight:      0.4,
		}))
		s.Error(err)
		s.True(domerr.HasCode(err, domerr.CodeConfigInvalid))
	})
}

func (s *VaultServiceSuite) TestAddXP() {
	ctx := context.Background()

	s.Run("plain grant advances totals and chains the ledger", func() {
		res := s.grant(100)
		s.True(res.Granted)
		s.Equal(int64(100), res.NewTotal)

		res = s.grant(50)
		s.True(res.Granted)
		s.Equal(int64(150), res.NewTotal)

		history, err := s.service.History(ctx, s.userID, 10)
		s.Require().NoError(err)
		s.Require().Len(history, 2)
		// Most recent first.
		s.Equal(int64(100), history[0].PriorTotal)
		s.Equal(int64(150), history[0].NewTotal)
		s.Equal(int64(0), history[1].PriorTotal)
		s.Equal(int64(100), history[1].NewTotal)
	})

	s.Run("first grant creates the record", func() {
		fresh := id.NewUserID()
		res, err := s.service.AddXP(ctx, vault.GrantRequest{
			UserID: fresh, Amount: 25, Source: id.SourceArcade,
		})
		s.Require().NoError(err)
		s.True(res.Granted)

		rec, err := s.players.Get(ctx, fresh)
		s.Require().NoError(err)
		s.Equal(int64(25), rec.XPTotal)
		s.Equal(int64(25), rec.XPLifetime)
	})
}

func (s *VaultServiceSuite) TestIncrementBounds() {
	ctx := context.Background()

	cases := []struct {
		name   string
		amount int64
	}{
		{"zero", 0},
		{"negative", -10},
		{"above max", 100_001},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			res := s.grant(tc.amount)
			s.False(res.Granted)
			s.Equal(domerr.CodeInvalidIncrement, res.Reason)
		})
	}

	s.Run("each violation leaves an alert and no state change", func() {
		alerts, err := s.service.Alerts(ctx, &s.userID, 10)
		s.Require().NoError(err)
		s.Require().Len(alerts, len(cases))
		for _, a := range alerts {
			s.Equal(vault.AlertInvalidIncrement, a.Kind)
		}

		history, err := s.service.History(ctx, s.userID, 10)
		s.Require().NoError(err)
		s.Empty(history)
	})

	s.Run("max increment itself is allowed", func() {
		res := s.grant(100_000)
		s.True(res.Granted)
	})
}

func (s *VaultServiceSuite) TestMasteryGate() {
	ctx := context.Background()

	s.Run("weighted score above threshold grants", func() {
		// 0.6*0.90 + 0.4*0.80 = 0.86
		res := s.grant(100, func(r *vault.GrantRequest) {
			r.Accuracy, r.GTOCompliance = f(0.90), f(0.80)
		})
		s.True(res.Granted)
		s.Require().NotNil(res.GateScore)
		s.InDelta(0.86, *res.GateScore, 1e-9)
	})

	s.Run("weighted score below threshold rejects without mutation", func() {
		before, err := s.players.Get(ctx, s.userID)
		s.Require().NoError(err)

		// 0.6*0.70 + 0.4*0.60 = 0.66
		res := s.grant(100, func(r *vault.GrantRequest) {
			r.Accuracy, r.GTOCompliance = f(0.70), f(0.60)
		})
		s.False(res.Granted)
		s.Equal(domerr.CodeGateFailed, res.Reason)
		s.Require().NotNil(res.GateScore)
		s.InDelta(0.66, *res.GateScore, 1e-9)

		after, err := s.players.Get(ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(before.XPTotal, after.XPTotal)

		alerts, err := s.service.Alerts(ctx, &s.userID, 1)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(vault.AlertGateFailed, alerts[0].Kind)
	})

	s.Run("exact threshold passes", func() {
		res := s.grant(10, func(r *vault.GrantRequest) {
			r.Accuracy, r.GTOCompliance = f(0.85), f(0.85)
		})
		s.True(res.Granted)
	})

	s.Run("single input stands alone", func() {
		res := s.grant(10, func(r *vault.GrantRequest) { r.Accuracy = f(0.84) })
		s.False(res.Granted)
		s.Equal(domerr.CodeGateFailed, res.Reason)

		res = s.grant(10, func(r *vault.GrantRequest) { r.GTOCompliance = f(0.86) })
		s.True(res.Granted)
	})

	s.Run("no inputs is deemed passed", func() {
		res := s.grant(10)
		s.True(res.Granted)
		s.Nil(res.GateScore)
	})

	s.Run("bypass skips evaluation entirely", func() {
		res := s.grant(10, func(r *vault.GrantRequest) {
			r.Accuracy = f(0.10)
			r.BypassGate = true
		})
		s.True(res.Granted)
		s.Nil(res.GateScore)
	})
}

func (s *VaultServiceSuite) TestMonotonicityLaw() {
	ctx := context.Background()
	s.grant(1000)

	s.Run("lower proposal is rejected and the caller blocklisted", func() {
		res, err := s.service.ProposeTotal(ctx, s.userID, 900, "rogue-silo")
		s.Require().NoError(err)
		s.False(res.Granted)
		s.Equal(domerr.CodeDecreaseAttempt, res.Reason)
		s.Equal(int64(1000), res.NewTotal)

		alerts, err := s.service.Alerts(ctx, &s.userID, 1)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(vault.AlertDecreaseAttempt, alerts[0].Kind)
		s.Equal(int64(1000), alerts[0].PriorTotal)
		s.Equal(int64(900), alerts[0].AttemptedTotal)
		s.Equal("rogue-silo", alerts[0].SourceIdentifier)
	})

	s.Run("a blocked caller is rejected before any other check", func() {
		res, err := s.service.AddXP(ctx, vault.GrantRequest{
			UserID: s.userID, Amount: 50, Source: id.SourceGreenContent, CallerID: "rogue-silo",
		})
		s.Require().NoError(err)
		s.False(res.Granted)
		s.Equal(domerr.CodeLockedOut, res.Reason)

		alerts, err := s.service.Alerts(ctx, &s.userID, 1)
		s.Require().NoError(err)
		s.Equal(vault.AlertUnauthorizedCaller, alerts[0].Kind)
	})

	s.Run("other callers are unaffected", func() {
		res, err := s.service.AddXP(ctx, vault.GrantRequest{
			UserID: s.userID, Amount: 50, Source: id.SourceGreenContent, CallerID: "training",
		})
		s.Require().NoError(err)
		s.True(res.Granted)
		s.Equal(int64(1050), res.NewTotal)
	})
}

func (s *VaultServiceSuite) TestProposeTotal() {
	ctx := context.Background()
	s.grant(500)

	s.Run("equal proposal is an invalid increment", func() {
		res, err := s.service.ProposeTotal(ctx, s.userID, 500, "bankroll")
		s.Require().NoError(err)
		s.False(res.Granted)
		s.Equal(domerr.CodeInvalidIncrement, res.Reason)
	})

	s.Run("higher proposal grants the difference", func() {
		res, err := s.service.ProposeTotal(ctx, s.userID, 650, "bankroll")
		s.Require().NoError(err)
		s.True(res.Granted)
		s.Equal(int64(650), res.NewTotal)

		history, err := s.service.History(ctx, s.userID, 1)
		s.Require().NoError(err)
		s.Require().Len(history, 1)
		s.Equal(int64(150), history[0].Delta)
		s.Equal(id.SourceManual, history[0].Source)
	})
}

func (s *VaultServiceSuite) TestLevels() {
	s.Run("crossing a threshold reports the level up", func() {
		res := s.grant(90)
		s.True(res.Granted)
		s.Nil(res.LevelUp)

		res = s.grant(20) // total 110, crosses 100
		s.Require().NotNil(res.LevelUp)
		s.Equal(1, res.LevelUp.OldLevel)
		s.Equal(2, res.LevelUp.NewLevel)
		s.Equal([]string{"badge.first_steps"}, res.LevelUp.Rewards)
	})

	s.Run("a single grant can cross several thresholds", func() {
		fresh := id.NewUserID()
		res, err := s.service.AddXP(context.Background(), vault.GrantRequest{
			UserID: fresh, Amount: 1200, Source: id.SourceManual, BypassGate: true,
		})
		s.Require().NoError(err)
		s.Require().NotNil(res.LevelUp)
		s.Equal(1, res.LevelUp.OldLevel)
		s.Equal(5, res.LevelUp.NewLevel)
	})

	s.Run("a grant advances the stored skill tier with the level", func() {
		fresh := id.NewUserID()
		res, err := s.service.AddXP(context.Background(), vault.GrantRequest{
			UserID: fresh, Amount: 1200, Source: id.SourceManual, BypassGate: true,
		})
		s.Require().NoError(err)
		s.Require().NotNil(res.LevelUp)

		rec, err := s.players.Get(context.Background(), fresh)
		s.Require().NoError(err)
		s.Equal(5, rec.Level)
		s.Equal(vault.SkillTierForLevel(5), rec.SkillTier)
	})
}

// TestLedgerCompleteness exercises the property that the record total always
// equals the sum of ledger deltas and never decreases, across a randomized
// mix of grants, rejections, and proposals.
func (s *VaultServiceSuite) TestLedgerCompleteness() {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var prevTotal int64
	for i := 0; i < 200; i++ {
		switch rng.Intn(4) {
		case 0:
			s.grant(int64(rng.Intn(500) + 1))
		case 1:
			s.grant(int64(rng.Intn(500)+1), func(r *vault.GrantRequest) {
				r.Accuracy = f(rng.Float64())
			})
		case 2:
			s.grant(0) // invalid increment
		case 3:
			rec, err := s.players.Get(ctx, s.userID)
			if err == nil {
				_, err = s.service.ProposeTotal(ctx, s.userID, rec.XPTotal+int64(rng.Intn(100)), "training")
				s.Require().NoError(err)
			}
		}

		rec, err := s.players.Get(ctx, s.userID)
		if err != nil {
			continue
		}
		s.GreaterOrEqual(rec.XPTotal, prevTotal, "xp total must never decrease")
		prevTotal = rec.XPTotal
	}

	rec, err := s.players.Get(ctx, s.userID)
	s.Require().NoError(err)

	history, err := s.service.History(ctx, s.userID, 500)
	s.Require().NoError(err)

	var sum int64
	for _, e := range history {
		s.Equal(e.PriorTotal+e.Delta, e.NewTotal, "every entry must chain prior to new")
		s.GreaterOrEqual(e.Delta, int64(1))
		sum += e.Delta
	}
	s.Equal(rec.XPTotal, sum, "total must equal the sum of ledger deltas")
}

func (s *VaultServiceSuite) TestLevelForXP() {
	s.Equal(1, vault.LevelForXP(0))
	s.Equal(1, vault.LevelForXP(99))
	s.Equal(2, vault.LevelForXP(100))
	s.Equal(5, vault.LevelForXP(1000))
	s.Equal(20, vault.LevelForXP(10_000_000))

	// Monotone in xp.
	prev := 0
	for xp := int64(0); xp <= 130_000; xp += 500 {
		level := vault.LevelForXP(xp)
		s.GreaterOrEqual(level, prev)
		prev = level
	}
}

func (s *VaultServiceSuite) TestSkillTier() {
	s.Equal(1, vault.SkillTierForLevel(1))
	s.Equal(5, vault.SkillTierForLevel(10))
	s.Equal(10, vault.SkillTierForLevel(20))
	s.Equal(10, vault.SkillTierForLevel(99))
}
