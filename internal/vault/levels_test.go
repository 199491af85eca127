package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"helix/internal/vault"
	"helix/pkg/testutil"
)

func TestLevelForXP(t *testing.T) {
	testutil.Given(t, "the fixed level threshold table", func(t *testing.T) {
		testutil.Then(t, "totals map onto the right step", func(t *testing.T) {
			cases := []struct {
				total int64
				level int
			}{
				{0, 1},
				{99, 1},
				{100, 2},
				{249, 2},
				{250, 3},
				{1_000, 5},
				{119_999, 19},
				{120_000, 20},
				{5_000_000, 20},
			}
			for _, tc := range cases {
				assert.Equal(t, tc.level, vault.LevelForXP(tc.total), "total %d", tc.total)
			}
		})

		testutil.Then(t, "level never decreases as total grows", func(t *testing.T) {
			prev := 0
			for total := int64(0); total <= 130_000; total += 500 {
				level := vault.LevelForXP(total)
				assert.GreaterOrEqual(t, level, prev)
				prev = level
			}
		})
	})
}

func TestSkillTierForLevel(t *testing.T) {
	assert.Equal(t, 1, vault.SkillTierForLevel(1))
	assert.Equal(t, 1, vault.SkillTierForLevel(2))
	assert.Equal(t, 2, vault.SkillTierForLevel(3))
	assert.Equal(t, 5, vault.SkillTierForLevel(10))
	assert.Equal(t, 10, vault.SkillTierForLevel(20))
	assert.Equal(t, 10, vault.SkillTierForLevel(99))
}

func TestRewardsForLevelReturnsACopy(t *testing.T) {
	first := vault.RewardsForLevel(5)
	assert.NotEmpty(t, first)
	first[0] = "tampered"
	assert.NotEqual(t, first[0], vault.RewardsForLevel(5)[0])

	assert.Nil(t, vault.RewardsForLevel(3))
}
