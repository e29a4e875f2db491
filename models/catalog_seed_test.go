package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementSeedsAreWellFormed(t *testing.T) {
	seen := make(map[string]string, len(AchievementSeeds))
	for _, seed := range AchievementSeeds {
		id := seed.SeedID()
		require.NotEmpty(t, id, "seed %q produced an empty ID", seed.Name)
		if prev, dup := seen[id]; dup {
			t.Fatalf("seed ID %q collides: %q and %q", id, prev, seed.Name)
		}
		seen[id] = seed.Name

		assert.NotEmpty(t, seed.Description, "seed %q", seed.Name)
		assert.NotEmpty(t, seed.Category, "seed %q", seed.Name)
		assert.NotEmpty(t, seed.Tier, "seed %q", seed.Name)
		assert.Positive(t, seed.XPReward, "seed %q", seed.Name)
		assert.NotEmpty(t, seed.Requirements, "seed %q has no unlock condition", seed.Name)
	}
}

// Seed IDs are catalog primary keys; the slug derivation must stay stable for
// names already shipped.
func TestSeedIDDerivation(t *testing.T) {
	assert.Equal(t, "first-step", AchievementSeed{Name: "First Step"}.SeedID())
	assert.Equal(t, "comeback-kid", AchievementSeed{Name: "Comeback Kid"}.SeedID())
	assert.Equal(t, "century-club", AchievementSeed{Name: "Century Club"}.SeedID())
}

func TestSeedRequirementsSurvivePersistenceFormat(t *testing.T) {
	for _, seed := range AchievementSeeds {
		raw, err := MarshalRequirements(seed.Requirements)
		require.NoError(t, err, "seed %q", seed.Name)
		out, err := UnmarshalRequirements(raw)
		require.NoError(t, err, "seed %q", seed.Name)
		assert.Equal(t, seed.Requirements, out, "seed %q", seed.Name)
	}
}

func TestCompanySetsReferencedBySeedsExist(t *testing.T) {
	for _, seed := range AchievementSeeds {
		for _, req := range seed.Requirements {
			if m, ok := req.(SetMembershipCount); ok {
				_, exists := CompanySets[m.Set]
				assert.True(t, exists, "seed %q references unknown company set %q", seed.Name, m.Set)
			}
		}
	}
}
