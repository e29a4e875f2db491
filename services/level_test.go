package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{xp: 0, want: 1},
		{xp: 1, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 199, want: 2},
		{xp: 200, want: 3},
		{xp: 1050, want: 11},
		{xp: -5, want: 1}, // defensive clamp; XP is never negative in practice
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestLevelMonotonicInXP(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(1); xp <= 2500; xp++ {
		lvl := LevelForXP(xp)
		assert.GreaterOrEqual(t, lvl, prev, "level regressed at xp=%d", xp)
		prev = lvl
	}
}

func TestSummarizeLevel(t *testing.T) {
	sum := SummarizeLevel(250)
	assert.Equal(t, int64(250), sum.TotalXP)
	assert.Equal(t, 3, sum.Level)
	assert.Equal(t, int64(50), sum.XPIntoLevel)
	assert.Equal(t, int64(50), sum.XPToNextLevel)

	zero := SummarizeLevel(0)
	assert.Equal(t, 1, zero.Level)
	assert.Equal(t, int64(0), zero.XPIntoLevel)
	assert.Equal(t, LevelStep, zero.XPToNextLevel)
}

func TestTotalXPSumsUnlockedRewardsExactly(t *testing.T) {
	entries := []CatalogEntry{
		{ID: "a", XPReward: 10},
		{ID: "b", XPReward: 25},
		{ID: "c", XPReward: 400},
	}

	assert.Equal(t, int64(0), TotalXP(entries, nil))
	assert.Equal(t, int64(35), TotalXP(entries, map[string]bool{"a": true, "b": true}))
	assert.Equal(t, int64(435), TotalXP(entries, map[string]bool{"a": true, "b": true, "c": true}))

	// Unknown IDs in the unlock set contribute nothing.
	assert.Equal(t, int64(10), TotalXP(entries, map[string]bool{"a": true, "ghost": true}))
}
