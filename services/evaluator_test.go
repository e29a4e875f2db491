package services

import (
	"testing"

	"job-tracker-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryFromSeed(t *testing.T, name string) CatalogEntry {
	t.Helper()
	for _, seed := range models.AchievementSeeds {
		if seed.Name == name {
			return CatalogEntry{
				ID:           seed.SeedID(),
				Name:         seed.Name,
				Description:  seed.Description,
				Category:     seed.Category,
				Tier:         seed.Tier,
				Rarity:       seed.Rarity,
				XPReward:     seed.XPReward,
				Requirements: seed.Requirements,
			}
		}
	}
	t.Fatalf("no seed named %q", name)
	return CatalogEntry{}
}

func snapshotWith(mutate func(*MetricsSnapshot)) MetricsSnapshot {
	snap := MetricsSnapshot{
		ByStatus:             make(map[models.ApplicationStatus]int64),
		ByAttachmentCategory: make(map[models.AttachmentCategory]int64),
		CompanySetCounts:     make(map[string]int64),
		GoalsByPeriod:        make(map[models.GoalPeriod]int64),
		TimeFlags:            make(map[models.TimeWindow]bool),
	}
	if mutate != nil {
		mutate(&snap)
	}
	return snap
}

func TestRequirementHolds(t *testing.T) {
	tests := []struct {
		name string
		req  models.Requirement
		snap MetricsSnapshot
		want bool
	}{
		{
			name: "total count met",
			req:  models.CountThreshold{Cmp: models.CmpGTE, Value: 10},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.TotalApplications = 10 }),
			want: true,
		},
		{
			name: "total count one short",
			req:  models.CountThreshold{Cmp: models.CmpGTE, Value: 10},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.TotalApplications = 9 }),
			want: false,
		},
		{
			name: "status-scoped count",
			req:  models.CountThreshold{Status: models.StatusOffer, Cmp: models.CmpGTE, Value: 1},
			snap: snapshotWith(func(s *MetricsSnapshot) {
				s.TotalApplications = 40
				s.ByStatus[models.StatusOffer] = 1
			}),
			want: true,
		},
		{
			name: "current streak threshold",
			req:  models.StreakThreshold{Cmp: models.CmpGTE, Value: 7},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.Streak.DailyStreak = 7 }),
			want: true,
		},
		{
			name: "longest streak threshold ignores current",
			req:  models.StreakThreshold{Longest: true, Cmp: models.CmpGTE, Value: 60},
			snap: snapshotWith(func(s *MetricsSnapshot) {
				s.Streak.DailyStreak = 1
				s.Streak.LongestStreak = 61
			}),
			want: true,
		},
		{
			name: "goal completion any period",
			req:  models.GoalCompletionCount{Cmp: models.CmpGTE, Value: 5},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.GoalsCompleted = 5 }),
			want: true,
		},
		{
			name: "goal completion wrong period",
			req:  models.GoalCompletionCount{Period: models.GoalPeriodWeekly, Cmp: models.CmpGTE, Value: 1},
			snap: snapshotWith(func(s *MetricsSnapshot) {
				s.GoalsCompleted = 3
				s.GoalsByPeriod[models.GoalPeriodMonthly] = 3
			}),
			want: false,
		},
		{
			name: "time window flag set",
			req:  models.TimeWindowFlag{Window: models.WindowEarlyBird},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.TimeFlags[models.WindowEarlyBird] = true }),
			want: true,
		},
		{
			name: "time window flag unset",
			req:  models.TimeWindowFlag{Window: models.WindowNightOwl},
			snap: snapshotWith(nil),
			want: false,
		},
		{
			name: "attachment category count",
			req:  models.CategoryCount{Category: models.AttachmentResume, Cmp: models.CmpGTE, Value: 10},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.ByAttachmentCategory[models.AttachmentResume] = 12 }),
			want: true,
		},
		{
			name: "company set membership count",
			req:  models.SetMembershipCount{Set: models.CompanySetBigTech, Cmp: models.CmpGTE, Value: 5},
			snap: snapshotWith(func(s *MetricsSnapshot) { s.CompanySetCounts[models.CompanySetBigTech] = 5 }),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequirementHolds(tt.req, tt.snap))
		})
	}
}

func TestComparisonHolds(t *testing.T) {
	assert.True(t, models.CmpGTE.Holds(5, 5))
	assert.True(t, models.CmpGT.Holds(6, 5))
	assert.False(t, models.CmpGT.Holds(5, 5))
	assert.True(t, models.CmpEQ.Holds(5, 5))
	assert.True(t, models.CmpLTE.Holds(5, 5))
	assert.True(t, models.CmpLT.Holds(4, 5))

	// Unknown operators never hold: a malformed catalog row can only
	// withhold an unlock.
	assert.False(t, models.Comparison("~").Holds(5, 5))
}

// The 9th qualifying application yields no unlock; the 10th yields exactly
// one, carrying the catalog's declared XP reward.
func TestResumeCategoryThresholdBoundary(t *testing.T) {
	entry := entryFromSeed(t, "Resume Ready")

	nine := snapshotWith(func(s *MetricsSnapshot) {
		s.ByAttachmentCategory[models.AttachmentResume] = 9
	})
	assert.Empty(t, NewlyUnlocked([]CatalogEntry{entry}, nine, nil))

	ten := snapshotWith(func(s *MetricsSnapshot) {
		s.ByAttachmentCategory[models.AttachmentResume] = 10
	})
	ids := NewlyUnlocked([]CatalogEntry{entry}, ten, nil)
	require.Len(t, ids, 1)
	assert.Equal(t, entry.ID, ids[0])
	assert.Equal(t, int64(75), entry.XPReward)

	// Already unlocked: satisfied but never re-reported.
	assert.Empty(t, NewlyUnlocked([]CatalogEntry{entry}, ten, map[string]bool{entry.ID: true}))
}

func TestNewlyUnlockedSortedAndDeterministic(t *testing.T) {
	catalog := []CatalogEntry{
		entryFromSeed(t, "Job Seeker"),
		entryFromSeed(t, "First Step"),
		entryFromSeed(t, "Getting Started"),
	}
	snap := snapshotWith(func(s *MetricsSnapshot) { s.TotalApplications = 10 })

	first := NewlyUnlocked(catalog, snap, nil)
	assert.Equal(t, []string{"first-step", "getting-started", "job-seeker"}, first)

	// Pure fold: identical inputs, identical outputs.
	assert.Equal(t, first, NewlyUnlocked(catalog, snap, nil))
}

func TestMultiRequirementAchievement(t *testing.T) {
	entry := entryFromSeed(t, "Comeback Kid")

	rejectionsOnly := snapshotWith(func(s *MetricsSnapshot) {
		s.ByStatus[models.StatusRejected] = 6
	})
	assert.False(t, AchievementSatisfied(entry, rejectionsOnly))

	both := snapshotWith(func(s *MetricsSnapshot) {
		s.ByStatus[models.StatusRejected] = 6
		s.Streak.DailyStreak = 3
	})
	assert.True(t, AchievementSatisfied(entry, both))
}

func TestAchievementProgress(t *testing.T) {
	entry := entryFromSeed(t, "Job Seeker") // 10 applications

	half := snapshotWith(func(s *MetricsSnapshot) { s.TotalApplications = 5 })
	assert.InDelta(t, 0.5, AchievementProgress(entry, half), 1e-9)

	over := snapshotWith(func(s *MetricsSnapshot) { s.TotalApplications = 40 })
	assert.InDelta(t, 1.0, AchievementProgress(entry, over), 1e-9)

	// Multi-requirement progress is the lowest requirement fraction.
	comeback := entryFromSeed(t, "Comeback Kid")
	partial := snapshotWith(func(s *MetricsSnapshot) {
		s.ByStatus[models.StatusRejected] = 5 // complete
		s.Streak.DailyStreak = 1              // 1 of 3
	})
	assert.InDelta(t, 1.0/3.0, AchievementProgress(comeback, partial), 1e-9)

	assert.Zero(t, AchievementProgress(CatalogEntry{}, half))
}
