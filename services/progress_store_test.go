package services

import (
	"testing"
	"time"

	"job-tracker-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleViews() []AchievementView {
	return []AchievementView{
		{ID: "resume-ready", Name: "Resume Ready", Description: "Attach a resume to 10 applications", Category: models.CategoryQuality, Tier: models.TierSilver, Unlocked: true},
		{ID: "first-step", Name: "First Step", Description: "Submit your first application", Category: models.CategoryMilestone, Tier: models.TierBronze, Unlocked: true},
		{ID: "job-seeker", Name: "Job Seeker", Description: "Submit 10 applications", Category: models.CategoryMilestone, Tier: models.TierSilver},
		{ID: "on-fire", Name: "On Fire", Description: "Apply 7 days in a row", Category: models.CategoryStreak, Tier: models.TierGold},
	}
}

func TestFilterAchievements(t *testing.T) {
	views := sampleViews()
	unlocked := true
	locked := false

	tests := []struct {
		name    string
		filter  AchievementFilter
		wantIDs []string
	}{
		{
			name:    "no filter returns everything",
			filter:  AchievementFilter{},
			wantIDs: []string{"resume-ready", "first-step", "job-seeker", "on-fire"},
		},
		{
			name:    "by category",
			filter:  AchievementFilter{Category: models.CategoryMilestone},
			wantIDs: []string{"first-step", "job-seeker"},
		},
		{
			name:    "by tier",
			filter:  AchievementFilter{Tier: models.TierSilver},
			wantIDs: []string{"resume-ready", "job-seeker"},
		},
		{
			name:    "unlocked only",
			filter:  AchievementFilter{Unlocked: &unlocked},
			wantIDs: []string{"resume-ready", "first-step"},
		},
		{
			name:    "locked within category",
			filter:  AchievementFilter{Category: models.CategoryMilestone, Unlocked: &locked},
			wantIDs: []string{"job-seeker"},
		},
		{
			name:    "case-folded query over name",
			filter:  AchievementFilter{Query: "RESUME"},
			wantIDs: []string{"resume-ready"},
		},
		{
			name:    "query matches description too",
			filter:  AchievementFilter{Query: "days in a row"},
			wantIDs: []string{"on-fire"},
		},
		{
			name:    "query with surrounding whitespace",
			filter:  AchievementFilter{Query: "  first  "},
			wantIDs: []string{"first-step"},
		},
		{
			name:    "no match",
			filter:  AchievementFilter{Query: "tournament"},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAchievements(views, tt.filter)
			ids := make([]string, 0, len(got))
			for _, v := range got {
				ids = append(ids, v.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.wantIDs, ids)
			}
		})
	}

	// Filtering never mutates the input slice.
	assert.Equal(t, sampleViews(), views)
}

func TestSortAchievements(t *testing.T) {
	views := sampleViews()
	SortAchievements(views)

	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	// category ascending, then tier, then name
	assert.Equal(t, []string{"first-step", "job-seeker", "resume-ready", "on-fire"}, ids)
}

func TestProgressStorePublishAndSnapshot(t *testing.T) {
	store := NewProgressStore()

	_, ok := store.Snapshot("user-1")
	assert.False(t, ok)

	snap := ProgressSnapshot{
		Stats:       models.UserProgress{ExternalUserID: "user-1", TotalXP: 110, Level: 2},
		GeneratedAt: time.Now().UTC(),
	}
	store.Publish("user-1", snap)

	got, ok := store.Snapshot("user-1")
	require.True(t, ok)
	assert.Equal(t, int64(110), got.Stats.TotalXP)

	// Other users are unaffected.
	_, ok = store.Snapshot("user-2")
	assert.False(t, ok)
}

func TestProgressStoreSubscribe(t *testing.T) {
	store := NewProgressStore()
	ch, cancel := store.Subscribe("user-1")
	defer cancel()

	snap := ProgressSnapshot{Stats: models.UserProgress{ExternalUserID: "user-1", TotalXP: 50}}
	store.Publish("user-1", snap)

	select {
	case got := <-ch:
		assert.Equal(t, int64(50), got.Stats.TotalXP)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered to subscriber")
	}

	// A publish for another user must not reach this subscriber.
	store.Publish("user-2", ProgressSnapshot{})
	select {
	case <-ch:
		t.Fatal("received snapshot for the wrong user")
	default:
	}
}

func TestProgressStoreSubscribeCancel(t *testing.T) {
	store := NewProgressStore()
	ch, cancel := store.Subscribe("user-1")
	cancel()

	store.Publish("user-1", ProgressSnapshot{Stats: models.UserProgress{TotalXP: 10}})
	select {
	case <-ch:
		t.Fatal("cancelled subscriber still received a snapshot")
	default:
	}
}

func TestProgressStoreSkipsSlowSubscriber(t *testing.T) {
	store := NewProgressStore()
	ch, cancel := store.Subscribe("user-1")
	defer cancel()

	// Fill the buffer and keep publishing; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			store.Publish("user-1", ProgressSnapshot{Stats: models.UserProgress{TotalXP: int64(i)}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	assert.NotEmpty(t, ch)
}
