package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"job-tracker-system/models"

	"golang.org/x/text/cases"
)

// AchievementView is one catalog entry projected for the UI, with the user's
// unlock/progress state attached.
type AchievementView struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Icon        string                     `json:"icon"`
	Category    models.AchievementCategory `json:"category"`
	Tier        models.AchievementTier     `json:"tier"`
	Rarity      models.AchievementRarity   `json:"rarity"`
	XPReward    int64                      `json:"xp_reward"`

	Unlocked   bool       `json:"unlocked"`
	Pending    bool       `json:"pending,omitempty"` // optimistic, not yet confirmed
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Progress   float64    `json:"progress"` // 0..1 toward unlocking
}

// ProgressSnapshot is the full reactive state handed to UI collaborators.
type ProgressSnapshot struct {
	Stats        models.UserProgress `json:"stats"`
	Level        LevelSummary        `json:"level"`
	Achievements []AchievementView   `json:"achievements"`
	NewUnlocks   []AchievementView   `json:"new_unlocks,omitempty"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// ProgressStore is an explicit per-process state container (no package-level
// singleton): it holds the last published snapshot per user and fans each
// refresh out to subscribers. Unlock state only ever accumulates here, so a
// stale snapshot served while the store is unreachable never hides an unlock.
type ProgressStore struct {
	mu          sync.RWMutex
	snapshots   map[string]ProgressSnapshot
	subscribers map[string]map[int]chan ProgressSnapshot
	nextSubID   int
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		snapshots:   make(map[string]ProgressSnapshot),
		subscribers: make(map[string]map[int]chan ProgressSnapshot),
	}
}

// Publish replaces the user's snapshot and notifies subscribers. Slow
// subscribers are skipped, not blocked on; they catch up on the next refresh.
func (s *ProgressStore) Publish(userID string, snap ProgressSnapshot) {
	s.mu.Lock()
	s.snapshots[userID] = snap
	subs := make([]chan ProgressSnapshot, 0, len(s.subscribers[userID]))
	for _, ch := range s.subscribers[userID] {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Snapshot returns the last published snapshot for the user, if any.
func (s *ProgressStore) Snapshot(userID string) (ProgressSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[userID]
	return snap, ok
}

// Subscribe registers for snapshot refreshes of one user. The returned cancel
// func must be called when the consumer goes away.
func (s *ProgressStore) Subscribe(userID string) (<-chan ProgressSnapshot, func()) {
	ch := make(chan ProgressSnapshot, 8)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[int]chan ProgressSnapshot)
	}
	s.subscribers[userID][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subscribers[userID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(s.subscribers, userID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// AchievementFilter selects a subset of achievement views. All zero-value
// fields match everything.
type AchievementFilter struct {
	Category models.AchievementCategory
	Tier     models.AchievementTier
	Unlocked *bool
	Query    string // case-folded search over name and description
}

var searchFolder = cases.Fold()

// FilterAchievements is a pure projection: it never mutates unlock state or
// the input slice.
func FilterAchievements(views []AchievementView, f AchievementFilter) []AchievementView {
	query := searchFolder.String(strings.TrimSpace(f.Query))
	out := make([]AchievementView, 0, len(views))
	for _, v := range views {
		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if f.Tier != "" && v.Tier != f.Tier {
			continue
		}
		if f.Unlocked != nil && v.Unlocked != *f.Unlocked {
			continue
		}
		if query != "" {
			haystack := searchFolder.String(v.Name + " " + v.Description)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

var tierOrder = map[models.AchievementTier]int{
	models.TierBronze:    0,
	models.TierSilver:    1,
	models.TierGold:      2,
	models.TierPlatinum:  3,
	models.TierDiamond:   4,
	models.TierLegendary: 5,
}

// SortAchievements orders views by category, then ascending tier, then name.
// Stable presentation order keeps UI lists deterministic across refreshes.
func SortAchievements(views []AchievementView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Category != views[j].Category {
			return views[i].Category < views[j].Category
		}
		if tierOrder[views[i].Tier] != tierOrder[views[j].Tier] {
			return tierOrder[views[i].Tier] < tierOrder[views[j].Tier]
		}
		return views[i].Name < views[j].Name
	})
}
