package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"job-tracker-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EvaluationService runs the recompute pipeline: mutation trigger → streak →
// metrics snapshot → requirement evaluation → unlock coordination → XP/level
// → stats cache → progress store refresh. Every step is derivation over full
// history, so a pass can be repeated or raced at any time without drift.
type EvaluationService struct {
	DB          *gorm.DB
	Catalog     *CatalogService
	Coordinator *UnlockCoordinator
	Store       *ProgressStore

	recomputeTimeout time.Duration
}

func NewEvaluationService(db *gorm.DB, catalog *CatalogService, coordinator *UnlockCoordinator, store *ProgressStore) *EvaluationService {
	return &EvaluationService{
		DB:               db,
		Catalog:          catalog,
		Coordinator:      coordinator,
		Store:            store,
		recomputeTimeout: 30 * time.Second,
	}
}

// --- mirror maintenance (trigger intake) ---

// UpsertApplication stores/refreshes one application mirror row.
func (s *EvaluationService) UpsertApplication(ctx context.Context, app models.ApplicationEvent) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_app_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company", "position", "date_applied", "applied_at",
			"status", "job_type", "attachment_category", "updated_at", "deleted_at",
		}),
	}).Create(&app).Error
}

// DeleteApplication removes the mirror row. Unlock rows derived from it are
// historical and stay: unlocks are monotonic.
func (s *EvaluationService) DeleteApplication(ctx context.Context, externalAppID string) error {
	return s.DB.WithContext(ctx).
		Where("external_app_id = ?", externalAppID).
		Delete(&models.ApplicationEvent{}).Error
}

// UpsertGoal stores/refreshes one goal mirror row.
func (s *EvaluationService) UpsertGoal(ctx context.Context, goal models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_goal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"period", "target", "completed", "completed_at", "updated_at", "deleted_at",
		}),
	}).Create(&goal).Error
}

// --- recompute pipeline ---

// ScheduleRecompute dispatches a recompute asynchronously so the triggering
// HTTP request returns immediately. Concurrent triggers for one user are
// fine: the unlock table's uniqueness constraint arbitrates, and a superseded
// pass simply rewrites the same derived cache.
func (s *EvaluationService) ScheduleRecompute(userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.recomputeTimeout)
		defer cancel()
		if _, err := s.Recompute(ctx, userID); err != nil {
			log.Printf("⚠️ Recompute for %s failed (next trigger retries): %v", userID, err)
		}
	}()
}

// Recompute re-derives the user's entire gamified state from mirror rows and
// the authoritative unlock set, persisting any newly earned unlocks and the
// refreshed stats cache, then publishes a new snapshot.
func (s *EvaluationService) Recompute(ctx context.Context, userID string) (ProgressSnapshot, error) {
	now := time.Now().UTC()

	var apps []models.ApplicationEvent
	if err := s.DB.WithContext(ctx).Where("external_user_id = ?", userID).Find(&apps).Error; err != nil {
		return ProgressSnapshot{}, fmt.Errorf("load applications: %w", err)
	}
	var goals []models.Goal
	if err := s.DB.WithContext(ctx).Where("external_user_id = ?", userID).Find(&goals).Error; err != nil {
		return ProgressSnapshot{}, fmt.Errorf("load goals: %w", err)
	}

	snap, err := BuildSnapshot(apps, goals)
	if err != nil {
		// Malformed input: skip this trigger, keep last known state.
		return ProgressSnapshot{}, fmt.Errorf("build metrics snapshot: %w", err)
	}

	unlockedAt, err := s.Coordinator.UnlockedSet(ctx, userID)
	if err != nil {
		// Store unreachable: fall back to the last-known local view so
		// unlocked state is never hidden, and skip persisting this pass.
		log.Printf("⚠️ Unlock set unavailable for %s, serving last-known state: %v", userID, err)
		return s.degradedSnapshot(userID, snap, now), nil
	}

	unlocked := make(map[string]bool, len(unlockedAt))
	for id := range unlockedAt {
		unlocked[id] = true
	}

	var confirmed []CatalogEntry
	if s.Catalog.Enabled() {
		entries := s.Catalog.Entries()
		var newly []CatalogEntry
		for _, id := range NewlyUnlocked(entries, snap, unlocked) {
			if entry, ok := s.Catalog.Get(id); ok {
				newly = append(newly, entry)
			}
		}
		result := s.Coordinator.Apply(ctx, userID, newly, now)
		confirmed = result.Confirmed
		for _, entry := range confirmed {
			unlockedAt[entry.ID] = now
			unlocked[entry.ID] = true
		}
		for _, id := range result.Duplicate {
			unlocked[id] = true
		}
	}

	stats, err := s.persistStats(ctx, userID, snap, unlocked, now)
	if err != nil {
		return ProgressSnapshot{}, fmt.Errorf("persist stats: %w", err)
	}

	published := s.buildSnapshot(userID, stats, snap, unlockedAt, confirmed, now)
	s.Store.Publish(userID, published)
	return published, nil
}

// SnapshotFor serves the cached snapshot, recomputing on a cold cache.
func (s *EvaluationService) SnapshotFor(ctx context.Context, userID string) (ProgressSnapshot, error) {
	if snap, ok := s.Store.Snapshot(userID); ok {
		return snap, nil
	}
	return s.Recompute(ctx, userID)
}

// persistStats recomputes XP/level from the unlock set and upserts the
// per-user cache row. Last-write-wins is fine here: the row is always
// reconstructable and the reconciliation sweep repairs drift.
func (s *EvaluationService) persistStats(ctx context.Context, userID string, snap MetricsSnapshot, unlocked map[string]bool, now time.Time) (models.UserProgress, error) {
	totalXP := TotalXP(s.Catalog.Entries(), unlocked)
	stats := models.UserProgress{
		ID:                   uuid.NewString(),
		ExternalUserID:       userID,
		TotalXP:              totalXP,
		Level:                LevelForXP(totalXP),
		AchievementsUnlocked: int64(len(unlocked)),
		DailyStreak:          snap.Streak.DailyStreak,
		LongestStreak:        snap.Streak.LongestStreak,
		LastApplicationDate:  snap.Streak.LastApplicationDate,
		StreakStartDate:      snap.Streak.StreakStartDate,
		LastEvaluatedAt:      &now,
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_xp", "level", "achievements_unlocked",
			"daily_streak", "longest_streak", "last_application_date",
			"streak_start_date", "last_evaluated_at", "updated_at",
		}),
	}).Create(&stats).Error
	if err != nil {
		return models.UserProgress{}, err
	}
	return stats, nil
}

func (s *EvaluationService) buildSnapshot(userID string, stats models.UserProgress, snap MetricsSnapshot, unlockedAt map[string]time.Time, confirmed []CatalogEntry, now time.Time) ProgressSnapshot {
	pending := make(map[string]bool)
	for _, id := range s.Coordinator.PendingIDs(userID) {
		pending[id] = true
	}

	entries := s.Catalog.Entries()
	views := make([]AchievementView, 0, len(entries))
	for _, entry := range entries {
		view := AchievementView{
			ID:          entry.ID,
			Name:        entry.Name,
			Description: entry.Description,
			Icon:        entry.Icon,
			Category:    entry.Category,
			Tier:        entry.Tier,
			Rarity:      entry.Rarity,
			XPReward:    entry.XPReward,
		}
		if at, ok := unlockedAt[entry.ID]; ok {
			view.Unlocked = true
			unlocked := at
			view.UnlockedAt = &unlocked
			view.Progress = 1
		} else if pending[entry.ID] {
			// Optimistic: shown unlocked ahead of confirmation.
			view.Unlocked = true
			view.Pending = true
			view.Progress = 1
		} else {
			view.Progress = AchievementProgress(entry, snap)
		}
		views = append(views, view)
	}
	SortAchievements(views)

	var newUnlocks []AchievementView
	for _, entry := range confirmed {
		for _, v := range views {
			if v.ID == entry.ID {
				newUnlocks = append(newUnlocks, v)
				break
			}
		}
	}

	return ProgressSnapshot{
		Stats:        stats,
		Level:        SummarizeLevel(stats.TotalXP),
		Achievements: views,
		NewUnlocks:   newUnlocks,
		GeneratedAt:  now,
	}
}

// degradedSnapshot refreshes streak-derived fields over the last published
// snapshot without touching unlock state or the stats row.
func (s *EvaluationService) degradedSnapshot(userID string, snap MetricsSnapshot, now time.Time) ProgressSnapshot {
	last, ok := s.Store.Snapshot(userID)
	if !ok {
		last = ProgressSnapshot{Stats: models.UserProgress{ExternalUserID: userID, Level: 1}}
	}
	last.Stats.DailyStreak = snap.Streak.DailyStreak
	last.Stats.LongestStreak = snap.Streak.LongestStreak
	last.Stats.LastApplicationDate = snap.Streak.LastApplicationDate
	last.Stats.StreakStartDate = snap.Streak.StreakStartDate
	last.NewUnlocks = nil
	last.GeneratedAt = now
	s.Store.Publish(userID, last)
	return last
}

// ReconcileStats finds stats rows whose XP disagrees with the authoritative
// unlock sum and recomputes those users. The cache is never trusted over the
// unlock table.
func (s *EvaluationService) ReconcileStats(ctx context.Context) error {
	var userIDs []string
	err := s.DB.WithContext(ctx).Raw(`
		SELECT up.external_user_id
		FROM user_progresses up
		LEFT JOIN (
			SELECT ua.external_user_id, COALESCE(SUM(ad.xp_reward), 0) AS xp
			FROM user_achievements ua
			INNER JOIN achievement_definitions ad ON ad.id = ua.achievement_id
			GROUP BY ua.external_user_id
		) sums ON sums.external_user_id = up.external_user_id
		WHERE up.deleted_at IS NULL
		  AND up.total_xp <> COALESCE(sums.xp, 0)
	`).Scan(&userIDs).Error
	if err != nil {
		return fmt.Errorf("find drifted stats rows: %w", err)
	}

	for _, userID := range userIDs {
		if _, err := s.Recompute(ctx, userID); err != nil {
			log.Printf("⚠️ Stats reconciliation for %s failed: %v", userID, err)
		}
	}
	if len(userIDs) > 0 {
		log.Printf("🔧 Reconciled %d drifted stats row(s)", len(userIDs))
	}
	return nil
}
