package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"job-tracker-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlockStore is the authoritative unlock persistence. The uniqueness
// constraint on (user, achievement) behind Unlock is the single arbiter of
// "exactly once"; all in-memory state is advisory.
type UnlockStore interface {
	// Unlock inserts the unlock row and its notification outbox row in one
	// transaction. Returns created=false (and no error) when the pair already
	// exists — a duplicate is a success, not a failure.
	Unlock(ctx context.Context, userID string, entry CatalogEntry, at time.Time) (created bool, err error)

	// ListUnlocked returns every unlock row for the user.
	ListUnlocked(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// GormUnlockStore backs UnlockStore with the postgres unlock table.
type GormUnlockStore struct {
	DB *gorm.DB
}

func NewGormUnlockStore(db *gorm.DB) *GormUnlockStore {
	return &GormUnlockStore{DB: db}
}

func (s *GormUnlockStore) Unlock(ctx context.Context, userID string, entry CatalogEntry, at time.Time) (bool, error) {
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.UserAchievement{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			AchievementID:  entry.ID,
			UnlockedAt:     at,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			// A raced insert can still surface as a duplicate-key error;
			// that means someone else unlocked first, which is success.
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already unlocked
		}

		created = true
		notif := models.UnlockNotification{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			AchievementID:  entry.ID,
			XPReward:       entry.XPReward,
			Name:           entry.Name,
			Description:    entry.Description,
			Rarity:         entry.Rarity,
		}
		return tx.Create(&notif).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *GormUnlockStore) ListUnlocked(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Order("achievement_id ASC").
		Find(&rows).Error
	return rows, err
}

// pendingUnlock is an optimistic, not-yet-confirmed unlock. It is shown to
// the user immediately and retried against the store until confirmed; it is
// never dropped in a way that would skip a later successful write.
type pendingUnlock struct {
	Entry     CatalogEntry
	MarkedAt  time.Time
	Attempts  int
	NextRetry time.Time
}

// ApplyResult summarizes one coordination pass.
type ApplyResult struct {
	Confirmed []CatalogEntry // inserted by this pass (first unlock, notify)
	Duplicate []string       // already unlocked elsewhere (no-op)
	Pending   []string       // store unreachable, kept optimistic
}

// UnlockCoordinator applies newly-satisfied achievements exactly once per
// (user, achievement). Local state is an optimistic pending queue reconciled
// against the authoritative store; concurrent or repeated passes are safe
// because the store's uniqueness constraint decides every race.
type UnlockCoordinator struct {
	store UnlockStore

	mu      sync.Mutex
	pending map[string]map[string]*pendingUnlock // userID → achievementID

	retryAttempts int
	baseBackoff   time.Duration
	maxBackoff    time.Duration
}

func NewUnlockCoordinator(store UnlockStore) *UnlockCoordinator {
	return &UnlockCoordinator{
		store:         store,
		pending:       make(map[string]map[string]*pendingUnlock),
		retryAttempts: 3,
		baseBackoff:   250 * time.Millisecond,
		maxBackoff:    30 * time.Second,
	}
}

// Apply marks the given achievements as optimistically unlocked, then
// persists each through the store with bounded retries. Entries the store
// rejects as duplicates are confirmed without XP or notification; entries the
// store cannot accept right now stay pending for the reconciliation sweep.
func (c *UnlockCoordinator) Apply(ctx context.Context, userID string, entries []CatalogEntry, now time.Time) ApplyResult {
	var result ApplyResult
	for _, entry := range entries {
		c.markPending(userID, entry, now)

		created, err := c.unlockWithRetry(ctx, userID, entry, now)
		if err != nil {
			c.deferPending(userID, entry.ID, now)
			result.Pending = append(result.Pending, entry.ID)
			log.Printf("⚠️ Unlock %s for %s not confirmed, kept pending: %v", entry.ID, userID, err)
			continue
		}

		c.confirmPending(userID, entry.ID)
		if created {
			result.Confirmed = append(result.Confirmed, entry)
			log.Printf("🏅 Achievement unlocked: %s → %s (+%d XP)", entry.ID, userID, entry.XPReward)
		} else {
			result.Duplicate = append(result.Duplicate, entry.ID)
		}
	}
	return result
}

func (c *UnlockCoordinator) unlockWithRetry(ctx context.Context, userID string, entry CatalogEntry, at time.Time) (bool, error) {
	var lastErr error
	delay := c.baseBackoff
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return false, ctx.Err()
			}
			delay *= 2
			if delay > c.maxBackoff {
				delay = c.maxBackoff
			}
		}
		created, err := c.store.Unlock(ctx, userID, entry, at)
		if err == nil {
			return created, nil
		}
		lastErr = err
	}
	return false, lastErr
}

// FlushPending retries every due pending unlock and returns the entries
// confirmed per user. Called by the reconciliation sweep; each retry is one
// store attempt, with per-entry exponential backoff between sweeps.
func (c *UnlockCoordinator) FlushPending(ctx context.Context, now time.Time) map[string][]CatalogEntry {
	type due struct {
		userID string
		entry  CatalogEntry
	}
	var dues []due

	c.mu.Lock()
	for userID, byID := range c.pending {
		for _, p := range byID {
			if !p.NextRetry.After(now) {
				dues = append(dues, due{userID: userID, entry: p.Entry})
			}
		}
	}
	c.mu.Unlock()

	confirmed := make(map[string][]CatalogEntry)
	for _, d := range dues {
		created, err := c.store.Unlock(ctx, d.userID, d.entry, now)
		if err != nil {
			c.deferPending(d.userID, d.entry.ID, now)
			continue
		}
		c.confirmPending(d.userID, d.entry.ID)
		if created {
			confirmed[d.userID] = append(confirmed[d.userID], d.entry)
			log.Printf("🏅 Pending unlock confirmed: %s → %s", d.entry.ID, d.userID)
		}
	}
	return confirmed
}

// PendingIDs returns the user's optimistic, unconfirmed unlock IDs. Views
// merge these over the authoritative set so an unlock is never "un-shown"
// while the store is unreachable.
func (c *UnlockCoordinator) PendingIDs(userID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID := c.pending[userID]
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	return ids
}

// UnlockedSet returns the authoritative unlocked IDs with their timestamps.
func (c *UnlockCoordinator) UnlockedSet(ctx context.Context, userID string) (map[string]time.Time, error) {
	rows, err := c.store.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		set[row.AchievementID] = row.UnlockedAt
	}
	return set, nil
}

func (c *UnlockCoordinator) markPending(userID string, entry CatalogEntry, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID := c.pending[userID]
	if byID == nil {
		byID = make(map[string]*pendingUnlock)
		c.pending[userID] = byID
	}
	if _, ok := byID[entry.ID]; !ok {
		byID[entry.ID] = &pendingUnlock{Entry: entry, MarkedAt: now, NextRetry: now}
	}
}

func (c *UnlockCoordinator) deferPending(userID, achievementID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[userID][achievementID]
	if !ok {
		return
	}
	p.Attempts++
	backoff := c.baseBackoff << uint(p.Attempts)
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	p.NextRetry = now.Add(backoff)
}

func (c *UnlockCoordinator) confirmPending(userID, achievementID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID, ok := c.pending[userID]
	if !ok {
		return
	}
	delete(byID, achievementID)
	if len(byID) == 0 {
		delete(c.pending, userID)
	}
}
