// workers/notification_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"job-tracker-system/models"
	"job-tracker-system/utils"

	"gorm.io/gorm"
)

// unlockEventPayload is the JSON body posted to the Notification service for
// each first unlock.
type unlockEventPayload struct {
	UserID        string                   `json:"userId"`
	AchievementID string                   `json:"achievementId"`
	XPReward      int64                    `json:"xpReward"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Rarity        models.AchievementRarity `json:"rarity"`
}

// NotificationWorker drains the unlock-notification outbox and delivers each
// event to the Notification service at least once; consumers dedupe on
// (userId, achievementId). Rows are written in the same transaction as the
// unlock itself, so delivery can be retried with backoff forever without
// duplicating an unlock, and a delivery failure can never un-unlock anything
// or block further evaluation.
type NotificationWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8600"
	endpointPath string // e.g., "/api/v1/notifications/achievements"
	serviceToken string
	httpClient   *http.Client

	batchSize   int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewNotificationWorker(db *gorm.DB, notificationBaseURL, endpointPath, serviceToken string) *NotificationWorker {
	return &NotificationWorker{
		db:           db,
		interval:     15 * time.Second,
		baseURL:      notificationBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
		batchSize:    50,
		baseBackoff:  30 * time.Second,
		maxBackoff:   1 * time.Hour,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Unlock Notification Worker (outbox → notification service)…")
	go w.run(ctx)
}

func (w *NotificationWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.dispatchBatch(ctx); err != nil {
				log.Printf("❌ Notification dispatch batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Unlock Notification Worker stopped")
			return
		}
	}
}

// dispatchBatch delivers due outbox rows oldest-first. A row is due when it
// has never been attempted or its per-row backoff window has elapsed; a row
// that keeps failing backs off up to maxBackoff but is never dropped.
func (w *NotificationWorker) dispatchBatch(ctx context.Context) error {
	now := time.Now().UTC()

	var rows []models.UnlockNotification
	if err := w.db.WithContext(ctx).
		Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(w.batchSize).
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load outbox rows: %w", err)
	}

	var sent, skipped, failed int
	for _, row := range rows {
		if !w.due(row, now) {
			skipped++
			continue
		}
		if err := w.deliver(ctx, row); err != nil {
			failed++
			w.recordFailure(row, now)
			log.Printf("⚠️ Notification %s (user=%s, achievement=%s) attempt %d failed: %v",
				row.ID, row.ExternalUserID, row.AchievementID, row.Attempts+1, err)
			continue
		}
		sent++
		if err := w.db.WithContext(ctx).Model(&models.UnlockNotification{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"dispatched_at":   now,
				"attempts":        row.Attempts + 1,
				"last_attempt_at": now,
			}).Error; err != nil {
			log.Printf("⚠️ Failed to mark notification %s dispatched: %v", row.ID, err)
		}
	}

	if sent+failed > 0 {
		log.Printf("📣 Notification batch: %d sent, %d failed, %d backing off", sent, failed, skipped)
	}
	return nil
}

func (w *NotificationWorker) due(row models.UnlockNotification, now time.Time) bool {
	if row.Attempts == 0 || row.LastAttemptAt == nil {
		return true
	}
	backoff := w.baseBackoff << uint(row.Attempts-1)
	if backoff > w.maxBackoff || backoff <= 0 {
		backoff = w.maxBackoff
	}
	return !now.Before(row.LastAttemptAt.Add(backoff))
}

func (w *NotificationWorker) recordFailure(row models.UnlockNotification, now time.Time) {
	if err := w.db.Model(&models.UnlockNotification{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"attempts":        row.Attempts + 1,
			"last_attempt_at": now,
		}).Error; err != nil {
		log.Printf("⚠️ Failed to record notification failure for %s: %v", row.ID, err)
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, row models.UnlockNotification) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid notification service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath).String()

	payload, err := json.Marshal(unlockEventPayload{
		UserID:        row.ExternalUserID,
		AchievementID: row.AchievementID,
		XPReward:      row.XPReward,
		Name:          row.Name,
		Description:   row.Description,
		Rarity:        row.Rarity,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpointURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request to %s: %w", endpointURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to notification service failed: %w", err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification service non-2xx response: %d — %s", resp.StatusCode, string(body))
	}
	return nil
}
