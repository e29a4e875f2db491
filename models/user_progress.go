package models

import "time"

// UserProgress caches derived progression per user (denormalized for reads).
// It is never a source of truth: every field is re-derivable from the
// application mirror plus the unlock table, and the reconciliation sweep
// rebuilds any row that drifts.
type UserProgress struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	// Derived from the unlock set. Level is stored for query convenience only
	// and is always recomputed from TotalXP before writing.
	TotalXP              int64 `json:"total_xp" gorm:"default:0"`
	Level                int   `json:"level" gorm:"default:1"`
	AchievementsUnlocked int64 `json:"achievements_unlocked" gorm:"default:0"`

	// Derived from distinct application dates.
	DailyStreak         int        `json:"daily_streak" gorm:"default:0"`
	LongestStreak       int        `json:"longest_streak" gorm:"default:0"`
	LastApplicationDate *time.Time `json:"last_application_date,omitempty" gorm:"type:date"`
	StreakStartDate     *time.Time `json:"streak_start_date,omitempty" gorm:"type:date"`

	LastEvaluatedAt *time.Time `json:"last_evaluated_at,omitempty"`

	Timestamps
}
