package models

import (
	"time"

	"gorm.io/datatypes"
)

type AchievementCategory string

const (
	CategoryMilestone AchievementCategory = "milestone"
	CategoryStreak    AchievementCategory = "streak"
	CategoryGoal      AchievementCategory = "goal"
	CategoryTime      AchievementCategory = "time"
	CategoryQuality   AchievementCategory = "quality"
	CategorySpecial   AchievementCategory = "special"
)

type AchievementTier string

const (
	TierBronze    AchievementTier = "bronze"
	TierSilver    AchievementTier = "silver"
	TierGold      AchievementTier = "gold"
	TierPlatinum  AchievementTier = "platinum"
	TierDiamond   AchievementTier = "diamond"
	TierLegendary AchievementTier = "legendary"
)

type AchievementRarity string

const (
	RarityCommon    AchievementRarity = "common"
	RarityUncommon  AchievementRarity = "uncommon"
	RarityRare      AchievementRarity = "rare"
	RarityEpic      AchievementRarity = "epic"
	RarityLegendary AchievementRarity = "legendary"
)

// AchievementDefinition: static catalog row (seeded at boot, admin-managed).
// The ID is a stable slug derived from the name at seed time and is the
// catalog primary key; it never changes once shipped.
type AchievementDefinition struct {
	ID          string              `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string              `gorm:"not null" json:"name"`
	Description string              `json:"description"`
	Icon        string              `gorm:"type:text" json:"icon"` // emoji or icon URL
	Category    AchievementCategory `gorm:"type:varchar(16);index;not null" json:"category"`
	Tier        AchievementTier     `gorm:"type:varchar(16);not null" json:"tier"`
	Rarity      AchievementRarity   `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	XPReward    int64               `gorm:"not null;default:0" json:"xp_reward"`

	// Ordered requirement predicates, persisted as a tagged-union JSONB array.
	// Decode with UnmarshalRequirements.
	Requirements datatypes.JSON `gorm:"type:jsonb" json:"requirements"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserAchievement is the authoritative unlock record. The composite unique
// index on (external_user_id, achievement_id) is the single arbiter of
// "exactly once": rows are only ever inserted, never updated or deleted.
type UserAchievement struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"external_user_id"`
	AchievementID  string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	UnlockedAt     time.Time `gorm:"not null" json:"unlocked_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UnlockNotification is the outbox row behind the "achievement unlocked"
// event. Written in the same transaction as the unlock row, so exactly one
// exists per first unlock; the dispatch worker marks it sent.
type UnlockNotification struct {
	ID             string            `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string            `gorm:"index;not null" json:"user_id"`
	AchievementID  string            `gorm:"not null" json:"achievement_id"`
	XPReward       int64             `json:"xp_reward"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Rarity         AchievementRarity `json:"rarity"`

	Attempts      int        `gorm:"default:0" json:"-"`
	LastAttemptAt *time.Time `json:"-"`
	DispatchedAt  *time.Time `gorm:"index" json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
