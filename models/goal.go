package models

import "time"

// GoalPeriod is the window a goal target applies to.
type GoalPeriod string

const (
	GoalPeriodWeekly  GoalPeriod = "weekly"
	GoalPeriodMonthly GoalPeriod = "monthly"
	GoalPeriodTotal   GoalPeriod = "total"
)

// Goal is a local mirror of a user goal owned by the Goal service. Only the
// fields the Requirement Evaluator consumes are mirrored.
type Goal struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalGoalID string `gorm:"uniqueIndex;not null" json:"external_goal_id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	Period GoalPeriod `gorm:"type:varchar(16);not null" json:"period"`
	Target int64      `json:"target"`

	Completed   bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}
