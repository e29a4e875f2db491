package models

import (
	"time"

	"gorm.io/gorm"
)

// ApplicationStatus mirrors the status vocabulary of the Application service.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

// JobType mirrors the work-arrangement vocabulary of the Application service.
type JobType string

const (
	JobTypeRemote JobType = "remote"
	JobTypeOnsite JobType = "onsite"
	JobTypeHybrid JobType = "hybrid"
)

// AttachmentCategory classifies the primary attachment of an application.
// The engine only consumes the category; the files themselves belong to the
// Application service.
type AttachmentCategory string

const (
	AttachmentResume      AttachmentCategory = "resume"
	AttachmentCoverLetter AttachmentCategory = "cover_letter"
	AttachmentPortfolio   AttachmentCategory = "portfolio"
	AttachmentNone        AttachmentCategory = ""
)

// ApplicationEvent is a local mirror of a job application owned by the
// Application service. Populated from mutation events forwarded through the
// gateway; every create/update/delete is a recompute trigger.
type ApplicationEvent struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalAppID  string `gorm:"uniqueIndex;not null" json:"external_app_id"` // Application service's ID
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	Company  string `gorm:"index" json:"company"`
	Position string `json:"position"`

	// DateApplied is the calendar date used for streak counting, truncated to
	// day. AppliedAt keeps the wall-clock instant for time-of-day requirements.
	DateApplied time.Time `gorm:"type:date;index;not null" json:"date_applied"`
	AppliedAt   time.Time `json:"applied_at"`

	Status             ApplicationStatus  `gorm:"type:varchar(16);not null;default:'applied'" json:"status"`
	JobType            JobType            `gorm:"type:varchar(16)" json:"job_type"`
	AttachmentCategory AttachmentCategory `gorm:"type:varchar(32);index" json:"attachment_category"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
