package services

import (
	"testing"
	"time"

	"job-tracker-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func app(company string, appliedAt time.Time, status models.ApplicationStatus, category models.AttachmentCategory) models.ApplicationEvent {
	return models.ApplicationEvent{
		ExternalAppID:      company + appliedAt.Format("2006-01-02T15"),
		ExternalUserID:     "user-1",
		Company:            company,
		DateApplied:        DayOf(appliedAt),
		AppliedAt:          appliedAt,
		Status:             status,
		AttachmentCategory: category,
	}
}

func TestBuildSnapshot(t *testing.T) {
	apps := []models.ApplicationEvent{
		app("Acme", time.Date(2024, 4, 1, 8, 15, 0, 0, time.UTC), models.StatusApplied, models.AttachmentResume),
		app("google", time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC), models.StatusInterview, models.AttachmentResume),
		app("Microsoft", time.Date(2024, 4, 3, 22, 30, 0, 0, time.UTC), models.StatusOffer, models.AttachmentCoverLetter),
		app("Initech", time.Date(2024, 4, 4, 14, 0, 0, 0, time.UTC), models.StatusRejected, models.AttachmentNone),
	}
	goals := []models.Goal{
		{ExternalGoalID: "g1", Period: models.GoalPeriodWeekly, Completed: true},
		{ExternalGoalID: "g2", Period: models.GoalPeriodMonthly, Completed: false},
		{ExternalGoalID: "g3", Period: models.GoalPeriodTotal, Completed: true},
	}

	snap, err := BuildSnapshot(apps, goals)
	require.NoError(t, err)

	assert.Equal(t, int64(4), snap.TotalApplications)
	assert.Equal(t, int64(1), snap.ByStatus[models.StatusApplied])
	assert.Equal(t, int64(1), snap.ByStatus[models.StatusInterview])
	assert.Equal(t, int64(1), snap.ByStatus[models.StatusOffer])
	assert.Equal(t, int64(1), snap.ByStatus[models.StatusRejected])

	assert.Equal(t, int64(2), snap.ByAttachmentCategory[models.AttachmentResume])
	assert.Equal(t, int64(1), snap.ByAttachmentCategory[models.AttachmentCoverLetter])
	_, hasEmpty := snap.ByAttachmentCategory[models.AttachmentNone]
	assert.False(t, hasEmpty, "missing attachments are not a category")

	// Company set matching is case-insensitive.
	assert.Equal(t, int64(2), snap.CompanySetCounts[models.CompanySetBigTech])

	assert.True(t, snap.TimeFlags[models.WindowEarlyBird], "08:15 submission")
	assert.True(t, snap.TimeFlags[models.WindowNightOwl], "22:30 submission")

	assert.Equal(t, int64(2), snap.GoalsCompleted)
	assert.Equal(t, int64(1), snap.GoalsByPeriod[models.GoalPeriodWeekly])
	assert.Equal(t, int64(1), snap.GoalsByPeriod[models.GoalPeriodTotal])
	assert.Zero(t, snap.GoalsByPeriod[models.GoalPeriodMonthly])

	assert.Equal(t, 4, snap.Streak.DailyStreak)
}

func TestBuildSnapshotTimeWindowBoundaries(t *testing.T) {
	atNine := []models.ApplicationEvent{
		app("Acme", time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), models.StatusApplied, models.AttachmentNone),
	}
	snap, err := BuildSnapshot(atNine, nil)
	require.NoError(t, err)
	assert.False(t, snap.TimeFlags[models.WindowEarlyBird], "09:00 is not early")

	atTen := []models.ApplicationEvent{
		app("Acme", time.Date(2024, 4, 1, 22, 0, 0, 0, time.UTC), models.StatusApplied, models.AttachmentNone),
	}
	snap, err = BuildSnapshot(atTen, nil)
	require.NoError(t, err)
	assert.True(t, snap.TimeFlags[models.WindowNightOwl], "22:00 is night owl")
}

func TestBuildSnapshotRejectsMissingDate(t *testing.T) {
	broken := []models.ApplicationEvent{{ExternalAppID: "x", ExternalUserID: "user-1"}}
	_, err := BuildSnapshot(broken, nil)
	require.Error(t, err)
}

func TestBuildSnapshotEmpty(t *testing.T) {
	snap, err := BuildSnapshot(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalApplications)
	assert.Zero(t, snap.Streak.DailyStreak)
	assert.Nil(t, snap.Streak.LastApplicationDate)
}
