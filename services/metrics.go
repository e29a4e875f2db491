package services

import (
	"fmt"
	"strings"
	"time"

	"job-tracker-system/models"
)

// Time-of-day windows for time-category requirements, in the AppliedAt
// location.
const (
	earlyBirdBeforeHour = 9
	nightOwlFromHour    = 22
)

// MetricsSnapshot is the complete, self-contained input to the Requirement
// Evaluator: every metric a requirement predicate can reference, derived in
// one pass over the user's mirror rows.
type MetricsSnapshot struct {
	TotalApplications    int64                                 `json:"total_applications"`
	ByStatus             map[models.ApplicationStatus]int64    `json:"by_status"`
	ByAttachmentCategory map[models.AttachmentCategory]int64   `json:"by_attachment_category"`
	CompanySetCounts     map[string]int64                      `json:"company_set_counts"`
	GoalsCompleted       int64                                 `json:"goals_completed"`
	GoalsByPeriod        map[models.GoalPeriod]int64           `json:"goals_by_period"`
	TimeFlags            map[models.TimeWindow]bool            `json:"time_flags"`
	Streak               StreakStats                           `json:"streak"`
}

// BuildSnapshot derives the evaluator input from mirror rows. It returns an
// error for rows the engine cannot count (zero application date): the caller
// skips that trigger and the next mutation retries, rather than evaluating
// against a partial picture.
func BuildSnapshot(apps []models.ApplicationEvent, goals []models.Goal) (MetricsSnapshot, error) {
	snap := MetricsSnapshot{
		ByStatus:             make(map[models.ApplicationStatus]int64),
		ByAttachmentCategory: make(map[models.AttachmentCategory]int64),
		CompanySetCounts:     make(map[string]int64),
		GoalsByPeriod:        make(map[models.GoalPeriod]int64),
		TimeFlags:            make(map[models.TimeWindow]bool),
	}

	memberships := companySetIndex()

	dates := make([]time.Time, 0, len(apps))
	for _, app := range apps {
		if app.DateApplied.IsZero() {
			return MetricsSnapshot{}, fmt.Errorf("application %s has no applied date", app.ExternalAppID)
		}
		snap.TotalApplications++
		snap.ByStatus[app.Status]++
		if app.AttachmentCategory != models.AttachmentNone {
			snap.ByAttachmentCategory[app.AttachmentCategory]++
		}
		for _, set := range memberships[strings.ToLower(strings.TrimSpace(app.Company))] {
			snap.CompanySetCounts[set]++
		}
		if !app.AppliedAt.IsZero() {
			hour := app.AppliedAt.Hour()
			if hour < earlyBirdBeforeHour {
				snap.TimeFlags[models.WindowEarlyBird] = true
			}
			if hour >= nightOwlFromHour {
				snap.TimeFlags[models.WindowNightOwl] = true
			}
		}
		dates = append(dates, app.DateApplied)
	}

	for _, g := range goals {
		if !g.Completed {
			continue
		}
		snap.GoalsCompleted++
		snap.GoalsByPeriod[g.Period]++
	}

	snap.Streak = ComputeStreak(dates)
	return snap, nil
}

// companySetIndex inverts models.CompanySets into company → set names.
func companySetIndex() map[string][]string {
	idx := make(map[string][]string)
	for set, companies := range models.CompanySets {
		for _, company := range companies {
			key := strings.ToLower(company)
			idx[key] = append(idx[key], set)
		}
	}
	return idx
}
