package services

import (
	"sort"

	"job-tracker-system/models"
)

// RequirementHolds reports whether one requirement predicate is satisfied by
// the snapshot. Pure: identical inputs always produce identical outputs. The
// type switch is exhaustive over the closed requirement set; an unknown
// variant never holds.
func RequirementHolds(req models.Requirement, snap MetricsSnapshot) bool {
	have, want, ok := requirementProgress(req, snap)
	if !ok {
		return false
	}
	cmp := requirementCmp(req)
	return cmp.Holds(have, want)
}

// requirementProgress returns the observed and target values for a
// requirement, so both evaluation and UI progress bars share one source.
// Boolean requirements report 0/1.
func requirementProgress(req models.Requirement, snap MetricsSnapshot) (have, want int64, ok bool) {
	switch r := req.(type) {
	case models.CountThreshold:
		if r.Status == "" {
			return snap.TotalApplications, r.Value, true
		}
		return snap.ByStatus[r.Status], r.Value, true
	case models.StreakThreshold:
		if r.Longest {
			return int64(snap.Streak.LongestStreak), r.Value, true
		}
		return int64(snap.Streak.DailyStreak), r.Value, true
	case models.GoalCompletionCount:
		if r.Period == "" {
			return snap.GoalsCompleted, r.Value, true
		}
		return snap.GoalsByPeriod[r.Period], r.Value, true
	case models.TimeWindowFlag:
		if snap.TimeFlags[r.Window] {
			return 1, 1, true
		}
		return 0, 1, true
	case models.CategoryCount:
		return snap.ByAttachmentCategory[r.Category], r.Value, true
	case models.SetMembershipCount:
		return snap.CompanySetCounts[r.Set], r.Value, true
	}
	return 0, 0, false
}

func requirementCmp(req models.Requirement) models.Comparison {
	switch r := req.(type) {
	case models.CountThreshold:
		return r.Cmp
	case models.StreakThreshold:
		return r.Cmp
	case models.GoalCompletionCount:
		return r.Cmp
	case models.CategoryCount:
		return r.Cmp
	case models.SetMembershipCount:
		return r.Cmp
	case models.TimeWindowFlag:
		return models.CmpGTE
	}
	return ""
}

// AchievementSatisfied reports whether every requirement of the entry holds.
func AchievementSatisfied(entry CatalogEntry, snap MetricsSnapshot) bool {
	if len(entry.Requirements) == 0 {
		return false
	}
	for _, req := range entry.Requirements {
		if !RequirementHolds(req, snap) {
			return false
		}
	}
	return true
}

// NewlyUnlocked folds the catalog against the snapshot and returns the IDs
// that are satisfied but not yet unlocked. The result is sorted by ID so the
// caller's XP accumulation and notification order are reproducible across
// runs and devices.
func NewlyUnlocked(catalog []CatalogEntry, snap MetricsSnapshot, unlocked map[string]bool) []string {
	var ids []string
	for _, entry := range catalog {
		if unlocked[entry.ID] {
			continue
		}
		if AchievementSatisfied(entry, snap) {
			ids = append(ids, entry.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// AchievementProgress is the 0..1 completion fraction shown on locked cards:
// the minimum requirement fraction, since all requirements must hold.
func AchievementProgress(entry CatalogEntry, snap MetricsSnapshot) float64 {
	if len(entry.Requirements) == 0 {
		return 0
	}
	lowest := 1.0
	for _, req := range entry.Requirements {
		have, want, ok := requirementProgress(req, snap)
		if !ok || want <= 0 {
			return 0
		}
		frac := float64(have) / float64(want)
		if frac > 1 {
			frac = 1
		}
		if frac < lowest {
			lowest = frac
		}
	}
	return lowest
}
