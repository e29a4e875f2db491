package services

import (
	"sort"
	"time"
)

// StreakStats is the derived day-streak state for one user.
type StreakStats struct {
	DailyStreak         int        `json:"daily_streak"`
	LongestStreak       int        `json:"longest_streak"`
	LastApplicationDate *time.Time `json:"last_application_date,omitempty"`
	StreakStartDate     *time.Time `json:"streak_start_date,omitempty"`
}

// DayOf truncates a timestamp to its calendar date in UTC. All streak math
// happens on these normalized dates.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStreak derives streak stats from application timestamps. Same-day
// duplicates count once; a gap of more than one day breaks a run. The current
// streak is the trailing run ending at the most recent application date — it
// does not require that date to be today. Safe to re-run over full history at
// any time; output depends only on the input set.
func ComputeStreak(applied []time.Time) StreakStats {
	if len(applied) == 0 {
		return StreakStats{}
	}

	seen := make(map[time.Time]struct{}, len(applied))
	days := make([]time.Time, 0, len(applied))
	for _, t := range applied {
		day := DayOf(t)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	// Descending: days[0] is the most recent application date.
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	last := days[0]
	start := days[0]
	current := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		current++
		start = days[i]
	}

	// Longest run anywhere in history, which may predate the current run.
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return StreakStats{
		DailyStreak:         current,
		LongestStreak:       longest,
		LastApplicationDate: &last,
		StreakStartDate:     &start,
	}
}
