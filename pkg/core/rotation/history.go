package rotation

import (
	"time"
)

// NeverDone is the DaysSinceLast sentinel for activities a bunk has never
// been scheduled for within the scanned window.
const NeverDone = -1

// DefaultHistoryDays is how many persisted days are scanned when rebuilding
// rotation history.
const DefaultHistoryDays = 14

// ActivityStats summarizes one bunk's past usage of one activity.
type ActivityStats struct {
	// Count is the number of occurrences within the scanned window.
	Count int

	// DaysSinceLast is the age of the most recent occurrence (1 = yesterday),
	// or NeverDone.
	DaysSinceLast int

	// Last7Count is the number of occurrences in the trailing seven days.
	Last7Count int

	// Streak is the run of consecutive days ending yesterday on which the
	// activity occurred. Zero unless the activity ran yesterday.
	Streak int
}

// History maps activity key to usage stats for a single bunk.
type History map[string]*ActivityStats

// Stats returns the stats for an activity, defaulting to never-done.
func (h History) Stats(activity string) ActivityStats {
	if s, ok := h[activity]; ok {
		return *s
	}
	return ActivityStats{DaysSinceLast: NeverDone}
}

// AttemptedCount returns how many distinct activities have at least one
// occurrence.
func (h History) AttemptedCount() int {
	n := 0
	for _, s := range h {
		if s.Count > 0 {
			n++
		}
	}
	return n
}

// DaySchedule is one persisted day of schedules: bunk name to the activity
// keys that bunk did that day (fixed blocks and continuations excluded).
type DaySchedule struct {
	Date   time.Time
	ByBunk map[string][]string
}

// LoadPreviousFunc returns up to `days` persisted day schedules strictly
// before the given date, ordered most recent first. Missing days may simply
// be absent from the result.
type LoadPreviousFunc func(date time.Time, days int) ([]DaySchedule, error)

// buildHistory folds a list of prior day schedules into per-bunk history.
// Day age is derived from the schedule date relative to the target date, so
// gaps in the persisted record are handled correctly.
func buildHistory(target time.Time, days []DaySchedule, bunk string) History {
	history := History{}

	for _, day := range days {
		age := daysBetween(day.Date, target)
		if age < 1 {
			continue
		}

		for _, activity := range day.ByBunk[bunk] {
			stats, ok := history[activity]
			if !ok {
				stats = &ActivityStats{DaysSinceLast: NeverDone}
				history[activity] = stats
			}

			stats.Count++
			if stats.DaysSinceLast == NeverDone || age < stats.DaysSinceLast {
				stats.DaysSinceLast = age
			}
			if age <= 7 {
				stats.Last7Count++
			}
		}
	}

	// Streaks need the per-day presence sets, so compute them in a second
	// pass over consecutive ages starting at yesterday.
	presence := make(map[string]map[int]bool)
	for _, day := range days {
		age := daysBetween(day.Date, target)
		if age < 1 {
			continue
		}
		for _, activity := range day.ByBunk[bunk] {
			if presence[activity] == nil {
				presence[activity] = make(map[int]bool)
			}
			presence[activity][age] = true
		}
	}

	for activity, byAge := range presence {
		streak := 0
		for age := 1; byAge[age]; age++ {
			streak++
		}
		history[activity].Streak = streak
	}

	return history
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
