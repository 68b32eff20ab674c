package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return parsed
}

func TestBuildHistory_CountsAndRecency(t *testing.T) {
	target := day(t, "2025-07-10")
	days := []DaySchedule{
		{Date: day(t, "2025-07-09"), ByBunk: map[string][]string{"B1": {"Pool", "Court"}}},
		{Date: day(t, "2025-07-07"), ByBunk: map[string][]string{"B1": {"Pool"}}},
		{Date: day(t, "2025-07-01"), ByBunk: map[string][]string{"B1": {"Pool"}, "B2": {"Court"}}},
	}

	history := buildHistory(target, days, "B1")

	pool := history.Stats("Pool")
	assert.Equal(t, 3, pool.Count)
	assert.Equal(t, 1, pool.DaysSinceLast)
	assert.Equal(t, 2, pool.Last7Count, "occurrence 9 days old is outside the trailing week")

	court := history.Stats("Court")
	assert.Equal(t, 1, court.Count)
	assert.Equal(t, 1, court.DaysSinceLast)

	// B2's entries must not leak into B1's history.
	assert.Equal(t, NeverDone, buildHistory(target, days, "B2").Stats("Pool").DaysSinceLast)
}

func TestBuildHistory_Streaks(t *testing.T) {
	target := day(t, "2025-07-10")

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{
			name:  "three consecutive days ending yesterday",
			dates: []string{"2025-07-09", "2025-07-08", "2025-07-07"},
			want:  3,
		},
		{
			name:  "gap breaks the streak",
			dates: []string{"2025-07-09", "2025-07-07"},
			want:  1,
		},
		{
			name:  "run not ending yesterday is no streak",
			dates: []string{"2025-07-07", "2025-07-06"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var days []DaySchedule
			for _, d := range tt.dates {
				days = append(days, DaySchedule{
					Date:   day(t, d),
					ByBunk: map[string][]string{"B1": {"Pool"}},
				})
			}

			history := buildHistory(target, days, "B1")
			assert.Equal(t, tt.want, history.Stats("Pool").Streak)
		})
	}
}

func TestBuildHistory_IgnoresFutureAndSameDay(t *testing.T) {
	target := day(t, "2025-07-10")
	days := []DaySchedule{
		{Date: day(t, "2025-07-10"), ByBunk: map[string][]string{"B1": {"Pool"}}},
		{Date: day(t, "2025-07-11"), ByBunk: map[string][]string{"B1": {"Pool"}}},
	}

	history := buildHistory(target, days, "B1")
	assert.Equal(t, 0, history.Stats("Pool").Count)
}

func TestHistoryStats_DefaultsToNeverDone(t *testing.T) {
	history := History{}
	stats := history.Stats("anything")
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, NeverDone, stats.DaysSinceLast)
}

func TestHistoryAttemptedCount(t *testing.T) {
	history := History{
		"Pool":  &ActivityStats{Count: 3},
		"Court": &ActivityStats{Count: 1},
		"Art":   &ActivityStats{Count: 0},
	}
	assert.Equal(t, 2, history.AttemptedCount())
}
