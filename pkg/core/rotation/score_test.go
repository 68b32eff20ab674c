package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineWithDays builds an engine over the test catalog whose history is the
// given fixed prior days.
func engineWithDays(t *testing.T, days []DaySchedule) *Engine {
	t.Helper()
	return NewEngine(Config{
		Catalog: testCatalog(),
		Date:    day(t, "2025-07-10"),
		LoadPrevious: func(time.Time, int) ([]DaySchedule, error) {
			return days, nil
		},
	})
}

// b1Days builds prior days where B1 did the activity on each of the given
// ages (1 = yesterday).
func b1Days(t *testing.T, activity string, ages ...int) []DaySchedule {
	t.Helper()
	target := day(t, "2025-07-10")
	var days []DaySchedule
	for _, age := range ages {
		days = append(days, DaySchedule{
			Date:   target.AddDate(0, 0, -age),
			ByBunk: map[string][]string{"B1": {activity}},
		})
	}
	return days
}

func emptyOpts() ScoreOptions {
	return ScoreOptions{
		Division:        "Juniors",
		BeforeSlot:      0,
		TodayByBunk:     map[string][]string{},
		ActiveSlotCount: 2,
	}
}

func TestCalculateRotationScore_SameDayIsForbidden(t *testing.T) {
	engine := engineWithDays(t, nil)
	opts := emptyOpts()
	opts.TodayByBunk = map[string][]string{"B1": {"Pool"}}

	assert.True(t, IsForbidden(engine.CalculateRotationScore("B1", "Pool", opts)))
	assert.False(t, IsForbidden(engine.CalculateRotationScore("B1", "Court", opts)))
	assert.False(t, IsForbidden(engine.CalculateRotationScore("B2", "Pool", opts)))
}

func TestCalculateRotationScore_UnknownActivityIsForbidden(t *testing.T) {
	engine := engineWithDays(t, nil)
	assert.True(t, IsForbidden(engine.CalculateRotationScore("B1", "Trampoline", emptyOpts())))
}

func TestCalculateRotationScore_HardCap(t *testing.T) {
	// Ropes has MaxPerBunk 2.
	engine := engineWithDays(t, b1Days(t, "Ropes", 9, 11))
	assert.True(t, IsForbidden(engine.CalculateRotationScore("B1", "Ropes", emptyOpts())))

	engine = engineWithDays(t, b1Days(t, "Ropes", 9))
	assert.False(t, IsForbidden(engine.CalculateRotationScore("B1", "Ropes", emptyOpts())))
}

func TestCalculateRotationScore_NeverDoneTotal(t *testing.T) {
	engine := engineWithDays(t, nil)

	// Never-done bonus, full variety reward on an empty day, full coverage
	// reward: -80 - 25 - 40.
	score := engine.CalculateRotationScore("B1", "Pool", emptyOpts())
	assert.InDelta(t, -145.0, score, 1e-9)
}

func TestCalculateRotationScore_RecentBeatsStale(t *testing.T) {
	yesterday := engineWithDays(t, b1Days(t, "Pool", 1))
	older := engineWithDays(t, b1Days(t, "Pool", 5))

	scoreYesterday := yesterday.CalculateRotationScore("B1", "Pool", emptyOpts())
	scoreOlder := older.CalculateRotationScore("B1", "Pool", emptyOpts())

	assert.Greater(t, scoreYesterday, scoreOlder)
}

func TestCalculateRotationScore_NoveltyGatedOnRecency(t *testing.T) {
	// A rare activity done two days ago must stay penalized: the novelty
	// bonus only applies once the last occurrence is at least four days old.
	recentRare := engineWithDays(t, b1Days(t, "Pool", 2))
	staleRare := engineWithDays(t, b1Days(t, "Pool", 5))

	scoreRecent := recentRare.CalculateRotationScore("B1", "Pool", emptyOpts())
	scoreStale := staleRare.CalculateRotationScore("B1", "Pool", emptyOpts())

	require.False(t, IsForbidden(scoreRecent))
	assert.Greater(t, scoreRecent, scoreStale)
	assert.Positive(t, scoreRecent-scoreStale, "recency penalty must dominate")
}

func TestCalculateRotationScore_StreakEscalation(t *testing.T) {
	// Same count, same trailing-week usage; only the consecutive run differs.
	streaked := engineWithDays(t, b1Days(t, "Pool", 1, 2, 3))
	scattered := engineWithDays(t, b1Days(t, "Pool", 1, 5, 7))

	scoreStreak := streaked.CalculateRotationScore("B1", "Pool", emptyOpts())
	scoreScattered := scattered.CalculateRotationScore("B1", "Pool", emptyOpts())

	// Three-day streak scales the yesterday penalty by 2.25.
	assert.InDelta(t, 120*(2.25-1), scoreStreak-scoreScattered, 1e-9)
}

func TestCalculateRotationScore_CapApproachPenalized(t *testing.T) {
	// Identical single-occurrence histories; Ropes carries a cap of 2, Pool
	// none, so Ropes picks up the graduated cap penalty.
	ropes := engineWithDays(t, b1Days(t, "Ropes", 9))
	pool := engineWithDays(t, b1Days(t, "Pool", 9))

	scoreRopes := ropes.CalculateRotationScore("B1", "Ropes", emptyOpts())
	scorePool := pool.CalculateRotationScore("B1", "Pool", emptyOpts())

	assert.InDelta(t, 45*0.25, scoreRopes-scorePool, 1e-9)
}

func TestCalculateRotationScore_DistributionFavorsLowestBunk(t *testing.T) {
	// B2 has had Pool three times, B1 never within the counted window aside
	// from once long ago: B1 should be rewarded relative to B2.
	target := day(t, "2025-07-10")
	days := []DaySchedule{
		{Date: target.AddDate(0, 0, -9), ByBunk: map[string][]string{"B1": {"Pool"}, "B2": {"Pool"}}},
		{Date: target.AddDate(0, 0, -11), ByBunk: map[string][]string{"B2": {"Pool"}}},
		{Date: target.AddDate(0, 0, -13), ByBunk: map[string][]string{"B2": {"Pool"}}},
	}
	engine := engineWithDays(t, days)

	scoreB1 := engine.CalculateRotationScore("B1", "Pool", emptyOpts())
	scoreB2 := engine.CalculateRotationScore("B2", "Pool", emptyOpts())

	assert.Less(t, scoreB1, scoreB2)
}

func TestCalculateRotationScore_VarietyFadesAsDayFills(t *testing.T) {
	engine := engineWithDays(t, b1Days(t, "Pool", 6))

	emptyDay := emptyOpts()

	fullDay := emptyOpts()
	fullDay.TodayByBunk = map[string][]string{"B1": {"Court", "Art"}}
	fullDay.BeforeSlot = 2

	scoreEmpty := engine.CalculateRotationScore("B1", "Pool", emptyDay)
	scoreFull := engine.CalculateRotationScore("B1", "Pool", fullDay)

	// The general variety reward shrinks as the day fills; it never flips
	// into a penalty, so the empty-day score is at most the full-day one
	// plus the full variety base.
	assert.Less(t, scoreEmpty, scoreFull)
}
