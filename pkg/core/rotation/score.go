package rotation

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// ScoreOptions carries the per-call context for one score evaluation.
type ScoreOptions struct {
	// Division is the scored bunk's division, used for cross-bunk fairness.
	Division string

	// BeforeSlot is the cursor: only entries placed strictly before this
	// slot count as "today" for same-day and variety checks.
	BeforeSlot int

	// TodayByBunk maps bunk name to the activity keys already placed today
	// before the cursor (continuations and fixed blocks excluded).
	TodayByBunk map[string][]string

	// ActiveSlotCount is the number of active slots in the bunk's day, used
	// to scale the general-variety factor.
	ActiveSlotCount int
}

// CalculateRotationScore scores one (bunk, activity) pairing. Lower is
// better; Forbidden means the pairing is illegal in this context.
func (e *Engine) CalculateRotationScore(bunk, activity string, opts ScoreOptions) float64 {
	// Hard rule: no bunk gets the same activity twice in one day.
	if slices.Contains(opts.TodayByBunk[bunk], activity) {
		return Forbidden
	}

	act := e.catalog.ActivityByKey(activity)
	if act == nil {
		return Forbidden
	}

	history := e.BunkHistory(bunk)
	stats := history.Stats(activity)

	// Hard usage cap short-circuits before any soft factor.
	if act.MaxPerBunk > 0 && stats.Count >= act.MaxPerBunk {
		return Forbidden
	}

	score := e.recencyScore(stats)
	score += e.streakScore(stats)
	score += e.frequencyScore(history, stats)
	score += e.varietyScore(bunk, act, opts)
	score += e.distributionScore(bunk, activity, opts.Division)
	score += e.coverageScore(bunk, history, stats)
	score += e.capScore(act, stats)

	return score
}

// recencyScore penalizes recent occurrences with exponential decay and
// rewards never-done activities. Novelty bonuses for rare activities apply
// only when the last occurrence is old enough: a recently-done-but-rare
// activity must stay penalized.
func (e *Engine) recencyScore(stats ActivityStats) float64 {
	w := e.weights

	if stats.Count == 0 || stats.DaysSinceLast == NeverDone {
		return w.NeverDoneBonus
	}

	days := stats.DaysSinceLast
	var score float64
	if days >= w.RecencyResidualDays {
		score = w.RecencyResidual
	} else {
		score = w.YesterdayPenalty * math.Exp(-w.RecencyDecayRate*float64(days-1))
		if score < w.RecencyResidual {
			score = w.RecencyResidual
		}
	}

	if stats.Count <= w.NoveltyMaxCount && days >= w.NoveltyMinDays {
		// Full bonus for a single lifetime occurrence, tapering after.
		score += w.NoveltyBonus * float64(w.NoveltyMaxCount-stats.Count+1) /
			float64(w.NoveltyMaxCount)
	}

	return score
}

// streakScore escalates the yesterday penalty for 2/3/4+ day streaks, and
// adds a smooth trailing-7-day penalty so "frequent but scattered" is
// continuous with "just missed a streak".
func (e *Engine) streakScore(stats ActivityStats) float64 {
	w := e.weights
	score := 0.0

	if stats.DaysSinceLast == 1 && stats.Streak >= 2 {
		var mult float64
		switch {
		case stats.Streak >= 4:
			mult = w.StreakFourPlus
		case stats.Streak == 3:
			mult = w.StreakThree
		default:
			mult = w.StreakTwo
		}
		score += w.YesterdayPenalty * (mult - 1)
	}

	if stats.Last7Count >= 2 {
		score += w.WeeklyPenaltyStep * float64(stats.Last7Count-1)
	}

	return score
}

// frequencyScore compares this activity's count against the bunk's own mean
// count across the whole catalog: above average is penalized increasingly,
// below average rewarded.
func (e *Engine) frequencyScore(history History, stats ActivityStats) float64 {
	counts := make([]float64, 0, len(e.catalog.Activities))
	for i := range e.catalog.Activities {
		counts = append(counts, float64(history.Stats(e.catalog.Activities[i].Key()).Count))
	}
	if len(counts) == 0 {
		return 0
	}

	mean := stat.Mean(counts, nil)
	dev := float64(stats.Count) - mean

	if dev > 0 {
		return e.weights.FreqAbovePenalty * dev
	}
	return e.weights.FreqBelowReward * dev
}

// varietyScore combines the sport/special balance term with a general
// variety reward that is strongest while the day is empty and fades to zero
// as it fills.
func (e *Engine) varietyScore(bunk string, act *model.Activity, opts ScoreOptions) float64 {
	w := e.weights
	today := opts.TodayByBunk[bunk]

	sports, specials := 0, 0
	for _, key := range today {
		done := e.catalog.ActivityByKey(key)
		if done == nil {
			continue
		}
		if done.IsSpecial() {
			specials++
		} else {
			sports++
		}
	}

	score := 0.0
	if act.IsSpecial() && specials < sports {
		score -= w.BalanceReward
	}
	if !act.IsSpecial() && sports < specials {
		score -= w.BalanceReward
	}

	if opts.ActiveSlotCount > 0 {
		fillRatio := float64(len(today)) / float64(opts.ActiveSlotCount)
		if fillRatio > 1 {
			fillRatio = 1
		}
		score -= w.VarietyBase * (1 - fillRatio)
	}

	return score
}

// distributionScore rewards the division's lowest-count bunk for an activity
// and penalizes the highest, scaled by the size of the imbalance, with a
// milder above/below-average adjustment for everyone in between.
func (e *Engine) distributionScore(bunk, activity, division string) float64 {
	div := e.catalog.DivisionByName(division)
	if div == nil || len(div.Bunks) < 2 {
		return 0
	}

	w := e.weights
	counts := make([]float64, len(div.Bunks))
	own := 0.0
	lowest, highest := math.MaxFloat64, -1.0

	for i, b := range div.Bunks {
		c := float64(e.BunkHistory(b).Stats(activity).Count)
		counts[i] = c
		if b == bunk {
			own = c
		}
		if c < lowest {
			lowest = c
		}
		if c > highest {
			highest = c
		}
	}

	imbalance := highest - lowest
	if imbalance == 0 {
		return 0
	}

	switch own {
	case lowest:
		return -w.DistributionSpread * imbalance
	case highest:
		return w.DistributionSpread * imbalance
	}

	mean := stat.Mean(counts, nil)
	return w.DistributionMild * (own - mean)
}

// coverageScore rewards trying a never-attempted activity, scaled down as
// the bunk's coverage of its eligible catalog approaches 100%.
func (e *Engine) coverageScore(bunk string, history History, stats ActivityStats) float64 {
	if stats.Count > 0 {
		return 0
	}

	div := e.catalog.DivisionOfBunk(bunk)
	eligible := 0
	for i := range e.catalog.Activities {
		act := &e.catalog.Activities[i]
		if !act.EligibleForBunk(bunk) {
			continue
		}
		if div != nil && !act.EligibleForDivision(div.Name) {
			continue
		}
		eligible++
	}
	if eligible == 0 {
		return 0
	}

	ratio := float64(history.AttemptedCount()) / float64(eligible)
	if ratio > 1 {
		ratio = 1
	}
	return -e.weights.CoverageBase * (1 - ratio)
}

// capScore applies a graduated penalty as usage approaches a configured hard
// cap. The cap itself is enforced with Forbidden before this runs.
func (e *Engine) capScore(act *model.Activity, stats ActivityStats) float64 {
	if act.MaxPerBunk <= 0 {
		return 0
	}
	ratio := float64(stats.Count) / float64(act.MaxPerBunk)
	return e.weights.CapPenalty * ratio * ratio
}
