package rotation

// Weights controls the relative strength of every scoring factor. Lower
// total scores are more desirable, so penalties are positive and rewards
// negative.
type Weights struct {
	// YesterdayPenalty is the recency penalty for an activity done one day
	// ago. Older occurrences decay exponentially from this value.
	YesterdayPenalty float64

	// RecencyDecayRate is the exponential decay rate per day beyond
	// yesterday.
	RecencyDecayRate float64

	// RecencyResidual is the flat penalty once an occurrence is at least
	// RecencyResidualDays old.
	RecencyResidual     float64
	RecencyResidualDays int

	// NeverDoneBonus rewards an activity the bunk has never been given.
	NeverDoneBonus float64

	// NoveltyBonus rewards very-low lifetime counts, but only when the last
	// occurrence is at least NoveltyMinDays old.
	NoveltyBonus    float64
	NoveltyMinDays  int
	NoveltyMaxCount int

	// Streak multipliers scale the yesterday penalty when the activity ran
	// on 2, 3, or 4+ immediately preceding consecutive days.
	StreakTwo      float64
	StreakThree    float64
	StreakFourPlus float64

	// WeeklyPenaltyStep is added per trailing-7-day occurrence beyond the
	// first, so scattered-but-frequent activities are penalized smoothly.
	WeeklyPenaltyStep float64

	// FreqAbovePenalty and FreqBelowReward scale the deviation of this
	// activity's count from the bunk's own mean count.
	FreqAbovePenalty float64
	FreqBelowReward  float64

	// BalanceReward favors the activity type (sport vs special) that is
	// under-represented in today's row.
	BalanceReward float64

	// VarietyBase is the general-variety reward at the start of an empty
	// day; it scales down linearly as the day fills and never inverts.
	VarietyBase float64

	// DistributionSpread scales the cross-bunk reward/penalty for the
	// division's lowest/highest-count bunk, per unit of imbalance.
	// DistributionMild scales the above/below-division-average adjustment
	// for everyone else.
	DistributionSpread float64
	DistributionMild   float64

	// CoverageBase rewards a never-attempted activity, scaled down as the
	// bunk's overall coverage ratio approaches one.
	CoverageBase float64

	// CapPenalty is the maximum graduated penalty as usage approaches a
	// configured hard cap.
	CapPenalty float64

	// JitterBand is the score distance from the best candidate within which
	// ranked results receive random jitter; JitterAmplitude bounds the
	// jitter itself.
	JitterBand      float64
	JitterAmplitude float64
}

// DefaultWeights returns the tuned factor weights.
func DefaultWeights() Weights {
	return Weights{
		YesterdayPenalty:    120,
		RecencyDecayRate:    0.55,
		RecencyResidual:     2,
		RecencyResidualDays: 8,

		NeverDoneBonus:  -80,
		NoveltyBonus:    -25,
		NoveltyMinDays:  4,
		NoveltyMaxCount: 2,

		StreakTwo:      1.5,
		StreakThree:    2.25,
		StreakFourPlus: 3.0,

		WeeklyPenaltyStep: 18,

		FreqAbovePenalty: 12,
		FreqBelowReward:  8,

		BalanceReward: 10,
		VarietyBase:   25,

		DistributionSpread: 6,
		DistributionMild:   3,

		CoverageBase: 40,
		CapPenalty:   45,

		JitterBand:      5,
		JitterAmplitude: 2,
	}
}
