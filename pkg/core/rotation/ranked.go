package rotation

import (
	"sort"
)

// RankedActivity is one scored candidate in a ranking.
type RankedActivity struct {
	Activity string
	Score    float64
}

// RankedActivities scores every catalog activity the bunk may legally use in
// this context and returns them best-first. Forbidden pairings are dropped.
// Candidates within the jitter band of the best score receive small bounded
// random jitter so repeated runs do not produce deterministic staleness.
func (e *Engine) RankedActivities(bunk string, opts ScoreOptions) []RankedActivity {
	div := e.catalog.DivisionOfBunk(bunk)

	ranked := make([]RankedActivity, 0, len(e.catalog.Activities))
	for i := range e.catalog.Activities {
		act := &e.catalog.Activities[i]
		if !act.EligibleForBunk(bunk) {
			continue
		}
		if div != nil && !act.EligibleForDivision(div.Name) {
			continue
		}

		score := e.CalculateRotationScore(bunk, act.Key(), opts)
		if IsForbidden(score) {
			continue
		}
		ranked = append(ranked, RankedActivity{Activity: act.Key(), Score: score})
	}

	if len(ranked) == 0 {
		return ranked
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })

	best := ranked[0].Score
	jittered := false
	for i := range ranked {
		if ranked[i].Score-best <= e.weights.JitterBand {
			ranked[i].Score += e.rng.Float64() * e.weights.JitterAmplitude
			jittered = true
		}
	}
	if jittered {
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
	}

	return ranked
}
