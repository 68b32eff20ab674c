package scheduler

import (
	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/rotation"
)

const (
	// h2hProbability is the chance of attempting a head-to-head match before
	// falling back to a general activity for an open cell.
	h2hProbability = 0.35

	// maxH2HPerDay caps head-to-head games per bunk per day.
	maxH2HPerDay = 2

	// preferredRecencyDays splits candidates: activities last done within
	// this many days are non-preferred and only tried after preferred ones.
	preferredRecencyDays = 3
)

// fillGeneral fills every remaining open cell per (division, bunk, slot).
// Attempt order per cell: probabilistic H2H, preferred general activity,
// forced H2H retry, non-preferred general activity. Cells that resist all
// four are left for the fallback passes.
func (c *Context) fillGeneral() {
	for i := range c.Catalog.Divisions {
		div := &c.Catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			c.fillBunk(div, bunk)
		}
	}
}

func (c *Context) fillBunk(div *model.Division, bunk string) {
	for _, slot := range div.ActiveSlots {
		if !c.SlotFree(bunk, slot) {
			continue
		}

		if c.Rng.Float64() < h2hProbability && c.tryHeadToHead(div, bunk, slot) {
			continue
		}

		preferred, nonPreferred := c.splitCandidates(div, bunk, slot)

		if c.placeFirstFitting(div, bunk, slot, preferred, false) {
			continue
		}
		if c.tryHeadToHead(div, bunk, slot) {
			continue
		}
		c.placeFirstFitting(div, bunk, slot, nonPreferred, false)
	}
}

// splitCandidates ranks the bunk's legal activities and splits them into
// preferred (not done on a recent prior day) and non-preferred, both
// best-score-first.
func (c *Context) splitCandidates(div *model.Division, bunk string, slot int) ([]rotation.RankedActivity, []rotation.RankedActivity) {
	opts := c.scoreOptions(div, len(c.Catalog.Slots))
	ranked := c.Engine.RankedActivities(bunk, opts)
	history := c.Engine.BunkHistory(bunk)

	var preferred, nonPreferred []rotation.RankedActivity
	for _, cand := range ranked {
		stats := history.Stats(cand.Activity)
		if stats.DaysSinceLast == rotation.NeverDone || stats.DaysSinceLast > preferredRecencyDays {
			preferred = append(preferred, cand)
		} else {
			nonPreferred = append(nonPreferred, cand)
		}
	}
	return preferred, nonPreferred
}

// placeFirstFitting places the best-ranked candidate whose span fits at the
// slot. allowDouble relaxes field exclusivity (fallback passes only).
func (c *Context) placeFirstFitting(div *model.Division, bunk string, slot int, candidates []rotation.RankedActivity, allowDouble bool) bool {
	for _, cand := range candidates {
		act := c.Catalog.ActivityByKey(cand.Activity)
		if act == nil {
			continue
		}
		if !c.spanFits(div, bunk, slot, act, allowDouble) {
			continue
		}
		c.placeGeneral(div, bunk, slot, act)
		return true
	}
	return false
}

func (c *Context) placeGeneral(div *model.Division, bunk string, slot int, act *model.Activity) {
	entry := &model.Entry{
		Kind:     model.EntryGeneral,
		Activity: act.Key(),
	}
	if !act.IsSpecial() {
		entry.Sport = c.pickSportFor(bunk, act)
		entry.Field = act.Key()
	}
	c.placeSpan(div, bunk, slot, act, entry)
}

// pickSportFor chooses a sport the field supports that the bunk has not
// played today, falling back to the first listed sport.
func (c *Context) pickSportFor(bunk string, act *model.Activity) string {
	if len(act.Sports) == 0 {
		return ""
	}
	done := c.sportsDoneToday(bunk)
	for _, sport := range act.Sports {
		if !done[sport] {
			return sport
		}
	}
	return act.Sports[0]
}

func (c *Context) sportsDoneToday(bunk string) map[string]bool {
	done := make(map[string]bool)
	for _, entry := range c.Rows[bunk] {
		if entry != nil && entry.Sport != "" {
			done[entry.Sport] = true
		}
	}
	return done
}

// tryHeadToHead books a head-to-head match for the bunk at the slot: a
// same-division opponent not yet played today or on a recent prior day and
// under the per-day game cap, on a field neither side has used today whose
// span fits both sides, playing a sport neither side has done today. The
// pair counts as a single occupant-group on the field.
func (c *Context) tryHeadToHead(div *model.Division, bunk string, slot int) bool {
	return c.tryHeadToHeadRelaxed(div, bunk, slot, false)
}

func (c *Context) tryHeadToHeadRelaxed(div *model.Division, bunk string, slot int, relaxCaps bool) bool {
	if !relaxCaps && c.h2hGames[bunk] >= maxH2HPerDay {
		return false
	}

	playedToday := c.opponentsPlayedToday(bunk)

	for _, opponent := range div.Bunks {
		if opponent == bunk || playedToday[opponent] {
			continue
		}
		if !relaxCaps && c.recentOpponents[bunk][opponent] {
			continue
		}
		if !relaxCaps && c.h2hGames[opponent] >= maxH2HPerDay {
			continue
		}
		if !c.SlotFree(opponent, slot) {
			continue
		}

		if c.placeHeadToHead(div, bunk, opponent, slot, relaxCaps) {
			return true
		}
	}
	return false
}

// placeHeadToHead finds a field and sport for the pair. Fields either side
// has already used today are skipped; only the forced fallback may repeat
// one, with a warning, when nothing else fits.
func (c *Context) placeHeadToHead(div *model.Division, bunk, opponent string, slot int, allowRepeat bool) bool {
	bunkDone := c.sportsDoneToday(bunk)
	oppDone := c.sportsDoneToday(opponent)
	bunkToday := c.todaySet(bunk)
	oppToday := c.todaySet(opponent)

	maxPass := 0
	if allowRepeat {
		maxPass = 1
	}

	for pass := 0; pass <= maxPass; pass++ {
		for i := range c.Catalog.Activities {
			act := &c.Catalog.Activities[i]
			if act.IsSpecial() || len(act.Sports) == 0 {
				continue
			}
			if !act.EligibleForDivision(div.Name) ||
				!act.EligibleForBunk(bunk) || !act.EligibleForBunk(opponent) {
				continue
			}
			repeat := bunkToday[act.Key()] || oppToday[act.Key()]
			if pass == 0 && repeat {
				continue
			}
			if !c.h2hSpanFits(div, bunk, opponent, slot, act) {
				continue
			}

			sport := ""
			for _, s := range act.Sports {
				if !bunkDone[s] && !oppDone[s] {
					sport = s
					break
				}
			}
			if sport == "" {
				continue
			}

			if repeat {
				c.Warnf("head-to-head %s vs %s repeats %s in slot %d: no other field fit",
					bunk, opponent, act.Key(), slot)
			}
			c.writeHeadToHead(div, bunk, opponent, slot, act, sport)
			return true
		}
	}
	return false
}

// h2hSpanFits checks the span for both sides at once. The field claim is
// shared, so capacity is checked for one additional occupant-group.
func (c *Context) h2hSpanFits(div *model.Division, bunk, opponent string, slot int, act *model.Activity) bool {
	for offset := 0; offset < act.Span(); offset++ {
		s := slot + offset
		if !div.IsActiveSlot(s) {
			return false
		}
		if !c.SlotFree(bunk, s) || !c.SlotFree(opponent, s) {
			return false
		}
		if act.IsBlocked(s) {
			return false
		}
		if c.slotFieldClaimedByLeague(s, act.Key()) {
			return false
		}
		if !c.resourceCapacityOK(s, act, div.Name, false) {
			return false
		}
	}
	return true
}

func (c *Context) writeHeadToHead(div *model.Division, bunk, opponent string, slot int, act *model.Activity, sport string) {
	span := act.Span()

	home := &model.Entry{
		Kind:     model.EntryHeadToHead,
		Activity: act.Key(),
		Sport:    sport,
		Field:    act.Key(),
		Opponent: opponent,
		Span:     span,
	}
	away := &model.Entry{
		Kind:     model.EntryHeadToHead,
		Activity: act.Key(),
		Sport:    sport,
		Field:    act.Key(),
		Opponent: bunk,
		Span:     span,
	}

	c.Rows[bunk][slot] = home
	c.Rows[opponent][slot] = away
	// One claim for the pair: the match is a single occupant-group.
	c.claimResource(slot, act.Key(), Occupant{Bunk: bunk, Division: div.Name})

	for offset := 1; offset < span; offset++ {
		cont := func() *model.Entry {
			return &model.Entry{Kind: model.EntryContinuation, Activity: act.Key()}
		}
		c.Rows[bunk][slot+offset] = cont()
		c.Rows[opponent][slot+offset] = cont()
		c.claimResource(slot+offset, act.Key(), Occupant{Bunk: bunk, Division: div.Name})
	}

	c.h2hGames[bunk]++
	c.h2hGames[opponent]++
}

// opponentsPlayedToday returns the opponents this bunk already faced today.
func (c *Context) opponentsPlayedToday(bunk string) map[string]bool {
	played := make(map[string]bool)
	for _, entry := range c.Rows[bunk] {
		if entry != nil && entry.Kind == model.EntryHeadToHead && entry.Opponent != "" {
			played[entry.Opponent] = true
		}
	}
	return played
}
