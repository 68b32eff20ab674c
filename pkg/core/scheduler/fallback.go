package scheduler

import (
	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// runFallbacks absorbs every still-empty cell, progressively relaxing soft
// constraints. Pass order: forced H2H with caps relaxed, aggressive field
// doubling, fallback special assignment, absolute last resort. Hard capacity
// limits are never violated; a same-day repeat is accepted only by the final
// pass, with a warning.
func (c *Context) runFallbacks() {
	passes := []struct {
		name string
		fill func(div *model.Division, bunk string, slot int) bool
	}{
		{"forced-h2h", c.fallbackForcedH2H},
		{"field-doubling", c.fallbackFieldDoubling},
		{"fallback-specials", c.fallbackSpecials},
		{"last-resort", c.fallbackLastResort},
	}

	for _, pass := range passes {
		remaining := c.forEachEmptyCell(pass.fill)
		c.Logger.Debug("Fallback pass complete",
			zap.String("pass", pass.name),
			zap.Int("remaining_empty", remaining))
		if remaining == 0 {
			return
		}
	}

	if remaining := c.countEmptyCells(); remaining > 0 {
		c.Warnf("%d cells remain empty after all fallback passes", remaining)
	}
}

func (c *Context) forEachEmptyCell(fill func(div *model.Division, bunk string, slot int) bool) int {
	remaining := 0
	for i := range c.Catalog.Divisions {
		div := &c.Catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			for _, slot := range div.ActiveSlots {
				if !c.SlotFree(bunk, slot) {
					continue
				}
				if !fill(div, bunk, slot) {
					remaining++
				}
			}
		}
	}
	return remaining
}

func (c *Context) countEmptyCells() int {
	empty := 0
	for i := range c.Catalog.Divisions {
		div := &c.Catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			empty += len(c.Rows[bunk].EmptySlots(div.ActiveSlots))
		}
	}
	return empty
}

// fallbackForcedH2H retries head-to-head with the per-day game cap relaxed.
func (c *Context) fallbackForcedH2H(div *model.Division, bunk string, slot int) bool {
	return c.tryHeadToHeadRelaxed(div, bunk, slot, true)
}

// fallbackFieldDoubling retries the ranked general fill while allowing a
// second same-division group on normally-exclusive fields.
func (c *Context) fallbackFieldDoubling(div *model.Division, bunk string, slot int) bool {
	preferred, nonPreferred := c.splitCandidates(div, bunk, slot)
	if c.placeFirstFitting(div, bunk, slot, preferred, true) {
		return true
	}
	return c.placeFirstFitting(div, bunk, slot, nonPreferred, true)
}

// fallbackSpecials assigns any special activity that fits, ignoring rotation
// scores but still refusing same-day repeats.
func (c *Context) fallbackSpecials(div *model.Division, bunk string, slot int) bool {
	today := c.todaySet(bunk)

	for i := range c.Catalog.Activities {
		act := &c.Catalog.Activities[i]
		if !act.IsSpecial() {
			continue
		}
		if !act.EligibleForDivision(div.Name) || !act.EligibleForBunk(bunk) {
			continue
		}
		if today[act.Key()] {
			continue
		}
		if !c.spanFits(div, bunk, slot, act, true) {
			continue
		}
		c.placeGeneral(div, bunk, slot, act)
		return true
	}
	return false
}

// fallbackLastResort fills the cell with anything that respects hard
// capacity, accepting a same-day repeat if truly unavoidable.
func (c *Context) fallbackLastResort(div *model.Division, bunk string, slot int) bool {
	today := c.todaySet(bunk)

	// First try activities the bunk has not done today.
	for repeatsAllowed := 0; repeatsAllowed <= 1; repeatsAllowed++ {
		for i := range c.Catalog.Activities {
			act := &c.Catalog.Activities[i]
			if !act.EligibleForDivision(div.Name) || !act.EligibleForBunk(bunk) {
				continue
			}
			if repeatsAllowed == 0 && today[act.Key()] {
				continue
			}
			if !c.spanFits(div, bunk, slot, act, true) {
				continue
			}
			if repeatsAllowed == 1 && today[act.Key()] {
				c.Warnf("bunk %s repeats %s in slot %d: no other option fit", bunk, act.Key(), slot)
			}
			c.placeGeneral(div, bunk, slot, act)
			return true
		}
	}
	return false
}

func (c *Context) todaySet(bunk string) map[string]bool {
	set := make(map[string]bool)
	for _, key := range c.Rows[bunk].ActivitiesBefore(len(c.Rows[bunk])) {
		set[key] = true
	}
	return set
}
