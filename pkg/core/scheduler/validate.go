package scheduler

import (
	"fmt"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// CellError describes one invariant violation found in a finished grid.
type CellError struct {
	Bunk        string
	Slot        int
	Check       string
	Description string
}

func (e CellError) String() string {
	return fmt.Sprintf("%s[%d] %s: %s", e.Bunk, e.Slot, e.Check, e.Description)
}

// ValidateGrid checks a finished grid against the hard invariants: no
// same-day activity repeats, continuation integrity, resource capacity, and
// full coverage of active slots. Soft violations accepted during fallback
// (logged repeats) show up here too so callers can report them.
func ValidateGrid(c *Context) []CellError {
	var errs []CellError
	errs = append(errs, checkDuplicates(c)...)
	errs = append(errs, checkContinuations(c)...)
	errs = append(errs, checkCapacity(c)...)
	errs = append(errs, checkCoverage(c)...)
	return errs
}

func checkDuplicates(c *Context) []CellError {
	var errs []CellError
	for i := range c.Catalog.Divisions {
		div := &c.Catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			seen := make(map[string]int)
			for slot, entry := range c.Rows[bunk] {
				if entry == nil || entry.IsContinuation() || entry.Kind == model.EntryFixed {
					continue
				}
				if prev, ok := seen[entry.Activity]; ok {
					errs = append(errs, CellError{
						Bunk:        bunk,
						Slot:        slot,
						Check:       "SameDayRepeat",
						Description: fmt.Sprintf("activity %q already placed at slot %d", entry.Activity, prev),
					})
					continue
				}
				seen[entry.Activity] = slot
			}
		}
	}
	return errs
}

func checkContinuations(c *Context) []CellError {
	var errs []CellError
	for bunk, row := range c.Rows {
		for slot, entry := range row {
			if entry == nil || !entry.IsContinuation() {
				continue
			}
			if slot == 0 || row[slot-1] == nil {
				errs = append(errs, CellError{
					Bunk:        bunk,
					Slot:        slot,
					Check:       "Continuation",
					Description: "continuation entry has no preceding entry",
				})
				continue
			}
			prev := row[slot-1]
			if prev.Activity != entry.Activity {
				errs = append(errs, CellError{
					Bunk:        bunk,
					Slot:        slot,
					Check:       "Continuation",
					Description: fmt.Sprintf("continuation of %q trails %q", entry.Activity, prev.Activity),
				})
			}
		}
	}
	return errs
}

func checkCapacity(c *Context) []CellError {
	var errs []CellError
	for slot := range c.Catalog.Slots {
		for i := range c.Catalog.Activities {
			act := &c.Catalog.Activities[i]
			occupants := c.Occupants(slot, act.Key())
			if len(occupants) <= 1 {
				continue
			}

			if len(occupants) > 2 {
				errs = append(errs, CellError{
					Slot:        slot,
					Check:       "Capacity",
					Description: fmt.Sprintf("resource %q hosts %d groups", act.Key(), len(occupants)),
				})
				continue
			}

			if occupants[0].Division != occupants[1].Division {
				errs = append(errs, CellError{
					Slot:        slot,
					Check:       "Capacity",
					Description: fmt.Sprintf("resource %q shared across divisions %q and %q", act.Key(), occupants[0].Division, occupants[1].Division),
				})
				continue
			}

			if !act.Sharable {
				errs = append(errs, CellError{
					Slot:        slot,
					Check:       "Capacity",
					Description: fmt.Sprintf("exclusive resource %q hosts two groups (fallback doubling)", act.Key()),
				})
			}
		}
	}
	return errs
}

func checkCoverage(c *Context) []CellError {
	var errs []CellError
	for i := range c.Catalog.Divisions {
		div := &c.Catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			for _, slot := range c.Rows[bunk].EmptySlots(div.ActiveSlots) {
				errs = append(errs, CellError{
					Bunk:        bunk,
					Slot:        slot,
					Check:       "Coverage",
					Description: "cell is empty",
				})
			}
		}
	}
	return errs
}
