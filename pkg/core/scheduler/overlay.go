package scheduler

import "github.com/jordanelias/camplan/pkg/core/model"

// overlay stages trial placements on top of a Context without mutating it.
// A league booking is assembled cell by cell on the overlay and committed
// only once every game has a field; abandoning the overlay costs nothing.
type overlay struct {
	ctx *Context

	// entries stages row writes: bunk -> slot -> entry.
	entries map[string]map[int]*model.Entry

	// claims stages resource claims: slot -> resource -> occupants.
	claims map[int]map[string][]Occupant
}

func newOverlay(ctx *Context) *overlay {
	return &overlay{
		ctx:     ctx,
		entries: make(map[string]map[int]*model.Entry),
		claims:  make(map[int]map[string][]Occupant),
	}
}

// stage records an entry and its resource claim on the overlay.
func (o *overlay) stage(bunk string, slot int, entry *model.Entry, resource string, occ Occupant) {
	if o.entries[bunk] == nil {
		o.entries[bunk] = make(map[int]*model.Entry)
	}
	o.entries[bunk][slot] = entry

	if resource == "" {
		return
	}
	if o.claims[slot] == nil {
		o.claims[slot] = make(map[string][]Occupant)
	}
	o.claims[slot][resource] = append(o.claims[slot][resource], occ)
}

// commit applies every staged write to the base context.
func (o *overlay) commit() {
	for bunk, slots := range o.entries {
		for slot, entry := range slots {
			o.ctx.Rows[bunk][slot] = entry
		}
	}
	for slot, resources := range o.claims {
		for resource, occupants := range resources {
			for _, occ := range occupants {
				o.ctx.claimResource(slot, resource, occ)
			}
		}
	}
}
