package scheduler

import (
	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// placeFixed stamps fixed blocks into the grid before any allocation runs.
// Trips (explicit target bunks or divisions) go first, then global fixed
// activities such as meals. Existing fixed entries are never overwritten.
func (c *Context) placeFixed() {
	trips := make([]model.FixedBlock, 0)
	globals := make([]model.FixedBlock, 0)
	for _, block := range c.Catalog.Fixed {
		if block.Trip {
			trips = append(trips, block)
		} else {
			globals = append(globals, block)
		}
	}

	for _, block := range trips {
		c.stampBlock(block)
	}
	for _, block := range globals {
		c.stampBlock(block)
	}
}

func (c *Context) stampBlock(block model.FixedBlock) {
	placed := 0

	for i := range c.Catalog.Divisions {
		div := &c.Catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			if !block.AppliesToBunk(div.Name, bunk) {
				continue
			}

			for slot := block.StartSlot; slot <= block.EndSlot && slot < len(c.Rows[bunk]); slot++ {
				existing := c.Rows[bunk][slot]
				if existing != nil {
					// A previously stamped fixed entry (a trip) wins over a
					// later global block at the same slot.
					continue
				}

				kind := model.EntryFixed
				entry := &model.Entry{
					Kind:     kind,
					Activity: block.Name,
					Span:     1,
				}
				c.Rows[bunk][slot] = entry
				placed++
			}
		}
	}

	c.Logger.Debug("Stamped fixed block",
		zap.String("block", block.Name),
		zap.Bool("trip", block.Trip),
		zap.Int("cells", placed))
}
