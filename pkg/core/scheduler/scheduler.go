package scheduler

import (
	"fmt"

	"go.uber.org/zap"
)

// AssignFieldsToBunks runs one full generation pass over the context's grid:
//
//	fixed blocks → specialty leagues → regular leagues (with eviction-based
//	rescue) → general & head-to-head fill → fallback passes.
//
// The run is synchronous and owns the context exclusively. Configuration
// errors abort before anything is stamped; placement infeasibility never
// aborts — it degrades through the fallback passes and surfaces as
// warnings on the context.
func AssignFieldsToBunks(c *Context) error {
	if len(c.Catalog.Slots) == 0 {
		return fmt.Errorf("no time slots configured, grid untouched")
	}
	if len(c.Catalog.Activities) == 0 {
		return fmt.Errorf("empty activity catalog, grid untouched")
	}
	if len(c.Rows) == 0 {
		return fmt.Errorf("no bunks to schedule, grid untouched")
	}

	c.Logger.Info("Starting schedule generation",
		zap.Int("slots", len(c.Catalog.Slots)),
		zap.Int("divisions", len(c.Catalog.Divisions)),
		zap.Int("bunks", len(c.Rows)),
		zap.Int("activities", len(c.Catalog.Activities)),
		zap.Int("leagues", len(c.Catalog.Leagues)))

	c.placeFixed()
	c.bookSpecialtyLeagues()

	failed := c.bookLeagues()
	if len(failed) > 0 {
		c.Logger.Info("Retrying unplaced leagues with eviction",
			zap.Int("count", len(failed)))
		c.rescueLeagues(failed)
	}

	c.fillGeneral()
	c.runFallbacks()

	c.Logger.Info("Schedule generation complete",
		zap.Int("empty_cells", c.countEmptyCells()),
		zap.Int("skipped_leagues", len(c.SkippedLeagues)),
		zap.Int("warnings", len(c.Warnings)))

	return nil
}
