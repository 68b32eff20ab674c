package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/scheduler"
	"github.com/jordanelias/camplan/pkg/db"
)

// ValidateScheduleResult contains the re-validation results for a saved day.
type ValidateScheduleResult struct {
	Date       time.Time
	Entries    int
	CellErrors []scheduler.CellError
}

// ValidateScheduleStore defines the database operations needed for
// re-validating a saved schedule.
type ValidateScheduleStore interface {
	LoadDailyData(ctx context.Context, date time.Time) ([]db.DailyEntry, error)
}

// ValidateSchedule loads a persisted day and checks it against the grid
// invariants.
func ValidateSchedule(
	ctx context.Context,
	database ValidateScheduleStore,
	catalog *model.Catalog,
	logger *zap.Logger,
	date time.Time,
) (*ValidateScheduleResult, error) {
	entries, err := database.LoadDailyData(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no schedule found for %s", date.Format(dateFormat))
	}

	runCtx := scheduler.NewContext(catalog, nil, logger, nil)
	runCtx.RestoreRows(entriesToRows(entries, len(catalog.Slots)))

	cellErrors := scheduler.ValidateGrid(runCtx)
	for _, cellErr := range cellErrors {
		logger.Warn("Grid validation issue", zap.String("issue", cellErr.String()))
	}

	return &ValidateScheduleResult{
		Date:       date,
		Entries:    len(entries),
		CellErrors: cellErrors,
	}, nil
}
