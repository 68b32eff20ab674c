package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jordanelias/camplan/internal/config"
	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/db"
)

// SchedulePublisher is the sheets surface the publish service needs.
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID, tab string, date time.Time, catalog *model.Catalog, rows map[string]model.ScheduleRow) error
}

// PublishScheduleStore defines the database operations needed for publishing.
type PublishScheduleStore interface {
	LoadDailyData(ctx context.Context, date time.Time) ([]db.DailyEntry, error)
}

// PublishScheduleResult contains the publish results.
type PublishScheduleResult struct {
	Date    time.Time
	Tab     string
	Entries int
}

// PublishSchedule loads a persisted day's grid and writes it to the
// configured Google Sheet.
func PublishSchedule(
	ctx context.Context,
	database PublishScheduleStore,
	publisher SchedulePublisher,
	catalog *model.Catalog,
	cfg *config.Config,
	logger *zap.Logger,
	date time.Time,
) (*PublishScheduleResult, error) {
	if cfg.ScheduleSheetID == "" {
		return nil, fmt.Errorf("no schedule sheet configured, set scheduleSheetID in config")
	}

	entries, err := database.LoadDailyData(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no schedule found for %s, generate one first", date.Format(dateFormat))
	}

	rows := entriesToRows(entries, len(catalog.Slots))

	tab := cfg.ScheduleTab
	if tab == "" {
		tab = date.Format(dateFormat)
	}

	logger.Debug("Publishing schedule",
		zap.String("date", date.Format(dateFormat)),
		zap.String("tab", tab),
		zap.Int("entries", len(entries)))

	if err := publisher.PublishSchedule(cfg.ScheduleSheetID, tab, date, catalog, rows); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	logger.Info("Schedule published",
		zap.String("tab", tab),
		zap.Int("entries", len(entries)))

	return &PublishScheduleResult{Date: date, Tab: tab, Entries: len(entries)}, nil
}
