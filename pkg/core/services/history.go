package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/rotation"
	"github.com/jordanelias/camplan/pkg/db"
)

// BunkHistoryLine is one activity's usage stats for the report.
type BunkHistoryLine struct {
	Activity      string
	Count         int
	DaysSinceLast int
	Last7Count    int
	Streak        int
}

// BunkHistoryResult is the rotation history report for one bunk.
type BunkHistoryResult struct {
	Bunk        string
	Division    string
	Date        time.Time
	HistoryDays int
	Lines       []BunkHistoryLine
}

// BunkHistoryStore defines the database operations needed for the history
// report.
type BunkHistoryStore interface {
	LoadPreviousDailyData(ctx context.Context, date time.Time, days int) ([]db.DailyEntry, error)
}

// BunkHistory reports one bunk's rotation history over the scanned window:
// every catalog activity the bunk has done, ordered most-used first, then
// the never-done remainder.
func BunkHistory(
	ctx context.Context,
	database BunkHistoryStore,
	catalog *model.Catalog,
	logger *zap.Logger,
	date time.Time,
	historyDays int,
	bunk string,
) (*BunkHistoryResult, error) {
	division := catalog.DivisionOfBunk(bunk)
	if division == nil {
		return nil, fmt.Errorf("unknown bunk %q", bunk)
	}

	engine := rotation.NewEngine(rotation.Config{
		Catalog: catalog,
		LoadPrevious: func(target time.Time, days int) ([]rotation.DaySchedule, error) {
			entries, err := database.LoadPreviousDailyData(ctx, target, days)
			if err != nil {
				return nil, fmt.Errorf("failed to load prior-day schedules: %w", err)
			}
			return daySchedulesFromEntries(entries)
		},
		Date:        date,
		HistoryDays: historyDays,
		Logger:      logger,
	})

	history := engine.BunkHistory(bunk)

	result := &BunkHistoryResult{
		Bunk:        bunk,
		Division:    division.Name,
		Date:        date,
		HistoryDays: historyDays,
	}
	if result.HistoryDays <= 0 {
		result.HistoryDays = rotation.DefaultHistoryDays
	}

	for i := range catalog.Activities {
		act := &catalog.Activities[i]
		if !act.EligibleForDivision(division.Name) || !act.EligibleForBunk(bunk) {
			continue
		}
		stats := history.Stats(act.Key())
		result.Lines = append(result.Lines, BunkHistoryLine{
			Activity:      act.Key(),
			Count:         stats.Count,
			DaysSinceLast: stats.DaysSinceLast,
			Last7Count:    stats.Last7Count,
			Streak:        stats.Streak,
		})
	}

	sort.SliceStable(result.Lines, func(i, j int) bool {
		if result.Lines[i].Count != result.Lines[j].Count {
			return result.Lines[i].Count > result.Lines[j].Count
		}
		return result.Lines[i].Activity < result.Lines[j].Activity
	})

	return result, nil
}
