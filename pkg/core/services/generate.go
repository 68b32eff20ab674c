package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jordanelias/camplan/internal/config"
	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/rotation"
	"github.com/jordanelias/camplan/pkg/core/scheduler"
	"github.com/jordanelias/camplan/pkg/db"
)

// leagueHistoryDays is how far back persisted league games are replayed when
// seeding the sport rotation.
const leagueHistoryDays = 30

// recentOpponentDays is how far back head-to-head pairings are held against
// an immediate rematch.
const recentOpponentDays = 3

// GenerateScheduleResult contains the generation results.
type GenerateScheduleResult struct {
	Date           time.Time
	Rows           map[string]model.ScheduleRow
	LeagueGames    map[string][]model.Game
	SkippedLeagues []string
	Warnings       []string
	CellErrors     []scheduler.CellError
	EmptyCells     int
	Saved          bool
}

// GenerateScheduleStore defines the database operations needed to generate a
// day's schedule.
type GenerateScheduleStore interface {
	LoadPreviousDailyData(ctx context.Context, date time.Time, days int) ([]db.DailyEntry, error)
	SaveCurrentDailyData(ctx context.Context, date time.Time, entries []db.DailyEntry) error
	LoadLeagueHistory(ctx context.Context, since time.Time) ([]db.LeagueGame, error)
	SaveLeagueGames(ctx context.Context, games []db.LeagueGame) error
}

// GenerateSchedule builds one day's full activity grid and persists it.
// If dryRun is true, nothing is saved. The seed drives all tie-breaking
// randomness, so two runs with the same seed and history produce the same
// grid.
func GenerateSchedule(
	ctx context.Context,
	database GenerateScheduleStore,
	catalog *model.Catalog,
	cfg *config.Config,
	logger *zap.Logger,
	date time.Time,
	seed int64,
	dryRun bool,
) (*GenerateScheduleResult, error) {
	logger.Debug("Starting generateSchedule",
		zap.String("date", date.Format(dateFormat)),
		zap.Int64("seed", seed),
		zap.Bool("dry_run", dryRun))

	rng := rand.New(rand.NewSource(seed))

	loadPrevious := func(target time.Time, days int) ([]rotation.DaySchedule, error) {
		entries, err := database.LoadPreviousDailyData(ctx, target, days)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior-day schedules: %w", err)
		}
		return daySchedulesFromEntries(entries)
	}

	engine := rotation.NewEngine(rotation.Config{
		Catalog:      catalog,
		LoadPrevious: loadPrevious,
		Date:         date,
		HistoryDays:  cfg.HistoryDays,
		Rand:         rng,
		Logger:       logger,
	})

	runCtx := scheduler.NewContext(catalog, engine, logger, rng)

	recent, err := database.LoadPreviousDailyData(ctx, date, recentOpponentDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent head-to-head history: %w", err)
	}
	runCtx.SeedRecentOpponents(recentOpponentPairs(recent))

	since := date.AddDate(0, 0, -leagueHistoryDays)
	games, err := database.LoadLeagueHistory(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load league history: %w", err)
	}
	runCtx.LeagueHistories = leagueHistoriesFromGames(games)
	logger.Debug("Loaded league history",
		zap.Int("games", len(games)),
		zap.Int("leagues", len(runCtx.LeagueHistories)))

	if err := scheduler.AssignFieldsToBunks(runCtx); err != nil {
		return nil, err
	}

	cellErrors := scheduler.ValidateGrid(runCtx)
	for _, cellErr := range cellErrors {
		logger.Warn("Grid validation issue", zap.String("issue", cellErr.String()))
	}

	result := &GenerateScheduleResult{
		Date:           date,
		Rows:           runCtx.Rows,
		LeagueGames:    runCtx.LeagueGames,
		SkippedLeagues: runCtx.SkippedLeagues,
		Warnings:       runCtx.Warnings,
		CellErrors:     cellErrors,
		EmptyCells:     countEmpty(catalog, runCtx.Rows),
	}

	if dryRun {
		logger.Info("Dry run, schedule not saved")
		return result, nil
	}

	entries := rowsToEntries(date, runCtx.Rows)
	for i := range entries {
		entries[i].ID = uuid.NewString()
	}
	if err := database.SaveCurrentDailyData(ctx, date, entries); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	var gameRows []db.LeagueGame
	for league, leagueGames := range runCtx.LeagueGames {
		for _, g := range leagueGames {
			gameRows = append(gameRows, db.LeagueGame{
				ID:     uuid.NewString(),
				Date:   date.Format(dateFormat),
				League: league,
				Home:   g.Home,
				Away:   g.Away,
				Sport:  g.Sport,
				Field:  g.Field,
			})
		}
	}
	if len(gameRows) > 0 {
		if err := database.SaveLeagueGames(ctx, gameRows); err != nil {
			return nil, fmt.Errorf("failed to save league games: %w", err)
		}
	}

	result.Saved = true
	logger.Info("Schedule saved",
		zap.Int("entries", len(entries)),
		zap.Int("league_games", len(gameRows)))

	return result, nil
}

// countEmpty counts unfilled active cells across the grid.
func countEmpty(catalog *model.Catalog, rows map[string]model.ScheduleRow) int {
	empty := 0
	for i := range catalog.Divisions {
		div := &catalog.Divisions[i]
		for _, bunk := range div.Bunks {
			empty += len(rows[bunk].EmptySlots(div.ActiveSlots))
		}
	}
	return empty
}
