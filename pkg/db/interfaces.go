package db

import (
	"context"
	"time"
)

// Store is the persistence surface one generation run needs: the current
// day's grid, the trailing window of prior days for rotation history, league
// history, and global settings.
type Store interface {
	LoadDailyData(ctx context.Context, date time.Time) ([]DailyEntry, error)
	LoadPreviousDailyData(ctx context.Context, date time.Time, days int) ([]DailyEntry, error)
	SaveCurrentDailyData(ctx context.Context, date time.Time, entries []DailyEntry) error

	LoadLeagueHistory(ctx context.Context, since time.Time) ([]LeagueGame, error)
	SaveLeagueGames(ctx context.Context, games []LeagueGame) error

	LoadGlobalSettings(ctx context.Context) (map[string]string, error)
}
