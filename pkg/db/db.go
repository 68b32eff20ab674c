package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dateFormat = "2006-01-02"

// DB is the PostgreSQL-backed Store implementation.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB connects to the database and ensures the schema exists.
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS daily_entries (
			id TEXT PRIMARY KEY,
			date DATE NOT NULL,
			bunk TEXT NOT NULL,
			slot_index INT NOT NULL,
			kind TEXT NOT NULL,
			activity TEXT NOT NULL,
			sport TEXT NOT NULL DEFAULT '',
			field TEXT NOT NULL DEFAULT '',
			opponent TEXT NOT NULL DEFAULT '',
			league TEXT NOT NULL DEFAULT '',
			span INT NOT NULL DEFAULT 1,
			UNIQUE (date, bunk, slot_index)
		)`,
		`CREATE INDEX IF NOT EXISTS daily_entries_date_idx ON daily_entries (date)`,
		`CREATE TABLE IF NOT EXISTS league_games (
			id TEXT PRIMARY KEY,
			date DATE NOT NULL,
			league TEXT NOT NULL,
			home TEXT NOT NULL,
			away TEXT NOT NULL,
			sport TEXT NOT NULL DEFAULT '',
			field TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS league_games_date_idx ON league_games (date)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range ddl {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// LoadDailyData returns every persisted entry for one date.
func (db *DB) LoadDailyData(ctx context.Context, date time.Time) ([]DailyEntry, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, date, bunk, slot_index, kind, activity, sport, field, opponent, league, span
		FROM daily_entries
		WHERE date = $1
		ORDER BY bunk, slot_index`,
		date.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily entries: %w", err)
	}
	defer rows.Close()

	return scanDailyEntries(rows)
}

// LoadPreviousDailyData returns entries for the `days` days strictly before
// the given date, most recent first.
func (db *DB) LoadPreviousDailyData(ctx context.Context, date time.Time, days int) ([]DailyEntry, error) {
	from := date.AddDate(0, 0, -days)
	rows, err := db.pool.Query(ctx, `
		SELECT id, date, bunk, slot_index, kind, activity, sport, field, opponent, league, span
		FROM daily_entries
		WHERE date >= $1 AND date < $2
		ORDER BY date DESC, bunk, slot_index`,
		from.Format(dateFormat), date.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query previous daily entries: %w", err)
	}
	defer rows.Close()

	return scanDailyEntries(rows)
}

func scanDailyEntries(rows pgx.Rows) ([]DailyEntry, error) {
	var entries []DailyEntry
	for rows.Next() {
		var e DailyEntry
		var date time.Time
		if err := rows.Scan(&e.ID, &date, &e.Bunk, &e.SlotIndex, &e.Kind,
			&e.Activity, &e.Sport, &e.Field, &e.Opponent, &e.League, &e.Span); err != nil {
			return nil, fmt.Errorf("failed to scan daily entry: %w", err)
		}
		e.Date = date.Format(dateFormat)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily entries: %w", err)
	}
	return entries, nil
}

// SaveCurrentDailyData replaces the date's persisted grid with the given
// entries in one transaction.
func (db *DB) SaveCurrentDailyData(ctx context.Context, date time.Time, entries []DailyEntry) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM daily_entries WHERE date = $1`,
		date.Format(dateFormat)); err != nil {
		return fmt.Errorf("failed to clear existing entries: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO daily_entries
				(id, date, bunk, slot_index, kind, activity, sport, field, opponent, league, span)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.ID, e.Date, e.Bunk, e.SlotIndex, e.Kind, e.Activity,
			e.Sport, e.Field, e.Opponent, e.League, e.Span)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert daily entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit daily entries: %w", err)
	}
	return nil
}

// LoadLeagueHistory returns all league games on or after the given date,
// oldest first.
func (db *DB) LoadLeagueHistory(ctx context.Context, since time.Time) ([]LeagueGame, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, date, league, home, away, sport, field
		FROM league_games
		WHERE date >= $1
		ORDER BY date ASC`,
		since.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query league games: %w", err)
	}
	defer rows.Close()

	var games []LeagueGame
	for rows.Next() {
		var g LeagueGame
		var date time.Time
		if err := rows.Scan(&g.ID, &date, &g.League, &g.Home, &g.Away, &g.Sport, &g.Field); err != nil {
			return nil, fmt.Errorf("failed to scan league game: %w", err)
		}
		g.Date = date.Format(dateFormat)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read league games: %w", err)
	}
	return games, nil
}

// SaveLeagueGames appends booked games to the league history.
func (db *DB) SaveLeagueGames(ctx context.Context, games []LeagueGame) error {
	batch := &pgx.Batch{}
	for _, g := range games {
		batch.Queue(`
			INSERT INTO league_games (id, date, league, home, away, sport, field)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			g.ID, g.Date, g.League, g.Home, g.Away, g.Sport, g.Field)
	}
	if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert league games: %w", err)
	}
	return nil
}

// LoadGlobalSettings returns all settings as a map.
func (db *DB) LoadGlobalSettings(ctx context.Context) (map[string]string, error) {
	rows, err := db.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}
