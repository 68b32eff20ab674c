package db

import (
	"context"
	"time"
)

// MemStore is an in-memory Store used by tests and dry runs.
type MemStore struct {
	Daily    map[string][]DailyEntry // keyed by date string
	Games    []LeagueGame
	Settings map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		Daily:    make(map[string][]DailyEntry),
		Settings: make(map[string]string),
	}
}

func (m *MemStore) LoadDailyData(_ context.Context, date time.Time) ([]DailyEntry, error) {
	return m.Daily[date.Format(dateFormat)], nil
}

func (m *MemStore) LoadPreviousDailyData(_ context.Context, date time.Time, days int) ([]DailyEntry, error) {
	var entries []DailyEntry
	for age := 1; age <= days; age++ {
		key := date.AddDate(0, 0, -age).Format(dateFormat)
		entries = append(entries, m.Daily[key]...)
	}
	return entries, nil
}

func (m *MemStore) SaveCurrentDailyData(_ context.Context, date time.Time, entries []DailyEntry) error {
	m.Daily[date.Format(dateFormat)] = entries
	return nil
}

func (m *MemStore) LoadLeagueHistory(_ context.Context, since time.Time) ([]LeagueGame, error) {
	cutoff := since.Format(dateFormat)
	var games []LeagueGame
	for _, g := range m.Games {
		if g.Date >= cutoff {
			games = append(games, g)
		}
	}
	return games, nil
}

func (m *MemStore) SaveLeagueGames(_ context.Context, games []LeagueGame) error {
	m.Games = append(m.Games, games...)
	return nil
}

func (m *MemStore) LoadGlobalSettings(_ context.Context) (map[string]string, error) {
	return m.Settings, nil
}
