package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jordanelias/camplan/internal/config"
	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/db"
)

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return date
}

func serviceCatalog() *model.Catalog {
	return &model.Catalog{
		Slots: []model.TimeSlot{
			{Index: 0, Label: "Morning", Start: "09:00", End: "10:30"},
			{Index: 1, Label: "Midday", Start: "11:00", End: "12:30"},
		},
		Divisions: []model.Division{
			{Name: "Juniors", Bunks: []string{"B1", "B2"}, ActiveSlots: []int{0, 1}},
		},
		Activities: []model.Activity{
			{Kind: model.ActivityField, Name: "Court", Sports: []string{"basketball", "volleyball"}, Sharable: true},
			{Kind: model.ActivityField, Name: "Diamond", Sports: []string{"baseball"}},
			{Kind: model.ActivitySpecial, Name: "Pool", Sharable: true},
			{Kind: model.ActivitySpecial, Name: "Art"},
		},
		Leagues: []model.League{{
			Name:      "Junior League",
			Teams:     []string{"B1", "B2"},
			Divisions: []string{"Juniors"},
			Sports:    []string{"basketball", "volleyball"},
			Fields:    []string{"Court"},
		}},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL: "postgres://unused",
		CatalogPath: "unused",
		HistoryDays: 14,
	}
}

func TestGenerateSchedule_SavesFullDay(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")

	result, err := GenerateSchedule(
		context.Background(), store, serviceCatalog(), testConfig(), zap.NewNop(),
		date, 7, false)
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.Zero(t, result.EmptyCells)
	assert.Empty(t, result.CellErrors)
	assert.Empty(t, result.SkippedLeagues)

	saved, err := store.LoadDailyData(context.Background(), date)
	require.NoError(t, err)
	assert.Len(t, saved, 4, "2 bunks x 2 slots")
	for _, entry := range saved {
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "2025-07-10", entry.Date)
	}

	games, err := store.LoadLeagueHistory(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Junior League", games[0].League)
	assert.Equal(t, "Court", games[0].Field)
}

func TestGenerateSchedule_DryRunSavesNothing(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")

	result, err := GenerateSchedule(
		context.Background(), store, serviceCatalog(), testConfig(), zap.NewNop(),
		date, 7, true)
	require.NoError(t, err)

	assert.False(t, result.Saved)
	assert.Zero(t, result.EmptyCells)

	saved, err := store.LoadDailyData(context.Background(), date)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Empty(t, store.Games)
}

func TestGenerateSchedule_DeterministicForSeed(t *testing.T) {
	date := testDate(t, "2025-07-10")

	run := func(seed int64) []db.DailyEntry {
		store := db.NewMemStore()
		_, err := GenerateSchedule(
			context.Background(), store, serviceCatalog(), testConfig(), zap.NewNop(),
			date, seed, false)
		require.NoError(t, err)
		saved, err := store.LoadDailyData(context.Background(), date)
		require.NoError(t, err)
		for i := range saved {
			saved[i].ID = ""
		}
		return saved
	}

	assert.Equal(t, run(21), run(21))
}

func TestGenerateSchedule_UsesRotationHistory(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")

	// Persist yesterday with both bunks at the pool.
	yesterday := date.AddDate(0, 0, -1)
	require.NoError(t, store.SaveCurrentDailyData(context.Background(), yesterday, []db.DailyEntry{
		{ID: "1", Date: "2025-07-09", Bunk: "B1", SlotIndex: 0, Kind: "general", Activity: "Pool", Span: 1},
		{ID: "2", Date: "2025-07-09", Bunk: "B2", SlotIndex: 0, Kind: "general", Activity: "Pool", Span: 1},
	}))

	catalog := serviceCatalog()
	catalog.Leagues = nil

	result, err := GenerateSchedule(
		context.Background(), store, catalog, testConfig(), zap.NewNop(),
		date, 7, true)
	require.NoError(t, err)

	// With three fresh alternatives per slot, yesterday's pool visit should
	// not recur today.
	for bunk, row := range result.Rows {
		for _, entry := range row {
			if entry == nil || entry.IsContinuation() {
				continue
			}
			assert.NotEqual(t, "Pool", entry.Activity, "bunk %s repeated yesterday's activity", bunk)
		}
	}
}

func TestGenerateSchedule_AvoidsRecentHeadToHeadRematch(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")

	// The bunks met head-to-head yesterday. With only one possible pairing
	// in the division, no game can be booked today outside the fallbacks.
	require.NoError(t, store.SaveCurrentDailyData(context.Background(), date.AddDate(0, 0, -1), []db.DailyEntry{
		{ID: "1", Date: "2025-07-09", Bunk: "B1", SlotIndex: 0, Kind: "h2h", Activity: "Court", Sport: "basketball", Field: "Court", Opponent: "B2", Span: 1},
		{ID: "2", Date: "2025-07-09", Bunk: "B2", SlotIndex: 0, Kind: "h2h", Activity: "Court", Sport: "basketball", Field: "Court", Opponent: "B1", Span: 1},
	}))

	catalog := serviceCatalog()
	catalog.Leagues = nil

	result, err := GenerateSchedule(
		context.Background(), store, catalog, testConfig(), zap.NewNop(),
		date, 7, true)
	require.NoError(t, err)

	assert.Zero(t, result.EmptyCells)
	for bunk, row := range result.Rows {
		for _, entry := range row {
			if entry != nil {
				assert.NotEqual(t, model.EntryHeadToHead, entry.Kind,
					"bunk %s rematched yesterday's opponent", bunk)
			}
		}
	}
}

func TestGenerateSchedule_SeedsLeagueSportRotation(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")

	// The pair last played basketball, so today's game must rotate.
	store.Games = []db.LeagueGame{
		{ID: "1", Date: "2025-07-09", League: "Junior League", Home: "B1", Away: "B2", Sport: "basketball", Field: "Court"},
	}

	result, err := GenerateSchedule(
		context.Background(), store, serviceCatalog(), testConfig(), zap.NewNop(),
		date, 7, true)
	require.NoError(t, err)

	games := result.LeagueGames["Junior League"]
	require.Len(t, games, 1)
	assert.Equal(t, "volleyball", games[0].Sport)
}

func TestValidateSchedule(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")
	catalog := serviceCatalog()

	_, err := ValidateSchedule(context.Background(), store, catalog, zap.NewNop(), date)
	assert.Error(t, err, "nothing persisted yet")

	_, err = GenerateSchedule(
		context.Background(), store, catalog, testConfig(), zap.NewNop(),
		date, 7, false)
	require.NoError(t, err)

	result, err := ValidateSchedule(context.Background(), store, catalog, zap.NewNop(), date)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Entries)
	assert.Empty(t, result.CellErrors)
}

func TestBunkHistoryReport(t *testing.T) {
	store := db.NewMemStore()
	date := testDate(t, "2025-07-10")

	require.NoError(t, store.SaveCurrentDailyData(context.Background(), date.AddDate(0, 0, -1), []db.DailyEntry{
		{ID: "1", Date: "2025-07-09", Bunk: "B1", SlotIndex: 0, Kind: "general", Activity: "Pool", Span: 1},
		{ID: "2", Date: "2025-07-09", Bunk: "B1", SlotIndex: 1, Kind: "general", Activity: "Court", Span: 1},
	}))
	require.NoError(t, store.SaveCurrentDailyData(context.Background(), date.AddDate(0, 0, -3), []db.DailyEntry{
		{ID: "3", Date: "2025-07-07", Bunk: "B1", SlotIndex: 0, Kind: "general", Activity: "Pool", Span: 1},
	}))

	result, err := BunkHistory(
		context.Background(), store, serviceCatalog(), zap.NewNop(),
		date, 14, "B1")
	require.NoError(t, err)

	assert.Equal(t, "Juniors", result.Division)
	require.NotEmpty(t, result.Lines)

	// Most-used first.
	assert.Equal(t, "Pool", result.Lines[0].Activity)
	assert.Equal(t, 2, result.Lines[0].Count)
	assert.Equal(t, 1, result.Lines[0].DaysSinceLast)

	byName := make(map[string]BunkHistoryLine)
	for _, line := range result.Lines {
		byName[line.Activity] = line
	}
	assert.Equal(t, 1, byName["Court"].Count)
	assert.Equal(t, -1, byName["Art"].DaysSinceLast)

	_, err = BunkHistory(
		context.Background(), store, serviceCatalog(), zap.NewNop(),
		date, 14, "Nope")
	assert.Error(t, err)
}
