package services

import (
	"sort"
	"time"

	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/rotation"
	"github.com/jordanelias/camplan/pkg/core/scheduler"
	"github.com/jordanelias/camplan/pkg/db"
)

const dateFormat = "2006-01-02"

// rowsToEntries flattens a finished grid into persistable rows. IDs are left
// for the caller to assign.
func rowsToEntries(date time.Time, rows map[string]model.ScheduleRow) []db.DailyEntry {
	dateStr := date.Format(dateFormat)

	bunks := make([]string, 0, len(rows))
	for bunk := range rows {
		bunks = append(bunks, bunk)
	}
	sort.Strings(bunks)

	var entries []db.DailyEntry
	for _, bunk := range bunks {
		for slot, entry := range rows[bunk] {
			if entry == nil {
				continue
			}
			entries = append(entries, db.DailyEntry{
				Date:      dateStr,
				Bunk:      bunk,
				SlotIndex: slot,
				Kind:      string(entry.Kind),
				Activity:  entry.Activity,
				Sport:     entry.Sport,
				Field:     entry.Field,
				Opponent:  entry.Opponent,
				League:    entry.League,
				Span:      entry.SpanLen(),
			})
		}
	}
	return entries
}

// entriesToRows rebuilds a grid from persisted rows.
func entriesToRows(entries []db.DailyEntry, slotCount int) map[string]model.ScheduleRow {
	rows := make(map[string]model.ScheduleRow)
	for _, e := range entries {
		if e.SlotIndex < 0 || e.SlotIndex >= slotCount {
			continue
		}
		row, ok := rows[e.Bunk]
		if !ok {
			row = make(model.ScheduleRow, slotCount)
			rows[e.Bunk] = row
		}
		row[e.SlotIndex] = &model.Entry{
			Kind:     model.EntryKind(e.Kind),
			Activity: e.Activity,
			Sport:    e.Sport,
			Field:    e.Field,
			Opponent: e.Opponent,
			League:   e.League,
			Span:     e.Span,
		}
	}
	return rows
}

// daySchedulesFromEntries groups persisted entries into per-day schedules for
// the rotation engine. Fixed blocks and continuations never count toward
// rotation history.
func daySchedulesFromEntries(entries []db.DailyEntry) ([]rotation.DaySchedule, error) {
	byDate := make(map[string]map[string][]string)
	for _, e := range entries {
		kind := model.EntryKind(e.Kind)
		if kind == model.EntryFixed || kind == model.EntryContinuation {
			continue
		}
		if byDate[e.Date] == nil {
			byDate[e.Date] = make(map[string][]string)
		}
		byDate[e.Date][e.Bunk] = append(byDate[e.Date][e.Bunk], e.Activity)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	days := make([]rotation.DaySchedule, 0, len(dates))
	for _, d := range dates {
		parsed, err := time.Parse(dateFormat, d)
		if err != nil {
			return nil, err
		}
		days = append(days, rotation.DaySchedule{Date: parsed, ByBunk: byDate[d]})
	}
	return days, nil
}

// recentOpponentPairs extracts head-to-head pairings from persisted entries.
func recentOpponentPairs(entries []db.DailyEntry) [][2]string {
	var pairs [][2]string
	for _, e := range entries {
		if model.EntryKind(e.Kind) == model.EntryHeadToHead && e.Opponent != "" {
			pairs = append(pairs, [2]string{e.Bunk, e.Opponent})
		}
	}
	return pairs
}

// leagueHistoriesFromGames replays persisted league games, oldest first, into
// per-league histories. Games sharing a (league, date) form one round.
func leagueHistoriesFromGames(games []db.LeagueGame) map[string]*scheduler.LeagueHistory {
	histories := make(map[string]*scheduler.LeagueHistory)

	type roundKey struct{ league, date string }
	seenRounds := make(map[roundKey]bool)

	for _, g := range games {
		hist, ok := histories[g.League]
		if !ok {
			hist = &scheduler.LeagueHistory{
				LastSportByPair: make(map[string]string),
				LastSportByTeam: make(map[string]string),
			}
			histories[g.League] = hist
		}

		key := roundKey{league: g.League, date: g.Date}
		if !seenRounds[key] {
			seenRounds[key] = true
			hist.Rounds++
		}

		hist.LastSportByPair[scheduler.PairKey(g.Home, g.Away)] = g.Sport
		hist.LastSportByTeam[g.Home] = g.Sport
		hist.LastSportByTeam[g.Away] = g.Sport
	}

	return histories
}
