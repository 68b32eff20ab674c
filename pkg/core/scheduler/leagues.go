package scheduler

import (
	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// bookSpecialtyLeagues places every specialty league: fixed single sport,
// explicit field list, possibly spanning multiple divisions. The first slot
// where every bunk of every associated division is free, every required
// field is free, and no other league has claimed the slot wins. Unplaceable
// specialty leagues are skipped and logged.
func (c *Context) bookSpecialtyLeagues() {
	for i := range c.Catalog.Leagues {
		league := &c.Catalog.Leagues[i]
		if !league.Specialty {
			continue
		}
		if !c.placeLeague(league, false) {
			c.SkippedLeagues = append(c.SkippedLeagues, league.Name)
			c.Warnf("specialty league %q could not be placed and was skipped", league.Name)
		}
	}
}

// bookLeagues places regular division leagues. Leagues that cannot be
// fielded in any candidate slot are returned for an eviction-based rescue
// pass that runs before the general fill.
func (c *Context) bookLeagues() []*model.League {
	var failed []*model.League
	for i := range c.Catalog.Leagues {
		league := &c.Catalog.Leagues[i]
		if league.Specialty {
			continue
		}
		if !c.placeLeague(league, false) {
			failed = append(failed, league)
		}
	}
	return failed
}

// rescueLeagues retries failed leagues with eviction enabled: already-placed
// general and H2H entries occupying the needed fields are forcibly
// reclaimed (never fixed or league entries), then field assignment runs
// again. A league unplaceable even after eviction is skipped and logged.
func (c *Context) rescueLeagues(failed []*model.League) {
	for _, league := range failed {
		if c.placeLeague(league, true) {
			c.Logger.Info("League rescued via eviction", zap.String("league", league.Name))
			continue
		}
		c.SkippedLeagues = append(c.SkippedLeagues, league.Name)
		c.Warnf("league %q could not be placed even after eviction and was skipped", league.Name)
	}
}

func (c *Context) placeLeague(league *model.League, allowEvict bool) bool {
	hist := c.LeagueHistories[league.Name]
	if hist == nil {
		hist = &LeagueHistory{}
		c.LeagueHistories[league.Name] = hist
	}

	games := roundMatchups(league.Teams, hist.Rounds)
	if len(games) == 0 {
		c.Warnf("league %q has fewer than two teams, nothing to book", league.Name)
		return true
	}

	if league.Specialty {
		for i := range games {
			games[i].Sport = league.FixedSport
		}
	} else {
		assignSports(league, games, hist)
	}

	span := league.Span()
	for slot := 0; slot+span <= len(c.Catalog.Slots); slot++ {
		if !c.leagueSlotCandidate(league, slot, allowEvict) {
			continue
		}

		if allowEvict {
			c.evictForLeague(league, slot)
		}

		if assignFields(c, league, games, slot) {
			c.bookRound(league, games, slot)
			return true
		}
	}

	return false
}

// leagueSlotCandidate reports whether every bunk of every associated
// division is free for the league's span and the slot is unclaimed by
// another league. With eviction enabled, bunks busy with reclaimable
// (general or H2H) entries still qualify.
func (c *Context) leagueSlotCandidate(league *model.League, slot int, allowEvict bool) bool {
	span := league.Span()

	for offset := 0; offset < span; offset++ {
		if claimed := c.leagueClaims[slot+offset]; claimed != "" && claimed != league.Name {
			return false
		}
	}

	for _, divName := range league.Divisions {
		div := c.Catalog.DivisionByName(divName)
		if div == nil {
			return false
		}
		for offset := 0; offset < span; offset++ {
			s := slot + offset
			if !div.IsActiveSlot(s) {
				return false
			}
			for _, bunk := range div.Bunks {
				if c.SlotFree(bunk, s) {
					continue
				}
				if allowEvict && c.entryReclaimable(bunk, s) {
					continue
				}
				return false
			}
		}
	}
	return true
}

// entryReclaimable reports whether the bunk's entry at the slot may be
// force-cleared: only general and H2H entries qualify, never fixed or
// league.
func (c *Context) entryReclaimable(bunk string, slot int) bool {
	row := c.Rows[bunk]
	if row == nil || slot >= len(row) || row[slot] == nil {
		return false
	}
	head := slot
	for head > 0 && row[head].IsContinuation() {
		head--
	}
	kind := row[head].Kind
	return kind == model.EntryGeneral || kind == model.EntryHeadToHead
}

// evictForLeague reclaims general and H2H entries occupying the league's
// fields or blocking its divisions' bunks over the candidate span. Returns
// true if anything was reclaimed.
func (c *Context) evictForLeague(league *model.League, slot int) bool {
	evicted := 0
	for offset := 0; offset < league.Span(); offset++ {
		s := slot + offset
		for _, field := range league.Fields {
			// Copy: reclaiming mutates the occupant list.
			occupants := append([]Occupant{}, c.Occupants(s, field)...)
			for _, occ := range occupants {
				if occ.League != "" || occ.Bunk == "" {
					continue
				}
				if c.reclaimCell(occ.Bunk, s) {
					evicted++
				}
			}
		}
		for _, divName := range league.Divisions {
			div := c.Catalog.DivisionByName(divName)
			if div == nil {
				continue
			}
			for _, bunk := range div.Bunks {
				if !c.SlotFree(bunk, s) && c.entryReclaimable(bunk, s) {
					if c.reclaimCell(bunk, s) {
						evicted++
					}
				}
			}
		}
	}

	if evicted > 0 {
		c.Logger.Info("Evicted entries for league placement",
			zap.String("league", league.Name),
			zap.Int("slot", slot),
			zap.Int("evicted", evicted))
	}
	return evicted > 0
}

// bookRound stamps the fielded round into the grid through an overlay:
// league entries for every bunk of every associated division, exclusive
// field locks, and the slot claim for the span.
func (c *Context) bookRound(league *model.League, games []model.Game, slot int) {
	ov := newOverlay(c)
	span := league.Span()

	sportOf := make(map[string]model.Game, len(games)*2)
	for _, game := range games {
		sportOf[game.Home] = game
		sportOf[game.Away] = game
	}

	for _, divName := range league.Divisions {
		div := c.Catalog.DivisionByName(divName)
		if div == nil {
			continue
		}
		for _, bunk := range div.Bunks {
			entry := &model.Entry{
				Kind:     model.EntryLeague,
				Activity: league.Name,
				League:   league.Name,
				Span:     span,
			}
			if game, ok := sportOf[bunk]; ok {
				entry.Sport = game.Sport
				entry.Field = game.Field
			}
			ov.stage(bunk, slot, entry, "", Occupant{})
			for offset := 1; offset < span; offset++ {
				ov.stage(bunk, slot+offset, &model.Entry{
					Kind:     model.EntryContinuation,
					Activity: league.Name,
				}, "", Occupant{})
			}
		}
	}

	ov.commit()

	for _, game := range games {
		for offset := 0; offset < span; offset++ {
			c.claimResource(slot+offset, game.Field, Occupant{
				Division: league.Name,
				League:   league.Name,
			})
		}
		c.Logger.Debug("Booked league game",
			zap.String("league", league.Name),
			zap.String("game", gameLabel(game)),
			zap.String("sport", game.Sport),
			zap.String("field", game.Field),
			zap.Int("slot", slot))
	}

	for offset := 0; offset < span; offset++ {
		c.leagueClaims[slot+offset] = league.Name
	}

	hist := c.LeagueHistories[league.Name]
	hist.recordRound(games)
	c.LeagueGames[league.Name] = append(c.LeagueGames[league.Name], games...)
}
