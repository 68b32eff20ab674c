package scheduler

import (
	"sort"
	"strings"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// LeagueHistory carries the per-league matchup and sport history driving the
// team-pair sport rotation. This rotation is deliberately independent of the
// bunk-activity scoring engine: it balances sports between opponents, not
// activities within a bunk's day.
type LeagueHistory struct {
	// Rounds is the number of completed rounds, used to rotate matchups.
	Rounds int

	// LastSportByPair maps PairKey(a, b) to the sport those teams last
	// played against each other.
	LastSportByPair map[string]string

	// LastSportByTeam maps a team to the sport it played most recently.
	LastSportByTeam map[string]string
}

// PairKey is the order-independent key for a team pairing.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// roundMatchups generates the round's pairings with the circle method,
// rotated by the number of completed rounds so teams cycle through
// opponents across days. With an odd team count one team sits out.
func roundMatchups(teams []string, round int) []model.Game {
	n := len(teams)
	if n < 2 {
		return nil
	}

	rotating := make([]string, n)
	copy(rotating, teams)
	if n%2 == 1 {
		rotating = append(rotating, "") // bye marker
		n++
	}

	// Fix the first team, rotate the rest by the round index.
	shift := round % (n - 1)
	rest := append([]string{}, rotating[1:]...)
	rest = append(rest[shift:], rest[:shift]...)
	rotating = append(rotating[:1], rest...)

	games := make([]model.Game, 0, n/2)
	for i := 0; i < n/2; i++ {
		home, away := rotating[i], rotating[n-1-i]
		if home == "" || away == "" {
			continue
		}
		games = append(games, model.Game{Home: home, Away: away})
	}
	return games
}

// assignSports picks a sport for every game using the team-pair rotation.
// Three passes, each relaxing a constraint:
//
//	pass 0: not a repeat vs the same opponent, not back-to-back for either team
//	pass 1: not a repeat vs the same opponent
//	pass 2: rotate by round index regardless of history
func assignSports(league *model.League, games []model.Game, hist *LeagueHistory) {
	if hist == nil {
		hist = &LeagueHistory{}
	}

	for i := range games {
		game := &games[i]
		pairLast := hist.LastSportByPair[PairKey(game.Home, game.Away)]

		picked := ""
		for pass := 0; pass <= 1 && picked == ""; pass++ {
			for _, sport := range league.Sports {
				if sport == pairLast {
					continue
				}
				if pass == 0 {
					if sport == hist.LastSportByTeam[game.Home] ||
						sport == hist.LastSportByTeam[game.Away] {
						continue
					}
				}
				picked = sport
				break
			}
		}
		if picked == "" && len(league.Sports) > 0 {
			picked = league.Sports[(hist.Rounds+i)%len(league.Sports)]
		}
		game.Sport = picked
	}
}

// legalFieldsForGame returns the league's fields that support the game's
// sport. Specialty leagues list fields explicitly, so sport support is only
// checked when the catalog knows the field.
func legalFieldsForGame(catalog *model.Catalog, league *model.League, sport string) []string {
	var legal []string
	for _, field := range league.Fields {
		act := catalog.ActivityByKey(field)
		if act != nil && len(act.Sports) > 0 && sport != "" && !act.SupportsSport(sport) {
			continue
		}
		legal = append(legal, field)
	}
	return legal
}

// assignFields gives every game a distinct free field, most-constrained
// game first. Returns false if any game cannot be fielded.
func assignFields(c *Context, league *model.League, games []model.Game, slot int) bool {
	type candidate struct {
		game   *model.Game
		fields []string
	}

	candidates := make([]candidate, 0, len(games))
	for i := range games {
		fields := make([]string, 0)
		for _, field := range legalFieldsForGame(c.Catalog, league, games[i].Sport) {
			if fieldFreeForSpan(c, field, slot, league.Span()) {
				fields = append(fields, field)
			}
		}
		candidates = append(candidates, candidate{game: &games[i], fields: fields})
	}

	// Fewest legal fields assigned first.
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].fields) < len(candidates[j].fields)
	})

	taken := make(map[string]bool)
	for _, cand := range candidates {
		assigned := ""
		for _, field := range cand.fields {
			if !taken[field] {
				assigned = field
				break
			}
		}
		if assigned == "" {
			return false
		}
		taken[assigned] = true
		cand.game.Field = assigned
	}
	return true
}

// fieldFreeForSpan reports whether a field has no occupants at all over the
// span. League locks are exclusive, so any occupant disqualifies.
func fieldFreeForSpan(c *Context, field string, slot, span int) bool {
	for offset := 0; offset < span; offset++ {
		if len(c.Occupants(slot+offset, field)) > 0 {
			return false
		}
		act := c.Catalog.ActivityByKey(field)
		if act != nil && act.IsBlocked(slot+offset) {
			return false
		}
	}
	return true
}

// recordRound updates the league history with the booked games so later
// rounds (and the persisted record) see them.
func (h *LeagueHistory) recordRound(games []model.Game) {
	if h.LastSportByPair == nil {
		h.LastSportByPair = make(map[string]string)
	}
	if h.LastSportByTeam == nil {
		h.LastSportByTeam = make(map[string]string)
	}
	for _, game := range games {
		h.LastSportByPair[PairKey(game.Home, game.Away)] = game.Sport
		h.LastSportByTeam[game.Home] = game.Sport
		h.LastSportByTeam[game.Away] = game.Sport
	}
	h.Rounds++
}

// gameLabel is a short human-readable description for logs.
func gameLabel(g model.Game) string {
	return strings.Join([]string{g.Home, "vs", g.Away}, " ")
}
