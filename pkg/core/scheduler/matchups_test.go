package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanelias/camplan/pkg/core/model"
)

func TestPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("B1", "B2"), PairKey("B2", "B1"))
	assert.NotEqual(t, PairKey("B1", "B2"), PairKey("B1", "B3"))
}

func TestRoundMatchups_EvenTeams(t *testing.T) {
	teams := []string{"A", "B", "C", "D"}

	games := roundMatchups(teams, 0)
	require.Len(t, games, 2)

	seen := make(map[string]bool)
	for _, g := range games {
		seen[g.Home] = true
		seen[g.Away] = true
	}
	assert.Len(t, seen, 4, "every team plays exactly once")
}

func TestRoundMatchups_RotatesOpponents(t *testing.T) {
	teams := []string{"A", "B", "C", "D"}

	opponentOf := func(games []model.Game, team string) string {
		for _, g := range games {
			if g.Home == team {
				return g.Away
			}
			if g.Away == team {
				return g.Home
			}
		}
		return ""
	}

	// Over n-1 rounds every team must meet every other team once.
	met := make(map[string]bool)
	for round := 0; round < 3; round++ {
		opp := opponentOf(roundMatchups(teams, round), "A")
		require.NotEmpty(t, opp)
		assert.False(t, met[opp], "round %d repeats opponent %s", round, opp)
		met[opp] = true
	}
	assert.Len(t, met, 3)
}

func TestRoundMatchups_OddTeamsOneSitsOut(t *testing.T) {
	games := roundMatchups([]string{"A", "B", "C"}, 0)
	require.Len(t, games, 1)

	// Across consecutive rounds the bye rotates.
	byes := make(map[string]bool)
	for round := 0; round < 3; round++ {
		playing := make(map[string]bool)
		for _, g := range roundMatchups([]string{"A", "B", "C"}, round) {
			playing[g.Home] = true
			playing[g.Away] = true
		}
		for _, team := range []string{"A", "B", "C"} {
			if !playing[team] {
				byes[team] = true
			}
		}
	}
	assert.Len(t, byes, 3)
}

func TestRoundMatchups_FewerThanTwoTeams(t *testing.T) {
	assert.Empty(t, roundMatchups([]string{"A"}, 0))
	assert.Empty(t, roundMatchups(nil, 0))
}

func TestAssignSports_AvoidsPairRepeat(t *testing.T) {
	league := &model.League{
		Name:   "Junior League",
		Sports: []string{"basketball", "volleyball", "soccer"},
	}
	hist := &LeagueHistory{
		LastSportByPair: map[string]string{PairKey("A", "B"): "basketball"},
		LastSportByTeam: map[string]string{"A": "basketball", "B": "basketball"},
	}

	games := []model.Game{{Home: "A", Away: "B"}}
	assignSports(league, games, hist)

	assert.NotEqual(t, "basketball", games[0].Sport)
	assert.Contains(t, league.Sports, games[0].Sport)
}

func TestAssignSports_RelaxesWhenCornered(t *testing.T) {
	// One sport only: the pair repeat cannot be avoided, but a sport is still
	// assigned.
	league := &model.League{Name: "Junior League", Sports: []string{"basketball"}}
	hist := &LeagueHistory{
		LastSportByPair: map[string]string{PairKey("A", "B"): "basketball"},
	}

	games := []model.Game{{Home: "A", Away: "B"}}
	assignSports(league, games, hist)
	assert.Equal(t, "basketball", games[0].Sport)
}

func TestAssignSports_AvoidsBackToBackPerTeam(t *testing.T) {
	league := &model.League{
		Name:   "Junior League",
		Sports: []string{"basketball", "volleyball"},
	}
	// A played volleyball yesterday against C; the A-B pairing last played
	// basketball. Volleyball would repeat A's sport, basketball the pair's.
	hist := &LeagueHistory{
		LastSportByPair: map[string]string{PairKey("A", "B"): "basketball"},
		LastSportByTeam: map[string]string{"A": "volleyball"},
	}

	games := []model.Game{{Home: "A", Away: "B"}}
	assignSports(league, games, hist)

	// Pass 0 finds nothing; pass 1 drops the back-to-back rule and picks the
	// non-pair-repeat sport.
	assert.Equal(t, "volleyball", games[0].Sport)
}

func TestRecordRound(t *testing.T) {
	hist := &LeagueHistory{}
	games := []model.Game{
		{Home: "A", Away: "B", Sport: "basketball"},
		{Home: "C", Away: "D", Sport: "soccer"},
	}

	hist.recordRound(games)

	assert.Equal(t, 1, hist.Rounds)
	assert.Equal(t, "basketball", hist.LastSportByPair[PairKey("B", "A")])
	assert.Equal(t, "soccer", hist.LastSportByTeam["D"])
}

func TestLegalFieldsForGame(t *testing.T) {
	catalog := schedCatalog()
	league := &model.League{
		Name:   "Junior League",
		Fields: []string{"Court", "Diamond", "Lakefront"},
	}

	// Court supports basketball, Diamond does not; Lakefront is unknown to
	// the catalog so sport support is not checked.
	fields := legalFieldsForGame(catalog, league, "basketball")
	assert.Equal(t, []string{"Court", "Lakefront"}, fields)
}
