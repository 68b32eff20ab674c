package scheduler

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
	"github.com/jordanelias/camplan/pkg/core/rotation"
)

// Occupant records one group holding a slot×resource cell in the ownership
// index. League claims have League set and no Bunk.
type Occupant struct {
	Bunk     string
	Division string
	League   string
}

// Context is the mutable state of one generation run: the grid under
// construction, the slot×resource ownership index, league claims, and the
// fairness signals. It is owned exclusively by a single synchronous run.
type Context struct {
	Catalog *model.Catalog
	Engine  *rotation.Engine
	Logger  *zap.Logger
	Rng     *rand.Rand

	// Rows holds one schedule row per bunk, length len(Catalog.Slots).
	Rows map[string]model.ScheduleRow

	// resourceUse maps slot index -> activity/field key -> occupants.
	resourceUse map[int]map[string][]Occupant

	// leagueClaims maps slot index -> league name for slots exclusively
	// reserved by a league span.
	leagueClaims map[int]string

	// h2hGames counts head-to-head games per bunk today.
	h2hGames map[string]int

	// recentOpponents maps bunk -> opponents faced head-to-head on recent
	// prior days. Seeded before the run; the forced fallback ignores it.
	recentOpponents map[string]map[string]bool

	// LeagueGames collects the booked games for persistence.
	LeagueGames map[string][]model.Game

	// LeagueHistories carries per-league matchup and sport history, keyed by
	// league name. Loaded before the run, updated as rounds are booked.
	LeagueHistories map[string]*LeagueHistory

	// SkippedLeagues lists leagues that could not be placed even after
	// eviction.
	SkippedLeagues []string

	// Warnings collects informational messages about soft-constraint
	// violations accepted during fallback.
	Warnings []string
}

// NewContext builds a fresh run context with empty rows for every bunk.
func NewContext(catalog *model.Catalog, engine *rotation.Engine, logger *zap.Logger, rng *rand.Rand) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	ctx := &Context{
		Catalog:         catalog,
		Engine:          engine,
		Logger:          logger,
		Rng:             rng,
		Rows:            make(map[string]model.ScheduleRow),
		resourceUse:     make(map[int]map[string][]Occupant),
		leagueClaims:    make(map[int]string),
		h2hGames:        make(map[string]int),
		recentOpponents: make(map[string]map[string]bool),
		LeagueGames:     make(map[string][]model.Game),

		LeagueHistories: make(map[string]*LeagueHistory),
	}

	for i := range catalog.Divisions {
		for _, bunk := range catalog.Divisions[i].Bunks {
			ctx.Rows[bunk] = make(model.ScheduleRow, len(catalog.Slots))
		}
	}

	return ctx
}

// SeedRecentOpponents records head-to-head pairings from recent prior days
// so the fill avoids an immediate rematch. Pairs are marked in both
// directions.
func (c *Context) SeedRecentOpponents(pairs [][2]string) {
	for _, pair := range pairs {
		for _, p := range [][2]string{pair, {pair[1], pair[0]}} {
			if c.recentOpponents[p[0]] == nil {
				c.recentOpponents[p[0]] = make(map[string]bool)
			}
			c.recentOpponents[p[0]][p[1]] = true
		}
	}
}

// Warnf records an informational warning and logs it.
func (c *Context) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	c.Logger.Warn(msg)
}

// SlotFree reports whether the bunk's cell at the slot is empty.
func (c *Context) SlotFree(bunk string, slot int) bool {
	row, ok := c.Rows[bunk]
	if !ok || slot < 0 || slot >= len(row) {
		return false
	}
	return row[slot] == nil
}

// Occupants returns the groups currently holding a resource at a slot.
func (c *Context) Occupants(slot int, resource string) []Occupant {
	return c.resourceUse[slot][resource]
}

// resourceCapacityOK reports whether one more group from the division fits on
// the resource at the slot. Sharable resources host at most two groups from
// the same division; exclusive resources host exactly one. allowDouble
// relaxes exclusivity (fallback passes only); the two-group hard cap is never
// relaxed.
func (c *Context) resourceCapacityOK(slot int, act *model.Activity, division string, allowDouble bool) bool {
	occupants := c.resourceUse[slot][act.Key()]
	if len(occupants) == 0 {
		return true
	}
	if len(occupants) >= 2 {
		return false
	}
	if !act.Sharable && !allowDouble {
		return false
	}
	// A league lock is always exclusive.
	for _, o := range occupants {
		if o.League != "" {
			return false
		}
	}
	return occupants[0].Division == division
}

// claimResource records a group on a resource at a slot.
func (c *Context) claimResource(slot int, resource string, occ Occupant) {
	if c.resourceUse[slot] == nil {
		c.resourceUse[slot] = make(map[string][]Occupant)
	}
	c.resourceUse[slot][resource] = append(c.resourceUse[slot][resource], occ)
}

// releaseResource removes a bunk's claim on a resource at a slot.
func (c *Context) releaseResource(slot int, resource, bunk string) {
	occupants := c.resourceUse[slot][resource]
	for i, o := range occupants {
		if o.Bunk == bunk {
			c.resourceUse[slot][resource] = append(occupants[:i], occupants[i+1:]...)
			return
		}
	}
}

// spanFits reports whether the activity can be placed for the bunk starting
// at the slot: every slot of the span must be active, free, unblocked,
// unclaimed by a league, and capacity-respecting.
func (c *Context) spanFits(div *model.Division, bunk string, slot int, act *model.Activity, allowDouble bool) bool {
	for offset := 0; offset < act.Span(); offset++ {
		s := slot + offset
		if !div.IsActiveSlot(s) {
			return false
		}
		if !c.SlotFree(bunk, s) {
			return false
		}
		if act.IsBlocked(s) {
			return false
		}
		if c.leagueClaims[s] != "" && c.slotFieldClaimedByLeague(s, act.Key()) {
			return false
		}
		if !c.resourceCapacityOK(s, act, div.Name, allowDouble) {
			return false
		}
	}
	return true
}

func (c *Context) slotFieldClaimedByLeague(slot int, resource string) bool {
	for _, o := range c.resourceUse[slot][resource] {
		if o.League != "" {
			return true
		}
	}
	return false
}

// placeSpan writes a head entry plus continuations and claims the resource
// for every slot of the span.
func (c *Context) placeSpan(div *model.Division, bunk string, slot int, act *model.Activity, head *model.Entry) {
	head.Span = act.Span()
	c.Rows[bunk][slot] = head
	c.claimResource(slot, act.Key(), Occupant{Bunk: bunk, Division: div.Name})

	for offset := 1; offset < act.Span(); offset++ {
		c.Rows[bunk][slot+offset] = &model.Entry{
			Kind:     model.EntryContinuation,
			Activity: act.Key(),
		}
		c.claimResource(slot+offset, act.Key(), Occupant{Bunk: bunk, Division: div.Name})
	}
}

// reclaimCell force-clears a general or H2H entry (and its span) from a
// bunk's row, releasing its resource claims. Fixed and league entries are
// never reclaimed. For an H2H entry the opponent's paired entry is cleared
// too. Returns true if something was cleared.
func (c *Context) reclaimCell(bunk string, slot int) bool {
	row := c.Rows[bunk]
	entry := row[slot]
	if entry == nil {
		return false
	}
	if entry.Kind == model.EntryFixed || entry.Kind == model.EntryLeague {
		return false
	}

	// Walk back to the head of the span.
	head := slot
	for head > 0 && row[head] != nil && row[head].IsContinuation() {
		head--
	}
	entry = row[head]
	if entry == nil || entry.Kind == model.EntryFixed || entry.Kind == model.EntryLeague {
		return false
	}

	for offset := 0; offset < entry.SpanLen(); offset++ {
		c.releaseResource(head+offset, entry.Activity, bunk)
		row[head+offset] = nil
	}

	if entry.Kind == model.EntryHeadToHead && entry.Opponent != "" {
		c.h2hGames[bunk]--
		opponent := entry.Opponent
		oppRow := c.Rows[opponent]
		if oppRow != nil && oppRow[head] != nil && oppRow[head].Kind == model.EntryHeadToHead {
			c.h2hGames[opponent]--
			for offset := 0; offset < oppRow[head].SpanLen(); offset++ {
				c.releaseResource(head+offset, oppRow[head].Activity, opponent)
				oppRow[head+offset] = nil
			}
		}
	}

	return true
}

// RestoreRows replaces the grid with a previously persisted one and rebuilds
// the slot×resource ownership index from it. Used to re-validate or extend a
// saved day. A head-to-head pair is restored as the single occupant-group it
// was booked as, claimed under the lexicographically smaller bunk.
func (c *Context) RestoreRows(rows map[string]model.ScheduleRow) {
	c.resourceUse = make(map[int]map[string][]Occupant)
	c.leagueClaims = make(map[int]string)
	c.h2hGames = make(map[string]int)

	for bunk, row := range rows {
		if existing, ok := c.Rows[bunk]; ok && len(row) < len(existing) {
			padded := make(model.ScheduleRow, len(existing))
			copy(padded, row)
			row = padded
		}
		c.Rows[bunk] = row

		div := c.Catalog.DivisionOfBunk(bunk)
		divName := ""
		if div != nil {
			divName = div.Name
		}

		for slot, entry := range row {
			if entry == nil {
				continue
			}
			switch entry.Kind {
			case model.EntryFixed, model.EntryContinuation:
				// Fixed blocks hold no resources; continuations are claimed
				// with their head below.
			case model.EntryLeague:
				for offset := 0; offset < entry.SpanLen(); offset++ {
					c.leagueClaims[slot+offset] = entry.League
					if entry.Field != "" && !c.slotFieldClaimedByLeague(slot+offset, entry.Field) {
						c.claimResource(slot+offset, entry.Field, Occupant{League: entry.League, Division: divName})
					}
				}
			case model.EntryHeadToHead:
				c.h2hGames[bunk]++
				if entry.Opponent != "" && bunk > entry.Opponent {
					continue
				}
				for offset := 0; offset < entry.SpanLen(); offset++ {
					c.claimResource(slot+offset, entry.Activity, Occupant{Bunk: bunk, Division: divName})
				}
			default:
				for offset := 0; offset < entry.SpanLen(); offset++ {
					c.claimResource(slot+offset, entry.Activity, Occupant{Bunk: bunk, Division: divName})
				}
			}
		}
	}
}

// TodayByBunk snapshots the activity keys placed so far, per bunk, for the
// scoring engine's same-day and variety checks.
func (c *Context) TodayByBunk(beforeSlot int) map[string][]string {
	today := make(map[string][]string, len(c.Rows))
	for bunk, row := range c.Rows {
		today[bunk] = row.ActivitiesBefore(beforeSlot)
	}
	return today
}

// scoreOptions builds the rotation scoring context for a bunk at a cursor.
func (c *Context) scoreOptions(div *model.Division, cursor int) rotation.ScoreOptions {
	return rotation.ScoreOptions{
		Division:        div.Name,
		BeforeSlot:      cursor,
		TodayByBunk:     c.TodayByBunk(cursor),
		ActiveSlotCount: len(div.ActiveSlots),
	}
}
