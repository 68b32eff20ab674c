package model

import "slices"

// TimeSlot is one fixed interval of the daily grid. All bunks in a division
// share the same slot list.
type TimeSlot struct {
	Index int
	Label string
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Division is a named group of bunks plus the subset of slot indices the
// division is actually scheduled for.
type Division struct {
	Name        string
	Bunks       []string
	ActiveSlots []int
}

// IsActiveSlot reports whether the division schedules the given slot.
func (d *Division) IsActiveSlot(slot int) bool {
	return slices.Contains(d.ActiveSlots, slot)
}

// HasBunk reports whether the bunk belongs to this division.
func (d *Division) HasBunk(bunk string) bool {
	return slices.Contains(d.Bunks, bunk)
}

// ActivityKind distinguishes field-sport activities from special activities.
type ActivityKind string

const (
	// ActivityField is a location that hosts one or more sports.
	ActivityField ActivityKind = "field"
	// ActivitySpecial is a specialty venue with no sport attribute.
	ActivitySpecial ActivityKind = "special"
)

// Activity is a schedulable resource: either a field (location + sports) or a
// special activity. Capacity and eligibility rules live here; per-slot blocked
// sets are compiled from blackout rules and daily overrides before a run.
type Activity struct {
	Kind   ActivityKind
	Name   string
	Sports []string // field activities only

	// Sharable fields host up to two groups from the same division;
	// non-sharable resources host exactly one.
	Sharable bool

	// Divisions restricts eligibility. Empty means all divisions.
	Divisions []string

	// ExcludedBunks are bunks that may never use this activity.
	ExcludedBunks []string

	// MaxPerBunk is a hard cap per bunk within the scanned history window.
	// Zero means no cap.
	MaxPerBunk int

	// SlotSpan is the number of consecutive slots one booking occupies.
	// Zero is treated as one.
	SlotSpan int

	// BlockedSlots marks slot indices this activity may not occupy today.
	// Daily overrides take precedence over global blackout rules and are
	// merged in here during catalog preparation.
	BlockedSlots map[int]bool
}

// Key returns the canonical activity identifier used in history and entries.
func (a *Activity) Key() string {
	return a.Name
}

// Display returns the human-readable name.
func (a *Activity) Display() string {
	return a.Name
}

// IsSpecial reports whether the activity is a special (non-sport) venue.
func (a *Activity) IsSpecial() bool {
	return a.Kind == ActivitySpecial
}

// Span returns the slot span, never less than one.
func (a *Activity) Span() int {
	if a.SlotSpan < 1 {
		return 1
	}
	return a.SlotSpan
}

// SupportsSport reports whether the field hosts the given sport.
func (a *Activity) SupportsSport(sport string) bool {
	return slices.Contains(a.Sports, sport)
}

// EligibleForDivision reports whether the division may use this activity.
func (a *Activity) EligibleForDivision(division string) bool {
	if len(a.Divisions) == 0 {
		return true
	}
	return slices.Contains(a.Divisions, division)
}

// EligibleForBunk reports whether the bunk may use this activity.
func (a *Activity) EligibleForBunk(bunk string) bool {
	return !slices.Contains(a.ExcludedBunks, bunk)
}

// IsBlocked reports whether the activity is blocked at the given slot.
func (a *Activity) IsBlocked(slot int) bool {
	return a.BlockedSlots[slot]
}

// EntryKind identifies the variant of a grid entry.
type EntryKind string

const (
	EntryFixed        EntryKind = "fixed"
	EntryLeague       EntryKind = "league"
	EntryHeadToHead   EntryKind = "h2h"
	EntryGeneral      EntryKind = "general"
	EntryContinuation EntryKind = "continuation"
)

// Entry occupies one slot of one bunk's schedule row. Multi-slot spans place
// one head entry followed by continuation entries.
type Entry struct {
	Kind     EntryKind
	Activity string // activity key; block name for fixed entries
	Sport    string // field activities, league games and H2H matches
	Field    string // resolved hosting field for league games and H2H
	Opponent string // H2H only: the opposing bunk
	League   string // league entries only
	Span     int    // head entries only; number of slots occupied
}

// IsContinuation reports whether this entry marks slot 2..n of a span.
func (e *Entry) IsContinuation() bool {
	return e.Kind == EntryContinuation
}

// SpanLen returns the entry's span, never less than one.
func (e *Entry) SpanLen() int {
	if e.Span < 1 {
		return 1
	}
	return e.Span
}

// ScheduleRow is one bunk's day: one entry (or nil) per slot.
type ScheduleRow []*Entry

// EmptySlots returns the indices of unfilled cells among the given active
// slots.
func (r ScheduleRow) EmptySlots(active []int) []int {
	var empty []int
	for _, idx := range active {
		if idx < len(r) && r[idx] == nil {
			empty = append(empty, idx)
		}
	}
	return empty
}

// ActivitiesBefore returns the activity keys of all non-continuation,
// non-fixed entries placed strictly before the cursor slot. Fixed blocks
// (meals, trips) never count toward rotation fairness.
func (r ScheduleRow) ActivitiesBefore(cursor int) []string {
	var keys []string
	for idx, entry := range r {
		if idx >= cursor || entry == nil {
			continue
		}
		if entry.Kind == EntryContinuation || entry.Kind == EntryFixed {
			continue
		}
		keys = append(keys, entry.Activity)
	}
	return keys
}

// League is a recurring competition booked at division level. Regular leagues
// rotate through Sports; specialty leagues play a single FixedSport on an
// explicit field list and may span multiple divisions.
type League struct {
	Name       string
	Teams      []string
	Divisions  []string
	Sports     []string // regular leagues: rotated per team pair
	FixedSport string   // specialty leagues only
	Fields     []string
	Specialty  bool
	SlotSpan   int
}

// Span returns the league's slot span, never less than one.
func (l *League) Span() int {
	if l.SlotSpan < 1 {
		return 1
	}
	return l.SlotSpan
}

// Game is one matchup inside a league round.
type Game struct {
	Home  string
	Away  string
	Sport string
	Field string
}

// FixedBlock is a pre-scheduled placement stamped before any allocation:
// trips (explicit bunks or divisions) and global fixed activities such as
// meals.
type FixedBlock struct {
	Name      string
	StartSlot int
	EndSlot   int      // inclusive
	Divisions []string // empty plus no bunks = all divisions
	Bunks     []string // explicit target bunks (trips)
	Trip      bool
}

// AppliesToBunk reports whether the block targets the given bunk of the given
// division.
func (b *FixedBlock) AppliesToBunk(division, bunk string) bool {
	if len(b.Bunks) > 0 {
		return slices.Contains(b.Bunks, bunk)
	}
	if len(b.Divisions) > 0 {
		return slices.Contains(b.Divisions, division)
	}
	return true
}

// Catalog bundles the full resource catalog consumed by one generation run.
type Catalog struct {
	Slots      []TimeSlot
	Divisions  []Division
	Activities []Activity
	Leagues    []League
	Fixed      []FixedBlock
}

// ActivityByKey returns the catalog activity with the given key, or nil.
func (c *Catalog) ActivityByKey(key string) *Activity {
	for i := range c.Activities {
		if c.Activities[i].Key() == key {
			return &c.Activities[i]
		}
	}
	return nil
}

// DivisionByName returns the named division, or nil.
func (c *Catalog) DivisionByName(name string) *Division {
	for i := range c.Divisions {
		if c.Divisions[i].Name == name {
			return &c.Divisions[i]
		}
	}
	return nil
}

// DivisionOfBunk returns the division owning the bunk, or nil.
func (c *Catalog) DivisionOfBunk(bunk string) *Division {
	for i := range c.Divisions {
		if c.Divisions[i].HasBunk(bunk) {
			return &c.Divisions[i]
		}
	}
	return nil
}
