package db

// DailyEntry is one persisted grid cell: a bunk's entry at a slot on a date.
// Continuation cells are persisted too so multi-slot spans reload exactly.
type DailyEntry struct {
	ID        string
	Date      string // 2006-01-02
	Bunk      string
	SlotIndex int
	Kind      string
	Activity  string
	Sport     string
	Field     string
	Opponent  string
	League    string
	Span      int
}

// LeagueGame is one persisted league matchup.
type LeagueGame struct {
	ID     string
	Date   string // 2006-01-02
	League string
	Home   string
	Away   string
	Sport  string
	Field  string
}

// Setting is one global key/value setting.
type Setting struct {
	Key   string
	Value string
}
