package rotation

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// Forbidden marks a (bunk, activity) pairing that is illegal in the current
// context: already done today, or a hard usage cap is exhausted.
var Forbidden = math.Inf(1)

// IsForbidden reports whether a score is the Forbidden sentinel.
func IsForbidden(score float64) bool {
	return math.IsInf(score, 1)
}

// Config contains everything needed to construct an Engine.
type Config struct {
	// Catalog is the full activity catalog (frequency baselines, caps,
	// eligibility).
	Catalog *model.Catalog

	// LoadPrevious supplies persisted prior-day schedules for history
	// rebuilds.
	LoadPrevious LoadPreviousFunc

	// Date is the schedule date being generated.
	Date time.Time

	// HistoryDays is how far back history scans. Zero means
	// DefaultHistoryDays.
	HistoryDays int

	// Rand drives tie-breaking jitter. Inject a seeded source for
	// deterministic runs; nil falls back to a fixed seed.
	Rand *rand.Rand

	// Weights overrides the scoring weights. Zero value means defaults.
	Weights *Weights

	Logger *zap.Logger
}

// Engine scores (bunk, activity) pairs for rotation fairness. Lower scores
// are more desirable. The engine is owned by a single generation run and is
// not safe for concurrent use.
type Engine struct {
	catalog      *model.Catalog
	loadPrevious LoadPreviousFunc
	date         time.Time
	historyDays  int
	rng          *rand.Rand
	weights      Weights
	logger       *zap.Logger

	histories map[string]History
	cacheDate time.Time
	prevDays  []DaySchedule
	loaded    bool
}

// NewEngine creates a rotation scoring engine.
func NewEngine(cfg Config) *Engine {
	historyDays := cfg.HistoryDays
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	weights := DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		catalog:      cfg.Catalog,
		loadPrevious: cfg.LoadPrevious,
		date:         cfg.Date,
		historyDays:  historyDays,
		rng:          rng,
		weights:      weights,
		logger:       logger,
		histories:    make(map[string]History),
	}
}

// SetDate changes the schedule date, invalidating the history cache if the
// date actually moved.
func (e *Engine) SetDate(date time.Time) {
	if !date.Equal(e.date) {
		e.date = date
		e.ClearHistoryCache()
	}
}

// ClearHistoryCache drops all cached per-bunk history. The next lookup
// rebuilds from persisted days.
func (e *Engine) ClearHistoryCache() {
	e.histories = make(map[string]History)
	e.prevDays = nil
	e.loaded = false
}

// RebuildAllHistory clears the cache and eagerly rebuilds history for every
// bunk in the catalog.
func (e *Engine) RebuildAllHistory() {
	e.ClearHistoryCache()
	for i := range e.catalog.Divisions {
		for _, bunk := range e.catalog.Divisions[i].Bunks {
			e.BunkHistory(bunk)
		}
	}
}

// BunkHistory returns the (cached) rotation history for one bunk. A missing
// or unreadable persisted record degrades to empty history: every activity
// looks never-done, which is the most favorable case.
func (e *Engine) BunkHistory(bunk string) History {
	e.ensureCacheDate()

	if h, ok := e.histories[bunk]; ok {
		return h
	}

	e.ensureLoaded()
	h := buildHistory(e.date, e.prevDays, bunk)
	e.histories[bunk] = h
	return h
}

func (e *Engine) ensureCacheDate() {
	if !e.cacheDate.Equal(e.date) {
		e.histories = make(map[string]History)
		e.prevDays = nil
		e.loaded = false
		e.cacheDate = e.date
	}
}

func (e *Engine) ensureLoaded() {
	if e.loaded {
		return
	}
	e.loaded = true

	if e.loadPrevious == nil {
		return
	}

	days, err := e.loadPrevious(e.date, e.historyDays)
	if err != nil {
		e.logger.Warn("Failed to load prior-day schedules, treating history as empty",
			zap.Error(err))
		return
	}
	e.prevDays = days
}

// Catalog exposes the engine's catalog to callers that already hold the
// engine (scheduler phases, debug commands).
func (e *Engine) Catalog() *model.Catalog {
	return e.catalog
}
