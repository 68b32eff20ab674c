package rotation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanelias/camplan/pkg/core/model"
)

func TestRankedActivities_DropsForbidden(t *testing.T) {
	engine := engineWithDays(t, nil)
	opts := emptyOpts()
	opts.TodayByBunk = map[string][]string{"B1": {"Pool"}}

	ranked := engine.RankedActivities("B1", opts)
	require.NotEmpty(t, ranked)
	for _, cand := range ranked {
		assert.NotEqual(t, "Pool", cand.Activity)
		assert.False(t, IsForbidden(cand.Score))
	}
}

func TestRankedActivities_SortedBestFirst(t *testing.T) {
	engine := engineWithDays(t, b1Days(t, "Pool", 1))

	ranked := engine.RankedActivities("B1", emptyOpts())
	require.NotEmpty(t, ranked)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	// Done-yesterday Pool must rank behind every never-done candidate.
	assert.Equal(t, "Pool", ranked[len(ranked)-1].Activity)
}

func TestRankedActivities_RespectsExclusions(t *testing.T) {
	catalog := testCatalog()
	catalog.Activities = append(catalog.Activities, model.Activity{
		Kind:          model.ActivitySpecial,
		Name:          "Archery",
		ExcludedBunks: []string{"B1"},
	})

	engine := NewEngine(Config{
		Catalog: catalog,
		Date:    day(t, "2025-07-10"),
		LoadPrevious: func(time.Time, int) ([]DaySchedule, error) {
			return nil, nil
		},
	})

	for _, cand := range engine.RankedActivities("B1", emptyOpts()) {
		assert.NotEqual(t, "Archery", cand.Activity)
	}

	found := false
	for _, cand := range engine.RankedActivities("B2", emptyOpts()) {
		if cand.Activity == "Archery" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRankedActivities_DeterministicWithSeed(t *testing.T) {
	build := func() *Engine {
		return NewEngine(Config{
			Catalog: testCatalog(),
			Date:    day(t, "2025-07-10"),
			Rand:    rand.New(rand.NewSource(42)),
			LoadPrevious: func(time.Time, int) ([]DaySchedule, error) {
				return nil, nil
			},
		})
	}

	first := build().RankedActivities("B1", emptyOpts())
	second := build().RankedActivities("B1", emptyOpts())
	assert.Equal(t, first, second)
}
