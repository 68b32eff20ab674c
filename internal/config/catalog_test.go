package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanelias/camplan/pkg/core/model"
)

const catalogYAML = `
slots:
  - {label: Morning, start: "09:00", end: "10:30"}
  - {label: Midday, start: "11:00", end: "12:30"}
  - {label: Afternoon, start: "14:00", end: "15:30"}
divisions:
  - name: Juniors
    bunks: [B1, B2]
  - name: Seniors
    bunks: [S1]
    activeSlots: [0, 1]
activities:
  - name: Court
    kind: field
    sports: [basketball, volleyball]
    sharable: true
  - name: Pool
    kind: special
    sharable: true
    maxPerBunk: 3
    blackouts:
      - rrule: "FREQ=WEEKLY;BYDAY=TH"
        slots: [0, 1]
  - name: Lake
    kind: special
    excludedBunks: [B2]
    slotSpan: 2
leagues:
  - name: Junior League
    teams: [B1, B2]
    divisions: [Juniors]
    sports: [basketball]
    fields: [Court]
fixed:
  - name: Lunch
    startSlot: 1
    endSlot: 1
dailyOverrides:
  - date: "2025-07-10"
    activity: Pool
    unblockSlots: [1]
  - date: "2025-07-10"
    activity: Court
    blockSlots: [2]
`

func TestLoadCatalog(t *testing.T) {
	path := writeTemp(t, "catalog.yaml", catalogYAML)

	file, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, file.Slots, 3)
	assert.Len(t, file.Activities, 3)
	assert.Len(t, file.Leagues, 1)
}

func TestBuildCatalog_BlackoutsAndOverrides(t *testing.T) {
	path := writeTemp(t, "catalog.yaml", catalogYAML)
	file, err := LoadCatalog(path)
	require.NoError(t, err)

	// 2025-07-10 is a Thursday: the Pool blackout applies, but the daily
	// override unblocks slot 1. The Court override blocks slot 2.
	thursday := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	catalog, err := file.BuildCatalog(thursday)
	require.NoError(t, err)

	pool := catalog.ActivityByKey("Pool")
	require.NotNil(t, pool)
	assert.True(t, pool.IsBlocked(0))
	assert.False(t, pool.IsBlocked(1), "override unblocks the blackout")
	assert.False(t, pool.IsBlocked(2))

	court := catalog.ActivityByKey("Court")
	require.NotNil(t, court)
	assert.False(t, court.IsBlocked(0))
	assert.True(t, court.IsBlocked(2))

	// On a Friday neither the blackout nor the overrides apply.
	friday := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	catalog, err = file.BuildCatalog(friday)
	require.NoError(t, err)
	assert.False(t, catalog.ActivityByKey("Pool").IsBlocked(0))
	assert.False(t, catalog.ActivityByKey("Court").IsBlocked(2))
}

func TestBuildCatalog_Structure(t *testing.T) {
	path := writeTemp(t, "catalog.yaml", catalogYAML)
	file, err := LoadCatalog(path)
	require.NoError(t, err)

	catalog, err := file.BuildCatalog(time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	juniors := catalog.DivisionByName("Juniors")
	require.NotNil(t, juniors)
	assert.Equal(t, []int{0, 1, 2}, juniors.ActiveSlots, "no activeSlots means all slots")

	seniors := catalog.DivisionByName("Seniors")
	require.NotNil(t, seniors)
	assert.Equal(t, []int{0, 1}, seniors.ActiveSlots)

	lake := catalog.ActivityByKey("Lake")
	require.NotNil(t, lake)
	assert.Equal(t, model.ActivitySpecial, lake.Kind)
	assert.Equal(t, 2, lake.Span())
	assert.False(t, lake.EligibleForBunk("B2"))

	assert.Equal(t, 3, catalog.ActivityByKey("Pool").MaxPerBunk)
	require.Len(t, catalog.Fixed, 1)
	assert.Equal(t, "Lunch", catalog.Fixed[0].Name)
}

func TestValidateCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "field without sports",
			yaml: `
slots: [{label: A, start: "09:00", end: "10:00"}]
divisions: [{name: D, bunks: [B]}]
activities: [{name: F, kind: field}]
`,
		},
		{
			name: "invalid blackout rrule",
			yaml: `
slots: [{label: A, start: "09:00", end: "10:00"}]
divisions: [{name: D, bunks: [B]}]
activities:
  - name: P
    kind: special
    blackouts: [{rrule: "NOT A RULE", slots: [0]}]
`,
		},
		{
			name: "specialty league without fixed sport",
			yaml: `
slots: [{label: A, start: "09:00", end: "10:00"}]
divisions: [{name: D, bunks: [B]}]
activities: [{name: P, kind: special}]
leagues:
  - name: L
    teams: [B, C]
    divisions: [D]
    fields: [F]
    specialty: true
`,
		},
		{
			name: "regular league without sports",
			yaml: `
slots: [{label: A, start: "09:00", end: "10:00"}]
divisions: [{name: D, bunks: [B]}]
activities: [{name: P, kind: special}]
leagues:
  - name: L
    teams: [B, C]
    divisions: [D]
    fields: [F]
`,
		},
		{
			name: "bad override date",
			yaml: `
slots: [{label: A, start: "09:00", end: "10:00"}]
divisions: [{name: D, bunks: [B]}]
activities: [{name: P, kind: special}]
dailyOverrides: [{date: "July 10", activity: P, blockSlots: [0]}]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "catalog.yaml", tt.yaml)
			_, err := LoadCatalog(path)
			assert.Error(t, err)
		})
	}
}
