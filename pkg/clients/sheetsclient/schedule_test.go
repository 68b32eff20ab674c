package sheetsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanelias/camplan/pkg/core/model"
)

func TestBuildScheduleValues(t *testing.T) {
	catalog := &model.Catalog{
		Slots: []model.TimeSlot{
			{Index: 0, Label: "Morning", Start: "09:00", End: "10:30"},
			{Index: 1, Label: "Midday", Start: "11:00", End: "12:30"},
		},
		Divisions: []model.Division{
			{Name: "Juniors", Bunks: []string{"B1", "B2"}, ActiveSlots: []int{0, 1}},
		},
	}
	date := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	rows := map[string]model.ScheduleRow{
		"B1": {
			&model.Entry{Kind: model.EntryLeague, Activity: "Junior League", League: "Junior League", Sport: "basketball", Field: "Court", Span: 1},
			&model.Entry{Kind: model.EntryGeneral, Activity: "Pool", Span: 1},
		},
		"B2": {
			&model.Entry{Kind: model.EntryHeadToHead, Activity: "Court", Sport: "volleyball", Field: "Court", Opponent: "B1", Span: 1},
			nil,
		},
	}

	values := buildScheduleValues(date, catalog, rows)
	require.Len(t, values, 3, "header plus one row per bunk")

	assert.Equal(t, "Thu Jul 10 2025", values[0][0])
	assert.Equal(t, "Morning (09:00-10:30)", values[0][1])

	assert.Equal(t, "B1", values[1][0])
	assert.Equal(t, "Junior League: basketball @ Court", values[1][1])
	assert.Equal(t, "Pool", values[1][2])

	assert.Equal(t, "B2", values[2][0])
	assert.Equal(t, "volleyball vs B1 @ Court", values[2][1])
	assert.Equal(t, "", values[2][2], "empty active cell renders blank")
}

func TestFormatCell(t *testing.T) {
	division := model.Division{Name: "Juniors", ActiveSlots: []int{0}}

	tests := []struct {
		name  string
		entry *model.Entry
		slot  int
		want  string
	}{
		{
			name:  "inactive empty cell",
			entry: nil,
			slot:  1,
			want:  "-",
		},
		{
			name:  "active empty cell",
			entry: nil,
			slot:  0,
			want:  "",
		},
		{
			name:  "fixed block",
			entry: &model.Entry{Kind: model.EntryFixed, Activity: "Lunch"},
			slot:  0,
			want:  "Lunch",
		},
		{
			name:  "continuation",
			entry: &model.Entry{Kind: model.EntryContinuation, Activity: "Lake"},
			slot:  0,
			want:  "↳",
		},
		{
			name:  "general with sport",
			entry: &model.Entry{Kind: model.EntryGeneral, Activity: "Court", Sport: "basketball"},
			slot:  0,
			want:  "Court (basketball)",
		},
		{
			name:  "general special",
			entry: &model.Entry{Kind: model.EntryGeneral, Activity: "Pool"},
			slot:  0,
			want:  "Pool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.entry, division, tt.slot))
		})
	}
}
