package config

import (
	"fmt"
	"os"
	"time"

	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// CatalogFile is the YAML shape of the resource catalog: the time grid,
// divisions, activities with blackout rules, leagues, and fixed blocks.
type CatalogFile struct {
	Slots      []SlotDef       `yaml:"slots" validate:"required,min=1,dive"`
	Divisions  []DivisionDef   `yaml:"divisions" validate:"required,min=1,dive"`
	Activities []ActivityDef   `yaml:"activities" validate:"required,min=1,dive"`
	Leagues    []LeagueDef     `yaml:"leagues,omitempty" validate:"dive"`
	Fixed      []FixedBlockDef `yaml:"fixed,omitempty" validate:"dive"`
	Overrides  []DailyOverride `yaml:"dailyOverrides,omitempty" validate:"dive"`
}

type SlotDef struct {
	Label string `yaml:"label" validate:"required"`
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

type DivisionDef struct {
	Name        string   `yaml:"name" validate:"required"`
	Bunks       []string `yaml:"bunks" validate:"required,min=1"`
	ActiveSlots []int    `yaml:"activeSlots,omitempty"`
}

type ActivityDef struct {
	Name          string        `yaml:"name" validate:"required"`
	Kind          string        `yaml:"kind" validate:"required,oneof=field special"`
	Sports        []string      `yaml:"sports,omitempty"`
	Sharable      bool          `yaml:"sharable,omitempty"`
	Divisions     []string      `yaml:"divisions,omitempty"`
	ExcludedBunks []string      `yaml:"excludedBunks,omitempty"`
	MaxPerBunk    int           `yaml:"maxPerBunk,omitempty" validate:"omitempty,min=1"`
	SlotSpan      int           `yaml:"slotSpan,omitempty" validate:"omitempty,min=1"`
	Blackouts     []BlackoutDef `yaml:"blackouts,omitempty" validate:"dive"`
}

// BlackoutDef blocks an activity's slots on days matching the rrule.
type BlackoutDef struct {
	RRule string `yaml:"rrule" validate:"required"`
	Slots []int  `yaml:"slots" validate:"required,min=1"`
}

type LeagueDef struct {
	Name       string   `yaml:"name" validate:"required"`
	Teams      []string `yaml:"teams" validate:"required,min=2"`
	Divisions  []string `yaml:"divisions" validate:"required,min=1"`
	Sports     []string `yaml:"sports,omitempty"`
	FixedSport string   `yaml:"fixedSport,omitempty"`
	Fields     []string `yaml:"fields" validate:"required,min=1"`
	Specialty  bool     `yaml:"specialty,omitempty"`
	SlotSpan   int      `yaml:"slotSpan,omitempty" validate:"omitempty,min=1"`
}

type FixedBlockDef struct {
	Name      string   `yaml:"name" validate:"required"`
	StartSlot int      `yaml:"startSlot"`
	EndSlot   int      `yaml:"endSlot" validate:"gtefield=StartSlot"`
	Divisions []string `yaml:"divisions,omitempty"`
	Bunks     []string `yaml:"bunks,omitempty"`
	Trip      bool     `yaml:"trip,omitempty"`
}

// DailyOverride blocks or unblocks an activity's slots on one specific date.
// Overrides take precedence over blackout rules.
type DailyOverride struct {
	Date         string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Activity     string `yaml:"activity" validate:"required"`
	BlockSlots   []int  `yaml:"blockSlots,omitempty"`
	UnblockSlots []int  `yaml:"unblockSlots,omitempty"`
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := ValidateCatalog(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ValidateCatalog validates the catalog structure plus every rrule string.
func ValidateCatalog(file *CatalogFile) error {
	if err := validate.Struct(file); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	for _, act := range file.Activities {
		if act.Kind == "field" && len(act.Sports) == 0 {
			return fmt.Errorf("field activity %q lists no sports", act.Name)
		}
		for i, blackout := range act.Blackouts {
			if err := validateRRule(blackout.RRule); err != nil {
				return fmt.Errorf("invalid rrule in activity %q blackout %d: %w", act.Name, i, err)
			}
		}
	}

	for _, league := range file.Leagues {
		if league.Specialty && league.FixedSport == "" {
			return fmt.Errorf("specialty league %q has no fixed sport", league.Name)
		}
		if !league.Specialty && len(league.Sports) == 0 {
			return fmt.Errorf("league %q lists no sports to rotate", league.Name)
		}
	}

	return nil
}

// BuildCatalog compiles the catalog file for one schedule date: blackout
// rules matching the date become per-slot blocked sets, then daily
// overrides are applied on top.
func (f *CatalogFile) BuildCatalog(date time.Time) (*model.Catalog, error) {
	catalog := &model.Catalog{}

	for i, def := range f.Slots {
		catalog.Slots = append(catalog.Slots, model.TimeSlot{
			Index: i,
			Label: def.Label,
			Start: def.Start,
			End:   def.End,
		})
	}

	allSlots := make([]int, len(f.Slots))
	for i := range allSlots {
		allSlots[i] = i
	}
	for _, def := range f.Divisions {
		active := def.ActiveSlots
		if len(active) == 0 {
			active = allSlots
		}
		catalog.Divisions = append(catalog.Divisions, model.Division{
			Name:        def.Name,
			Bunks:       def.Bunks,
			ActiveSlots: active,
		})
	}

	for _, def := range f.Activities {
		blocked, err := compileBlackouts(def.Blackouts, date)
		if err != nil {
			return nil, fmt.Errorf("activity %q: %w", def.Name, err)
		}
		applyOverrides(blocked, f.Overrides, def.Name, date)

		kind := model.ActivityField
		if def.Kind == "special" {
			kind = model.ActivitySpecial
		}
		catalog.Activities = append(catalog.Activities, model.Activity{
			Kind:          kind,
			Name:          def.Name,
			Sports:        def.Sports,
			Sharable:      def.Sharable,
			Divisions:     def.Divisions,
			ExcludedBunks: def.ExcludedBunks,
			MaxPerBunk:    def.MaxPerBunk,
			SlotSpan:      def.SlotSpan,
			BlockedSlots:  blocked,
		})
	}

	for _, def := range f.Leagues {
		catalog.Leagues = append(catalog.Leagues, model.League{
			Name:       def.Name,
			Teams:      def.Teams,
			Divisions:  def.Divisions,
			Sports:     def.Sports,
			FixedSport: def.FixedSport,
			Fields:     def.Fields,
			Specialty:  def.Specialty,
			SlotSpan:   def.SlotSpan,
		})
	}

	for _, def := range f.Fixed {
		catalog.Fixed = append(catalog.Fixed, model.FixedBlock{
			Name:      def.Name,
			StartSlot: def.StartSlot,
			EndSlot:   def.EndSlot,
			Divisions: def.Divisions,
			Bunks:     def.Bunks,
			Trip:      def.Trip,
		})
	}

	return catalog, nil
}

// compileBlackouts returns the slot set blocked on the given date.
func compileBlackouts(blackouts []BlackoutDef, date time.Time) (map[int]bool, error) {
	blocked := make(map[int]bool)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	for _, blackout := range blackouts {
		rule, err := rrule.StrToRRule(blackout.RRule)
		if err != nil {
			return nil, fmt.Errorf("invalid blackout rrule: %w", err)
		}

		// Anchor the rule shortly before the date and check whether the date
		// is an occurrence.
		rule.DTStart(day.AddDate(0, 0, -7))
		matches := false
		for _, occurrence := range rule.Between(day.AddDate(0, 0, -7), day.AddDate(0, 0, 1), true) {
			if occurrence.Format("2006-01-02") == day.Format("2006-01-02") {
				matches = true
				break
			}
		}
		if !matches {
			continue
		}

		for _, slot := range blackout.Slots {
			blocked[slot] = true
		}
	}

	return blocked, nil
}

// applyOverrides applies date-specific block/unblock overrides for one
// activity. Overrides win over blackout rules.
func applyOverrides(blocked map[int]bool, overrides []DailyOverride, activity string, date time.Time) {
	dateStr := date.Format("2006-01-02")
	for _, override := range overrides {
		if override.Activity != activity || override.Date != dateStr {
			continue
		}
		for _, slot := range override.BlockSlots {
			blocked[slot] = true
		}
		for _, slot := range override.UnblockSlots {
			delete(blocked, slot)
		}
	}
}
