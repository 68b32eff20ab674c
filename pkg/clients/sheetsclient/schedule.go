package sheetsclient

import (
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/jordanelias/camplan/pkg/core/model"
)

// PublishSchedule writes one day's grid to the configured tab: a header row
// of slot labels, then one row per bunk grouped by division. Existing cell
// contents in the tab are cleared first.
func (c *Client) PublishSchedule(spreadsheetID, tab string, date time.Time, catalog *model.Catalog, rows map[string]model.ScheduleRow) error {
	if spreadsheetID == "" {
		return fmt.Errorf("no schedule sheet configured")
	}

	if err := c.ensureTab(spreadsheetID, tab); err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:Z", tab)
	if _, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Do(); err != nil {
		return fmt.Errorf("failed to clear schedule tab: %w", err)
	}

	values := buildScheduleValues(date, catalog, rows)
	valueRange := &sheets.ValueRange{Values: values}
	writeRange := fmt.Sprintf("%s!A1", tab)
	if _, err := c.service.Spreadsheets.Values.Update(spreadsheetID, writeRange, valueRange).
		ValueInputOption("RAW").Do(); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}

	return nil
}

// ensureTab adds the tab to the spreadsheet if it does not already exist.
func (c *Client) ensureTab(spreadsheetID, tab string) error {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == tab {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}
	if _, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Do(); err != nil {
		return fmt.Errorf("failed to add schedule tab: %w", err)
	}
	return nil
}

// buildScheduleValues renders the grid as sheet rows. The first row carries
// the date and slot labels; bunk rows follow in catalog division order.
func buildScheduleValues(date time.Time, catalog *model.Catalog, rows map[string]model.ScheduleRow) [][]interface{} {
	header := []interface{}{date.Format("Mon Jan 02 2006")}
	for _, slot := range catalog.Slots {
		header = append(header, fmt.Sprintf("%s (%s-%s)", slot.Label, slot.Start, slot.End))
	}

	values := [][]interface{}{header}
	for _, division := range catalog.Divisions {
		for _, bunk := range division.Bunks {
			row := []interface{}{bunk}
			grid := rows[bunk]
			for slot := range catalog.Slots {
				var entry *model.Entry
				if slot < len(grid) {
					entry = grid[slot]
				}
				row = append(row, formatCell(entry, division, slot))
			}
			values = append(values, row)
		}
	}
	return values
}

// formatCell renders one grid cell for display.
func formatCell(entry *model.Entry, division model.Division, slot int) string {
	if entry == nil {
		if !division.IsActiveSlot(slot) {
			return "-"
		}
		return ""
	}

	switch entry.Kind {
	case model.EntryContinuation:
		return "↳"
	case model.EntryFixed:
		return entry.Activity
	case model.EntryLeague:
		return fmt.Sprintf("%s: %s @ %s", entry.League, entry.Sport, entry.Field)
	case model.EntryHeadToHead:
		return fmt.Sprintf("%s vs %s @ %s", entry.Sport, entry.Opponent, entry.Field)
	default:
		if entry.Sport != "" {
			return fmt.Sprintf("%s (%s)", entry.Activity, entry.Sport)
		}
		return entry.Activity
	}
}
