package room

import (
	"fmt"
	"time"

	"github.com/hidenkeys/frontdesk/occupancy"
	"github.com/xuri/excelize/v2"
)

// GridRow is one room's line in the occupancy calendar. Cells hold the
// booking reference occupying the room on each night, or "" when free.
type GridRow struct {
	Room  Room     `json:"room"`
	Cells []string `json:"cells"`
}

// Grid lays out nights [from, from+days) for every room in the catalogue.
func Grid(rooms []Room, ix *occupancy.Index, from time.Time, days int) []GridRow {
	grid := make([]GridRow, 0, len(rooms))
	for _, r := range rooms {
		row := GridRow{Room: r, Cells: make([]string, days)}
		for d := 0; d < days; d++ {
			if e, ok := ix.OccupantOf(r.Number, from.AddDate(0, 0, d), occupancy.PreferArrival); ok {
				row.Cells[d] = e.BookingRef
			}
		}
		grid = append(grid, row)
	}
	return grid
}

// WriteGridSheet exports a grid to an .xlsx workbook.
func WriteGridSheet(path string, grid []GridRow, from time.Time, days int) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Occupancy"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Room", "Type", "Floor"}
	for d := 0; d < days; d++ {
		headers = append(headers, from.AddDate(0, 0, d).Format(time.DateOnly))
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, row := range grid {
		line := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.Room.Number)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.Room.Type)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.Room.Floor)
		for d, ref := range row.Cells {
			cell, _ := excelize.CoordinatesToCellName(d+4, line)
			f.SetCellValue(sheet, cell, ref)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save occupancy sheet: %w", err)
	}
	return nil
}
