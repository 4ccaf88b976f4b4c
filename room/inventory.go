package room

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// LoadInventory reads the room catalogue from a .json file (an array of
// rooms) or an .xlsx workbook whose first sheet has a header row with
// number, type, floor, base_rate and optionally description.
func LoadInventory(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".xlsx":
		return loadSheet(path)
	default:
		return nil, fmt.Errorf("unsupported inventory format %q", filepath.Ext(path))
	}
}

func loadJSON(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	var rooms []Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return NewCatalog(rooms)
}

func loadSheet(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read inventory sheet: %w", err)
	}
	if len(rows) == 0 {
		return NewCatalog(nil)
	}

	cols := map[string]int{}
	for i, header := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"number", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("inventory sheet has no %q column", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rooms []Room
	for n, row := range rows[1:] {
		number := cell(row, "number")
		if number == "" {
			continue
		}
		r := Room{
			Number:      number,
			Type:        cell(row, "type"),
			Description: cell(row, "description"),
		}
		if v := cell(row, "floor"); v != "" {
			floor, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad floor %q", n+2, v)
			}
			r.Floor = floor
		}
		if v := cell(row, "base_rate"); v != "" {
			rate, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad base_rate %q", n+2, v)
			}
			r.BaseRate = rate
		}
		rooms = append(rooms, r)
	}
	return NewCatalog(rooms)
}
