package room

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/occupancy"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Room{{Number: "101", Type: "double"}, {Number: "101", Type: "single"}})
	if err == nil || !strings.Contains(err.Error(), "101") {
		t.Fatalf("expected duplicate room error for 101, got %v", err)
	}
	if _, err := NewCatalog([]Room{{Number: "205", Type: "double"}, {Number: "102"}, {Number: " 205 ", Type: "single"}}); err == nil {
		t.Fatalf("expected duplicate room error for a padded number")
	}
}

func TestNewCatalog_DerivesFloorAndSorts(t *testing.T) {
	c, err := NewCatalog([]Room{{Number: "1203", Type: "suite"}, {Number: "305", Type: "double"}, {Number: "12", Type: "single", Floor: 4}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	rooms := c.Rooms()
	if rooms[0].Number != "12" || rooms[1].Number != "305" || rooms[2].Number != "1203" {
		t.Fatalf("unexpected order %v", rooms)
	}
	if floor, _ := c.Floor("305"); floor != 3 {
		t.Fatalf("expected floor 3, got %d", floor)
	}
	if floor, _ := c.Floor("12"); floor != 4 {
		t.Fatalf("explicit floor must win, got %d", floor)
	}
	if _, ok := c.Floor("999"); ok {
		t.Fatalf("unknown room must have no floor")
	}
}

func TestLoadInventory_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	raw := `[{"number":"101","type":"double","floor":1,"baseRate":"120.00"}]`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r, ok := c.Lookup("101")
	if !ok || !r.BaseRate.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected room %+v", r)
	}
}

func TestLoadInventory_Sheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"number", "type", "floor", "base_rate"},
		{"201", "twin", 2, "95.50"},
		{"202", "double", "", "110"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	c, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r, ok := c.Lookup("201")
	if !ok || r.Type != "twin" || !r.BaseRate.Equal(decimal.RequireFromString("95.5")) {
		t.Fatalf("unexpected room %+v", r)
	}
	if floor, _ := c.Floor("202"); floor != 2 {
		t.Fatalf("expected derived floor 2, got %d", floor)
	}
}

func TestLoadInventory_UnknownExtension(t *testing.T) {
	if _, err := LoadInventory("rooms.csv"); err == nil {
		t.Fatalf("expected error for csv inventory")
	}
}

type fixedSnapshot struct {
	ix  *occupancy.Index
	now time.Time
}

func (s fixedSnapshot) Index() *occupancy.Index { return s.ix }
func (s fixedSnapshot) Now() time.Time          { return s.now }

func testHandler(t *testing.T) *Handler {
	t.Helper()
	c, err := NewCatalog([]Room{{Number: "101", Type: "double"}, {Number: "102", Type: "single"}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ix := occupancy.Build([]*reservation.Reservation{{
		ID:         1,
		BookingRef: "BK-000001",
		Status:     reservation.StatusConfirmed,
		Rooms: []reservation.RoomStay{{
			RoomNumber: "101",
			Status:     reservation.StatusConfirmed,
			Checkin:    day("2024-01-10"),
			Checkout:   day("2024-01-12"),
		}},
	}})
	return &Handler{Inventory: c, Ledger: fixedSnapshot{ix: ix, now: day("2024-01-11")}}
}

func TestGrid(t *testing.T) {
	h := testHandler(t)
	grid := Grid(h.Inventory.Rooms(), h.Ledger.Index(), day("2024-01-09"), 4)
	if got := grid[0].Cells; got[0] != "" || got[1] != "BK-000001" || got[2] != "BK-000001" || got[3] != "" {
		t.Fatalf("unexpected cells %v", got)
	}
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	if err := WriteGridSheet(path, grid, day("2024-01-09"), 4); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
}

func TestAvailabilityHandler(t *testing.T) {
	h := testHandler(t)
	app := fiber.New()
	app.Get("/rooms/:number/availability", h.GetAvailability)
	app.Get("/rooms/:number/occupant", h.GetOccupant)

	cases := []struct {
		url  string
		code int
		free bool
	}{
		{"/rooms/101/availability?from=2024-01-11&to=2024-01-13", http.StatusOK, false},
		{"/rooms/101/availability?from=2024-01-12&to=2024-01-13", http.StatusOK, true},
		{"/rooms/101/availability?from=2024-01-12&to=2024-01-12", http.StatusBadRequest, false},
		{"/rooms/999/availability?from=2024-01-12&to=2024-01-13", http.StatusNotFound, false},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.url, nil))
		if err != nil {
			t.Fatalf("%s: %v", tc.url, err)
		}
		if resp.StatusCode != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.url, tc.code, resp.StatusCode)
		}
		if tc.code != http.StatusOK {
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		var out availabilityResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Free != tc.free {
			t.Fatalf("%s: expected free=%v", tc.url, tc.free)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/rooms/101/occupant", nil))
	if err != nil {
		t.Fatalf("occupant: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var occ map[string]any
	_ = json.Unmarshal(body, &occ)
	if occ["bookingRef"] != "BK-000001" {
		t.Fatalf("expected BK-000001 in room 101 today, got %s", body)
	}
}
