package room

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Room struct {
	Number      string          `json:"number" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Floor       int             `json:"floor"`
	BaseRate    decimal.Decimal `json:"baseRate"`
	Description string          `json:"description,omitempty"`
}

// Inventory is the read-only room catalogue the engine consults for room
// types, rates and floors.
type Inventory interface {
	Lookup(number string) (Room, bool)
	Rooms() []Room
	Floor(number string) (int, bool)
}

type Catalog struct {
	rooms    []Room
	byNumber map[string]int
}

func NewCatalog(rooms []Room) (*Catalog, error) {
	c := &Catalog{byNumber: make(map[string]int, len(rooms))}
	seen := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		r.Number = strings.TrimSpace(r.Number)
		if r.Number == "" {
			return nil, fmt.Errorf("room without a number")
		}
		if seen[r.Number] {
			return nil, fmt.Errorf("room %s listed twice", r.Number)
		}
		seen[r.Number] = true
		if r.Floor == 0 {
			r.Floor = FloorFromNumber(r.Number)
		}
		c.rooms = append(c.rooms, r)
	}
	sort.SliceStable(c.rooms, func(i, j int) bool { return lessNumber(c.rooms[i].Number, c.rooms[j].Number) })
	for i, r := range c.rooms {
		c.byNumber[r.Number] = i
	}
	return c, nil
}

func (c *Catalog) Lookup(number string) (Room, bool) {
	i, ok := c.byNumber[number]
	if !ok {
		return Room{}, false
	}
	return c.rooms[i], true
}

func (c *Catalog) Rooms() []Room {
	out := make([]Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

func (c *Catalog) Floor(number string) (int, bool) {
	r, ok := c.Lookup(number)
	if !ok {
		return 0, false
	}
	return r.Floor, true
}

// Types lists the distinct room types in catalogue order.
func (c *Catalog) Types() []string {
	seen := map[string]bool{}
	var types []string
	for _, r := range c.rooms {
		if !seen[r.Type] {
			seen[r.Type] = true
			types = append(types, r.Type)
		}
	}
	return types
}

// FloorFromNumber reads the floor off a hotel-style room number: "305" is on
// floor 3, "12" on floor 0. Non-numeric numbers have no floor.
func FloorFromNumber(number string) int {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil || n < 0 {
		return 0
	}
	return n / 100
}

func lessNumber(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}
