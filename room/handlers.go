package room

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/occupancy"
)

// Snapshot gives the handlers a read-only occupancy view of the ledger.
type Snapshot interface {
	Index() *occupancy.Index
	Now() time.Time
}

type Handler struct {
	Inventory Inventory
	Ledger    Snapshot
}

// SearchWithFilter params {filter: [type, floor], value}
func (h *Handler) SearchWithFilter(c fiber.Ctx) error {
	filter := c.Query("filter")
	value := c.Query("value")

	rooms := h.Inventory.Rooms()
	switch filter {
	case "":
		return c.Status(http.StatusOK).JSON(rooms)
	case "type":
		out := []Room{}
		for _, r := range rooms {
			if strings.EqualFold(r.Type, value) {
				out = append(out, r)
			}
		}
		return c.Status(http.StatusOK).JSON(out)
	case "floor":
		floor, err := strconv.Atoi(value)
		if err != nil {
			return c.Status(http.StatusBadRequest).SendString("invalid floor")
		}
		out := []Room{}
		for _, r := range rooms {
			if r.Floor == floor {
				out = append(out, r)
			}
		}
		return c.Status(http.StatusOK).JSON(out)
	default:
		return c.Status(http.StatusBadRequest).SendString("unknown filter " + filter)
	}
}

func (h *Handler) GetByNumber(c fiber.Ctx) error {
	r, ok := h.Inventory.Lookup(c.Params("number"))
	if !ok {
		return c.Status(http.StatusNotFound).SendString("unknown room")
	}
	return c.Status(http.StatusOK).JSON(r)
}

func (h *Handler) GetAllTypes(c fiber.Ctx) error {
	seen := map[string]bool{}
	types := []string{}
	for _, r := range h.Inventory.Rooms() {
		if !seen[r.Type] {
			seen[r.Type] = true
			types = append(types, r.Type)
		}
	}
	return c.Status(http.StatusOK).JSON(types)
}

type availabilityResponse struct {
	Room      string         `json:"room"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Free      bool           `json:"free"`
	Conflicts []bookedPeriod `json:"conflicts"`
}

type bookedPeriod struct {
	BookingRef string `json:"bookingRef"`
	Checkin    string `json:"checkin"`
	Checkout   string `json:"checkout"`
	Status     string `json:"status"`
}

// GetAvailability {params [from, to]} reports whether the room is free for
// the half-open range and which stays are in the way.
func (h *Handler) GetAvailability(c fiber.Ctx) error {
	number := c.Params("number")
	if _, ok := h.Inventory.Lookup(number); !ok {
		return c.Status(http.StatusNotFound).SendString("unknown room")
	}
	from, err := parseDay(c.Query("from"))
	if err != nil {
		return c.Status(http.StatusBadRequest).SendString("invalid from date")
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		return c.Status(http.StatusBadRequest).SendString("invalid to date")
	}
	if !from.Before(to) {
		return c.Status(http.StatusBadRequest).SendString("from must be before to")
	}

	resp := availabilityResponse{
		Room:      number,
		From:      from.Format(time.DateOnly),
		To:        to.Format(time.DateOnly),
		Conflicts: []bookedPeriod{},
	}
	for _, e := range h.Ledger.Index().Conflicts(number, from, to) {
		resp.Conflicts = append(resp.Conflicts, bookedPeriod{
			BookingRef: e.BookingRef,
			Checkin:    e.Stay.Checkin.Format(time.DateOnly),
			Checkout:   e.Stay.Checkout.Format(time.DateOnly),
			Status:     string(e.Stay.Status),
		})
	}
	resp.Free = len(resp.Conflicts) == 0
	return c.Status(http.StatusOK).JSON(resp)
}

// GetOccupant {params [day, prefer=arrival|departure]}
func (h *Handler) GetOccupant(c fiber.Ctx) error {
	number := c.Params("number")
	if _, ok := h.Inventory.Lookup(number); !ok {
		return c.Status(http.StatusNotFound).SendString("unknown room")
	}
	day := h.Ledger.Now()
	if v := c.Query("day"); v != "" {
		parsed, err := parseDay(v)
		if err != nil {
			return c.Status(http.StatusBadRequest).SendString("invalid day")
		}
		day = parsed
	}
	pref := occupancy.PreferArrival
	switch c.Query("prefer") {
	case "", "arrival":
	case "departure":
		pref = occupancy.PreferDeparture
	default:
		return c.Status(http.StatusBadRequest).SendString("prefer must be arrival or departure")
	}

	e, ok := h.Ledger.Index().OccupantOf(number, day, pref)
	if !ok {
		return c.Status(http.StatusOK).JSON(fiber.Map{"room": number, "occupied": false})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"room":          number,
		"occupied":      true,
		"reservationId": e.ReservationID,
		"bookingRef":    e.BookingRef,
		"stayIndex":     e.StayIndex,
		"stay":          e.Stay,
	})
}

func parseDay(v string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(v))
}
