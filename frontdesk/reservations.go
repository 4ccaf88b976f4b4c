package frontdesk

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/assignment"
	"github.com/hidenkeys/frontdesk/billing"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/hidenkeys/frontdesk/middleware"
	"github.com/hidenkeys/frontdesk/reservation"
)

// parseDate accepts a calendar date or a full RFC 3339 timestamp and returns
// the calendar date as written by the client, at midnight UTC.
func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return reservation.DateOnly(t), nil
	}
	return time.Time{}, reservation.NewValidationError("invalid " + field + " date " + v)
}

type bookingPayload struct {
	assignment.BookingRequest
	Checkin  string `json:"checkin"`
	Checkout string `json:"checkout"`
}

// CreateReservation books one or more rooms for the same dates. Nothing is
// created when any room is taken.
func (h *Handler) CreateReservation(c fiber.Ctx) error {
	payload := new(bookingPayload)
	if err := c.Bind().JSON(payload); err != nil {
		return badRequest(c, err)
	}
	req := payload.BookingRequest
	var err error
	if req.Checkin, err = parseDate("checkin", payload.Checkin); err != nil {
		return h.fail(c, "CreateReservation", payload, err)
	}
	if req.Checkout, err = parseDate("checkout", payload.Checkout); err != nil {
		return h.fail(c, "CreateReservation", payload, err)
	}

	created, err := h.Service.CreateBooking(req)
	if err != nil {
		return h.fail(c, "CreateReservation", req.Rooms, err)
	}
	return c.Status(http.StatusCreated).JSON(created)
}

// GetAllReservations {params [status, room, from, to, q]}; from/to keep the
// reservations with a stay overlapping the range.
func (h *Handler) GetAllReservations(c fiber.Ctx) error {
	status := reservation.Status(c.Query("status"))
	room := c.Query("room")
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := parseDate("from", v)
		if err != nil {
			return h.fail(c, "GetAllReservations", v, err)
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDate("to", v)
		if err != nil {
			return h.fail(c, "GetAllReservations", v, err)
		}
		to = t
	}

	out := []*reservation.Reservation{}
	for _, r := range h.store().All() {
		if status != "" && r.Status != status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.GuestName+" "+r.Booker.Name+" "+r.BookingRef), q) {
			continue
		}
		if room == "" && from.IsZero() && to.IsZero() {
			out = append(out, r)
			continue
		}
		for _, s := range r.Rooms {
			if room != "" && s.RoomNumber != room {
				continue
			}
			if !from.IsZero() && !s.Checkout.After(from) {
				continue
			}
			if !to.IsZero() && !s.Checkin.Before(to) {
				continue
			}
			out = append(out, r)
			break
		}
	}
	return c.Status(http.StatusOK).JSON(out)
}

func (h *Handler) GetReservation(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "GetReservation", c.Params("id"), err)
	}
	r, ok := h.store().Get(id)
	if !ok {
		return h.fail(c, "GetReservation", id, reservation.ErrNotFound)
	}
	return c.Status(http.StatusOK).JSON(r)
}

type stayPayload struct {
	assignment.StayRequest
	Checkin  string `json:"checkin"`
	Checkout string `json:"checkout"`
}

// AddRoom extends a reservation with another room.
func (h *Handler) AddRoom(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AddRoom", c.Params("id"), err)
	}
	payload := new(stayPayload)
	if err := c.Bind().JSON(payload); err != nil {
		return badRequest(c, err)
	}
	req := payload.StayRequest
	if req.Checkin, err = parseDate("checkin", payload.Checkin); err != nil {
		return h.fail(c, "AddRoom", payload, err)
	}
	if req.Checkout, err = parseDate("checkout", payload.Checkout); err != nil {
		return h.fail(c, "AddRoom", payload, err)
	}

	updated, err := h.Service.AddStay(id, req)
	if err != nil {
		return h.fail(c, "AddRoom", req, err)
	}
	return c.Status(http.StatusCreated).JSON(updated)
}

type moveRequest struct {
	Room string `json:"room"`
}

// MoveRoom {body: {room}} relocates one stay. Repeats of a committed drag
// gesture inside the drop window are refused with 429.
func (h *Handler) MoveRoom(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "MoveRoom", c.Params("id"), err)
	}
	index, err := stayIndex(c)
	if err != nil {
		return h.fail(c, "MoveRoom", c.Params("index"), err)
	}
	req := new(moveRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}
	if strings.TrimSpace(req.Room) == "" {
		return h.fail(c, "MoveRoom", req, reservation.NewValidationError("room is required"))
	}
	release, ok := h.claimDrop(c)
	if !ok {
		return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{"error": "drop already handled"})
	}

	updated, err := h.Service.MoveStay(id, index, req.Room)
	if err != nil {
		release()
		return h.fail(c, "MoveRoom", req, err)
	}
	return c.Status(http.StatusOK).JSON(updated)
}

type swapRequest struct {
	A assignment.StaySelector `json:"a"`
	B assignment.StaySelector `json:"b"`
}

// SwapRooms {body: {a, b}} exchanges the rooms of two stays.
func (h *Handler) SwapRooms(c fiber.Ctx) error {
	req := new(swapRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}
	if err := reservation.Validator().Struct(req); err != nil {
		return h.fail(c, "SwapRooms", req, reservation.NewValidationError(reservation.Problems(err)...))
	}
	release, ok := h.claimDrop(c)
	if !ok {
		return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{"error": "drop already handled"})
	}

	a, b, err := h.Service.SwapStays(req.A, req.B)
	if err != nil {
		release()
		return h.fail(c, "SwapRooms", req, err)
	}
	if a.ID == b.ID {
		return c.Status(http.StatusOK).JSON([]*reservation.Reservation{a})
	}
	return c.Status(http.StatusOK).JSON([]*reservation.Reservation{a, b})
}

type statusRequest struct {
	Status reservation.Status `json:"status"`
}

type statusResponse struct {
	Reservation *reservation.Reservation `json:"reservation"`
	Warnings    []string                 `json:"warnings"`
	AutoCharge  *reservation.Payment     `json:"autoCharge,omitempty"`
}

// ChangeRoomStatus {body: {status}} drives one stay through check-in,
// check-out, no-show or cancellation. Checking out first tries the booker's
// auto-charge card; outstanding billing issues come back as warnings and
// never block the checkout.
func (h *Handler) ChangeRoomStatus(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "ChangeRoomStatus", c.Params("id"), err)
	}
	index, err := stayIndex(c)
	if err != nil {
		return h.fail(c, "ChangeRoomStatus", c.Params("index"), err)
	}
	req := new(statusRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}

	var charged *reservation.Payment
	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		next, err := lifecycle.SetStayStatus(r, index, req.Status, now)
		if err != nil || next == r {
			return next, err
		}
		if actor := middleware.Actor(c); actor != "" {
			next.ActivityLog[len(next.ActivityLog)-1].Message += " by " + actor
		}
		if req.Status == reservation.StatusCheckedOut && h.Profiles != nil {
			next, charged = billing.ApplyAutoCharge(next, h.Profiles.CardsFor(r.Booker.ProfileID, r.Booker.Name), now)
		}
		return next, nil
	})
	if err != nil {
		return h.fail(c, "ChangeRoomStatus", req, err)
	}

	resp := statusResponse{Reservation: updated, Warnings: []string{}, AutoCharge: charged}
	if req.Status == reservation.StatusCheckedOut {
		if warnings := billing.ValidateCheckout(updated, h.currency()); warnings != nil {
			resp.Warnings = warnings
		}
	}
	return c.Status(http.StatusOK).JSON(resp)
}
