package frontdesk

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/assignment"
	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/hidenkeys/frontdesk/scheduler"
	"github.com/sirupsen/logrus"
)

// DropHeader carries the id of the drag gesture behind a move or swap.
const DropHeader = "X-Drop-Id"

type Handler struct {
	Service     *assignment.Service
	Profiles    *customer.Store
	Runner      *scheduler.Runner
	Feed        *scheduler.Feed
	Drops       *assignment.DropGuard
	MergePolicy assignment.MergePolicy
	Currency    string
	Log         *logrus.Logger
	Clock       func() time.Time
}

func (h *Handler) store() *ledger.Store {
	return h.Service.Store()
}

func (h *Handler) logger() *logrus.Logger {
	if h.Log != nil {
		return h.Log
	}
	return config.GetLogger()
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func (h *Handler) currency() string {
	if h.Currency == "" {
		return "EUR"
	}
	return h.Currency
}

// reservationID accepts a numeric id or a booking ref.
func (h *Handler) reservationID(c fiber.Ctx) (int64, error) {
	param := strings.TrimSpace(c.Params("id"))
	if id, err := strconv.ParseInt(param, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	if r, ok := h.store().GetByRef(param); ok {
		return r.ID, nil
	}
	return 0, fmt.Errorf("reservation %q: %w", param, reservation.ErrNotFound)
}

func stayIndex(c fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return 0, reservation.NewValidationError("invalid room index")
	}
	return index, nil
}

// claimDrop reserves the gesture in DropHeader; ok is false when it was
// already committed inside the guard window. release hands the gesture back
// after a failed commit. Requests without the header are never debounced.
func (h *Handler) claimDrop(c fiber.Ctx) (release func(), ok bool) {
	key := c.Get(DropHeader)
	if key == "" || h.Drops == nil {
		return func() {}, true
	}
	at := h.now()
	if !h.Drops.Allow(key, at) {
		return nil, false
	}
	return func() { h.Drops.Forget(key, at) }, true
}

// apply runs fn on one reservation inside a ledger transaction and returns
// the committed value. fn returning its input unchanged writes nothing.
func (h *Handler) apply(id int64, fn func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error)) (*reservation.Reservation, error) {
	err := h.store().Update(func(tx *ledger.Tx) error {
		r, ok := tx.Get(id)
		if !ok {
			return fmt.Errorf("reservation %d: %w", id, reservation.ErrNotFound)
		}
		next, err := fn(r, tx.Now())
		if err != nil {
			return err
		}
		if next != r {
			tx.Put(next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated, _ := h.store().Get(id)
	return updated, nil
}

type conflictBody struct {
	Room          string `json:"room"`
	ReservationID int64  `json:"reservationId"`
	BookingRef    string `json:"bookingRef"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// fail maps core errors to statuses: validation 400, not found 404,
// conflict 409, anything else 500.
func (h *Handler) fail(c fiber.Ctx, funcName string, data any, err error) error {
	var conflict *reservation.ConflictError
	var invalid *reservation.ValidationError
	switch {
	case errors.As(err, &conflict):
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"conflict": conflictBody{
				Room:          conflict.Room,
				ReservationID: conflict.ReservationID,
				BookingRef:    conflict.BookingRef,
				From:          conflict.From.Format(time.DateOnly),
				To:            conflict.To.Format(time.DateOnly),
			},
		})
	case errors.As(err, &invalid):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "problems": invalid.Problems})
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, reservation.ErrStayIndex),
		errors.Is(err, lifecycle.ErrReminderNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		config.LogError(h.logger(), "frontdesk", funcName, "handle request", data, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func badRequest(c fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
