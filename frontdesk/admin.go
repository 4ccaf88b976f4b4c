package frontdesk

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/assignment"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/hidenkeys/frontdesk/reservation"
)

type reminderPayload struct {
	DueDate string `json:"dueDate"`
	Message string `json:"message"`
}

func (h *Handler) AddReminder(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AddReminder", c.Params("id"), err)
	}
	req := new(reminderPayload)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return h.fail(c, "AddReminder", req, err)
	}

	var added reservation.Reminder
	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		next, rem, err := lifecycle.AddReminder(r, due, req.Message, now)
		added = rem
		return next, err
	})
	if err != nil {
		return h.fail(c, "AddReminder", req, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"reminder": added, "reservation": updated})
}

// AcknowledgeReminder marks a reminder handled so it never surfaces again.
func (h *Handler) AcknowledgeReminder(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AcknowledgeReminder", c.Params("id"), err)
	}
	reminderID := c.Params("reminderId")

	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		return lifecycle.AcknowledgeReminder(r, reminderID, now)
	})
	if err != nil {
		return h.fail(c, "AcknowledgeReminder", reminderID, err)
	}
	if h.Feed != nil {
		h.Feed.Dismiss(reminderID)
	}
	return c.Status(http.StatusOK).JSON(updated)
}

func (h *Handler) GetNotifications(c fiber.Ctx) error {
	if h.Feed == nil {
		return c.Status(http.StatusOK).JSON([]lifecycle.Notification{})
	}
	return c.Status(http.StatusOK).JSON(h.Feed.Recent())
}

// Merge {params [sameBooker]} folds adjacent single-room reservations into
// multi-room ones.
func (h *Handler) Merge(c fiber.Ctx) error {
	policy := h.MergePolicy
	if policy == nil {
		policy = assignment.DefaultMergePolicy(h.Service.Inventory().Floor)
	}
	if strings.EqualFold(c.Query("sameBooker"), "true") {
		policy = assignment.SameBooker(policy)
	}

	report, err := h.Service.Merge(policy)
	if err != nil {
		return h.fail(c, "Merge", nil, err)
	}
	return c.Status(http.StatusOK).JSON(report)
}

// Sweep runs the option-expiry and reminder pass now.
func (h *Handler) Sweep(c fiber.Ctx) error {
	if h.Runner == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "scheduler not configured"})
	}
	res, err := h.Runner.RunOnce(c.Context())
	if err != nil {
		return h.fail(c, "Sweep", nil, err)
	}
	return c.Status(http.StatusOK).JSON(res)
}
