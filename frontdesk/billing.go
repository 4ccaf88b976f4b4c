package frontdesk

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/billing"
	"github.com/hidenkeys/frontdesk/reservation"
)

type billingResponse struct {
	BookingRef string         `json:"bookingRef"`
	Currency   string         `json:"currency"`
	Totals     billing.Totals `json:"totals"`
}

func (h *Handler) GetBilling(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "GetBilling", c.Params("id"), err)
	}
	r, ok := h.store().Get(id)
	if !ok {
		return h.fail(c, "GetBilling", id, reservation.ErrNotFound)
	}
	return c.Status(http.StatusOK).JSON(billingResponse{
		BookingRef: r.BookingRef,
		Currency:   h.currency(),
		Totals:     billing.CalculateTotals(r),
	})
}

// GetCheckout reports whether checkout is clean. warnings lists what is
// still open; checkout stays allowed either way.
func (h *Handler) GetCheckout(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "GetCheckout", c.Params("id"), err)
	}
	r, ok := h.store().Get(id)
	if !ok {
		return h.fail(c, "GetCheckout", id, reservation.ErrNotFound)
	}
	warnings := billing.ValidateCheckout(r, h.currency())
	if warnings == nil {
		return c.Status(http.StatusOK).JSON(fiber.Map{"clean": true, "warnings": []string{}})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"clean": false, "warnings": warnings})
}

func (h *Handler) AddPayment(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AddPayment", c.Params("id"), err)
	}
	req := new(billing.PaymentRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}

	var added reservation.Payment
	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		next, p, err := billing.AddPayment(r, *req, now)
		added = p
		return next, err
	})
	if err != nil {
		return h.fail(c, "AddPayment", req, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"payment": added, "reservation": updated})
}

func (h *Handler) AddExtra(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AddExtra", c.Params("id"), err)
	}
	req := new(billing.ExtraRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}

	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		return billing.AddExtra(r, *req, now)
	})
	if err != nil {
		return h.fail(c, "AddExtra", req, err)
	}
	return c.Status(http.StatusCreated).JSON(updated)
}

func (h *Handler) AddInvoice(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AddInvoice", c.Params("id"), err)
	}
	req := new(billing.InvoiceRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, err)
	}

	var added reservation.Invoice
	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		next, inv, err := billing.AddInvoice(r, *req, now)
		added = inv
		return next, err
	})
	if err != nil {
		return h.fail(c, "AddInvoice", req, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"invoice": added, "reservation": updated})
}

// AutoCharge charges the outstanding amount to the booker's auto-charge
// card. Nothing owed or no such card answers 200 with a null payment.
func (h *Handler) AutoCharge(c fiber.Ctx) error {
	id, err := h.reservationID(c)
	if err != nil {
		return h.fail(c, "AutoCharge", c.Params("id"), err)
	}
	if h.Profiles == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "no profile store"})
	}

	var charged *reservation.Payment
	updated, err := h.apply(id, func(r *reservation.Reservation, now time.Time) (*reservation.Reservation, error) {
		next, p := billing.ApplyAutoCharge(r, h.Profiles.CardsFor(r.Booker.ProfileID, r.Booker.Name), now)
		charged = p
		return next, nil
	})
	if err != nil {
		return h.fail(c, "AutoCharge", id, err)
	}
	if charged == nil {
		return c.Status(http.StatusOK).JSON(fiber.Map{"payment": nil, "reservation": updated})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"payment": charged, "reservation": updated})
}
