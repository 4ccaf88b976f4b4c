package customer

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/reservation"
)

// Bookings is the read side of the reservation ledger.
type Bookings interface {
	All() []*reservation.Reservation
}

type Handler struct {
	Store    *Store
	Bookings Bookings
}

func (h *Handler) Update(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(http.StatusBadRequest).SendString("invalid profile id")
	}

	profile := new(Profile)
	if err := c.Bind().JSON(profile); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	profile.ID = id

	saved, err := h.Store.Put(c.Context(), *profile)
	if err != nil {
		if reservation.IsValidation(err) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if saved == nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(http.StatusOK).JSON(saved)
}

// FindByName find profile by search {param: [name]}
func (h *Handler) FindByName(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.Store.Search(c.Query("name", "")))
}

func (h *Handler) GetBookings(c fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := h.Store.Get(id); !ok {
		return c.Status(http.StatusNotFound).SendString("invalid profile id")
	}

	bookings := []*reservation.Reservation{}
	for _, r := range h.Bookings.All() {
		if r.Booker.ProfileID == id {
			bookings = append(bookings, r)
		}
	}

	return c.Status(http.StatusOK).JSON(bookings)
}

func (h *Handler) GetById(c fiber.Ctx) error {
	profile, ok := h.Store.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).SendString("invalid profile id")
	}

	return c.Status(http.StatusOK).JSON(profile)
}

func (h *Handler) GetAll(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.Store.All())
}
