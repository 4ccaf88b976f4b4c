package cmd

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/frontdesk"
	"github.com/hidenkeys/frontdesk/middleware"
	"github.com/hidenkeys/frontdesk/room"
)

func reservationRoutes(r fiber.Router, h *frontdesk.Handler) {
	h.Routes(r)
}

func adminRoutes(r fiber.Router, h *frontdesk.Handler) {
	r.Use(middleware.AdminOnly)
	h.AdminRoutes(r)
}

func roomRoutes(r fiber.Router, h *room.Handler) {
	r.Get("", h.SearchWithFilter)
	r.Get("/types", h.GetAllTypes)
	r.Get("/:number", h.GetByNumber)
	r.Get("/:number/availability", h.GetAvailability)
	r.Get("/:number/occupant", h.GetOccupant)
}

func profileRoutes(r fiber.Router, h *customer.Handler) {
	r.Get("", h.GetAll)
	r.Get("/search/findByName", h.FindByName)
	r.Get("/:id", h.GetById)
	r.Put("/:id", h.Update)
	r.Get("/:id/bookings", h.GetBookings)
}

func healthRoutes(r fiber.Router) {
	r.Get("/healthz", func(c fiber.Ctx) error {
		return c.Status(http.StatusOK).SendString("ok")
	})
}
