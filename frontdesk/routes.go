package frontdesk

import "github.com/gofiber/fiber/v3"

// Routes mounts the reservation endpoints on r, usually /api/v1/reservations.
func (h *Handler) Routes(r fiber.Router) {
	r.Post("", h.CreateReservation)
	r.Get("", h.GetAllReservations)
	r.Post("/swap", h.SwapRooms)
	r.Get("/:id", h.GetReservation)
	r.Post("/:id/rooms", h.AddRoom)
	r.Patch("/:id/rooms/:index/move", h.MoveRoom)
	r.Patch("/:id/rooms/:index/status", h.ChangeRoomStatus)

	r.Get("/:id/billing", h.GetBilling)
	r.Get("/:id/checkout", h.GetCheckout)
	r.Post("/:id/payments", h.AddPayment)
	r.Post("/:id/extras", h.AddExtra)
	r.Post("/:id/invoices", h.AddInvoice)
	r.Post("/:id/autocharge", h.AutoCharge)

	r.Post("/:id/reminders", h.AddReminder)
	r.Patch("/:id/reminders/:reminderId/ack", h.AcknowledgeReminder)
}

// AdminRoutes mounts the batch passes; callers guard r with AdminOnly.
func (h *Handler) AdminRoutes(r fiber.Router) {
	r.Post("/merge", h.Merge)
	r.Post("/sweep", h.Sweep)
}
