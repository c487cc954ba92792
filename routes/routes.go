package routes

import (
	"slotboard/booking"
	"slotboard/middleware"
	"slotboard/panel"
	"slotboard/ratelim"

	"github.com/julienschmidt/httprouter"
)

// AddBookingRoutes wires the booking core's inbound operations. Booking
// submission is rate-limited; panel administration is staff-gated.
func AddBookingRoutes(router *httprouter.Router, h *booking.Handlers, hub *panel.Hub, rl *ratelim.RateLimiter) {
	router.POST("/api/panels", middleware.Authenticate(middleware.RequireStaff(h.CreatePanel)))
	router.GET("/api/panels/:panelid", h.GetPanel)
	router.DELETE("/api/panels/:panelid", middleware.Authenticate(middleware.RequireStaff(h.ClearPanel)))

	router.POST("/api/bookings", rl.Limit(middleware.Authenticate(h.SubmitBooking)))
	router.POST("/api/decisions", middleware.Authenticate(middleware.RequireStaff(h.Decide)))
	router.POST("/api/slots/:slotid/reset", middleware.Authenticate(middleware.RequireStaff(h.ResetSlot)))

	router.GET("/ws/panels/:panelid", hub.HandleWS)
}
