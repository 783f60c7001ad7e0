package routes

import (
	"github.com/anjiri1684/hotel_booking/handlers"
	"github.com/anjiri1684/hotel_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/bookings", handlers.AdminGetAllBookings)
	admin.Put("/bookings/:bookingId/status", handlers.UpdateBookingStatus)
	admin.Put("/bookings/:bookingId/payment-status", handlers.UpdatePaymentStatus)
	admin.Post("/bookings/:bookingId/cancel", handlers.CancelBooking)
	admin.Post("/bookings/:bookingId/check-in-reminder", handlers.SendCheckInReminder)
	admin.Post("/bookings/:bookingId/payment-reminder", handlers.SendPaymentReminder)

	rooms := admin.Group("/rooms")
	rooms.Post("", handlers.CreateRoom)
	rooms.Put("/:roomId/toggle-availability", handlers.ToggleRoomAvailability)

	admin.Get("/booking-statuses", handlers.ListBookingStatuses)
	admin.Get("/payment-statuses", handlers.ListPaymentStatuses)
}
