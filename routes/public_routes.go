package routes

import (
	"github.com/anjiri1684/hotel_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/register", handlers.RegisterUser)
	api.Post("/login", handlers.LoginUser)

	api.Get("/rooms", handlers.ListRooms)
	api.Get("/rooms/:roomId/availability", handlers.CheckRoomAvailability)
}
