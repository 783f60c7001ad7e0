package handlers

import (
	"time"

	"github.com/anjiri1684/hotel_booking/database"
	"github.com/anjiri1684/hotel_booking/models"
	"github.com/gofiber/fiber/v2"
)

func ListRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	if err := database.DB.Where("is_active = ?", true).Order("room_number asc").Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load rooms"})
	}
	return c.JSON(rooms)
}

// CheckRoomAvailability probes whether a room is free for a date range. The
// transactional create remains the sole writer gate so the answer is only
// advisory.
func CheckRoomAvailability(c *fiber.Ctx) error {
	roomID, err := c.ParamsInt("roomId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room id"})
	}

	checkIn, err := time.Parse(dateLayout, c.Query("check_in"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check_in must be formatted as YYYY-MM-DD"})
	}
	checkOut, err := time.Parse(dateLayout, c.Query("check_out"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check_out must be formatted as YYYY-MM-DD"})
	}
	if !checkOut.After(checkIn) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check_out must be after check_in"})
	}

	available, err := bookingService.IsRoomAvailable(c.Context(), uint(roomID), checkIn, checkOut)
	if err != nil {
		return serviceErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"room_id": roomID, "available": available})
}
