package handlers

import (
	"github.com/anjiri1684/hotel_booking/database"
	"github.com/anjiri1684/hotel_booking/models"
	"github.com/gofiber/fiber/v2"
)

func AdminGetAllBookings(c *fiber.Ctx) error {
	var bookings []models.Booking
	err := database.DB.
		Preload("Room").
		Preload("User").
		Preload("BookingStatus").
		Preload("Payment.PaymentStatus").
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load bookings"})
	}
	return c.JSON(bookings)
}

type StatusUpdateRequest struct {
	StatusID uint   `json:"status_id" validate:"required"`
	Reason   string `json:"reason"`
}

func UpdateBookingStatus(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := statusService.UpdateBookingStatus(c.Context(), uint(bookingID), req.StatusID, req.Reason); err != nil {
		return serviceErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Booking status updated successfully."})
}

func UpdatePaymentStatus(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := statusService.UpdatePaymentStatus(c.Context(), uint(bookingID), req.StatusID, req.Reason); err != nil {
		return serviceErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment status updated successfully."})
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func CancelBooking(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := statusService.CancelBooking(c.Context(), uint(bookingID), req.Reason); err != nil {
		return serviceErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Booking cancelled."})
}

func SendCheckInReminder(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	if err := statusService.SendCheckInReminder(c.Context(), uint(bookingID)); err != nil {
		return serviceErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Check-in reminder sent."})
}

func SendPaymentReminder(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	if err := statusService.SendPaymentReminder(c.Context(), uint(bookingID)); err != nil {
		return serviceErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment reminder sent."})
}

type RoomRequest struct {
	RoomNumber    string `json:"room_number" validate:"required"`
	RoomType      string `json:"room_type" validate:"required"`
	Description   string `json:"description"`
	PricePerNight int64  `json:"price_per_night" validate:"required,min=0"`
	Capacity      int    `json:"capacity" validate:"required,min=1"`
}

func CreateRoom(c *fiber.Ctx) error {
	var req RoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	room := models.Room{
		RoomNumber:    req.RoomNumber,
		RoomType:      req.RoomType,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
		IsAvailable:   true,
		IsActive:      true,
	}
	if err := database.DB.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create room"})
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

func ToggleRoomAvailability(c *fiber.Ctx) error {
	roomID, err := c.ParamsInt("roomId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room id"})
	}

	var room models.Room
	if err := database.DB.First(&room, "id = ?", roomID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Room not found"})
	}

	room.IsAvailable = !room.IsAvailable
	if err := database.DB.Save(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update room"})
	}
	return c.JSON(room)
}

func ListBookingStatuses(c *fiber.Ctx) error {
	var statuses []models.BookingStatus
	if err := database.DB.Where("is_active = ?", true).Find(&statuses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load statuses"})
	}
	return c.JSON(statuses)
}

func ListPaymentStatuses(c *fiber.Ctx) error {
	var statuses []models.PaymentStatus
	if err := database.DB.Where("is_active = ?", true).Find(&statuses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load statuses"})
	}
	return c.JSON(statuses)
}
