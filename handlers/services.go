package handlers

import (
	"github.com/anjiri1684/hotel_booking/services"
	"github.com/anjiri1684/hotel_booking/websocket"
)

var (
	bookingService *services.BookingService
	statusService  *services.StatusService
	hub            *websocket.Hub
)

// SetServices wires the handler package to the engine's service layer; main
// calls this once at startup.
func SetServices(b *services.BookingService, s *services.StatusService, h *websocket.Hub) {
	bookingService = b
	statusService = s
	hub = h
}
