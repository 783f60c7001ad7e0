package services

import "github.com/google/uuid"

// Event is the structured payload fanned out to connected clients.
type Event struct {
	Type          string `json:"type"`
	BookingID     uint   `json:"booking_id,omitempty"`
	ReferenceCode string `json:"reference_code,omitempty"`
	RoomNumber    string `json:"room_number,omitempty"`
	OldStatus     string `json:"old_status,omitempty"`
	NewStatus     string `json:"new_status,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Message       string `json:"message"`
}

// Notifier delivers events to connected clients, at most once. Implementations
// must not block the caller and must never surface delivery failures.
type Notifier interface {
	PublishToUser(userID uuid.UUID, event any)
	PublishToAdmins(event any)
}
