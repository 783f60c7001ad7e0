package models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ReferenceCode   uuid.UUID  `gorm:"type:uuid;not null;unique" json:"reference_code"`
	RoomID          uint       `gorm:"not null;index" json:"room_id"`
	UserID          *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil for guest bookings
	CheckIn         time.Time  `gorm:"not null" json:"check_in"`
	CheckOut        time.Time  `gorm:"not null" json:"check_out"`
	Guests          int        `gorm:"not null;default:1" json:"guests"`
	TotalPrice      int64      `gorm:"not null" json:"total_price"`
	BookingStatusID uint       `gorm:"not null;index" json:"booking_status_id"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	Room          Room          `gorm:"foreignkey:RoomID" json:"room,omitempty"`
	User          *User         `gorm:"foreignkey:UserID" json:"user,omitempty"`
	BookingStatus BookingStatus `gorm:"foreignkey:BookingStatusID" json:"booking_status,omitempty"`
	Payment       *Payment      `gorm:"foreignkey:BookingID" json:"payment,omitempty"`
	Review        *Review       `gorm:"foreignkey:BookingID" json:"review,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
