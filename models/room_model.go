package models

import (
	"time"
)

type Room struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	RoomNumber    string `gorm:"size:20;not null;unique" json:"room_number"`
	RoomType      string `gorm:"size:50;not null" json:"room_type"`
	Description   string `gorm:"type:text" json:"description"`
	PricePerNight int64  `gorm:"not null" json:"price_per_night"`
	Capacity      int    `gorm:"not null;default:1" json:"capacity"`
	IsAvailable   bool   `gorm:"default:true" json:"is_available"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
