package models

import (
	"time"
)

type Payment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BookingID       uint      `gorm:"not null;unique" json:"booking_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Method          string    `gorm:"size:50;not null;default:'unspecified'" json:"method"`
	TransactionID   string    `gorm:"size:64;not null;unique" json:"transaction_id"`
	PaymentStatusID uint      `gorm:"not null;index" json:"payment_status_id"`
	PaidAt          time.Time `json:"paid_at"`

	PaymentStatus PaymentStatus `gorm:"foreignkey:PaymentStatusID" json:"payment_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
