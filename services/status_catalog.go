package services

import (
	"fmt"
	"sync"

	"github.com/anjiri1684/hotel_booking/models"
	"gorm.io/gorm"
)

type BookingStatusName string

const (
	BookingPending   BookingStatusName = "Pending"
	BookingConfirmed BookingStatusName = "Confirmed"
	BookingCompleted BookingStatusName = "Completed"
	BookingCancelled BookingStatusName = "Cancelled"
)

type PaymentStatusName string

const (
	PaymentProcessing PaymentStatusName = "Processing"
	PaymentSucceeded  PaymentStatusName = "Succeeded"
	PaymentFailed     PaymentStatusName = "Failed"
	PaymentRefunded   PaymentStatusName = "Refunded"
)

// StatusCatalog maps the closed status sets to their reference-table rows.
// It is loaded once after seeding; callers never look rows up by name (or by
// insertion-order id) at request time. The mutex only matters when a missing
// reference row gets created after load.
type StatusCatalog struct {
	mu            sync.RWMutex
	bookingByName map[BookingStatusName]uint
	bookingByID   map[uint]BookingStatusName
	paymentByName map[PaymentStatusName]uint
	paymentByID   map[uint]PaymentStatusName
}

func LoadStatusCatalog(db *gorm.DB) (*StatusCatalog, error) {
	var bookingRows []models.BookingStatus
	if err := db.Find(&bookingRows).Error; err != nil {
		return nil, fmt.Errorf("load booking statuses: %w", err)
	}
	var paymentRows []models.PaymentStatus
	if err := db.Find(&paymentRows).Error; err != nil {
		return nil, fmt.Errorf("load payment statuses: %w", err)
	}
	if len(bookingRows) == 0 || len(paymentRows) == 0 {
		return nil, ErrStatusCatalogEmpty
	}

	c := &StatusCatalog{
		bookingByName: make(map[BookingStatusName]uint, len(bookingRows)),
		bookingByID:   make(map[uint]BookingStatusName, len(bookingRows)),
		paymentByName: make(map[PaymentStatusName]uint, len(paymentRows)),
		paymentByID:   make(map[uint]PaymentStatusName, len(paymentRows)),
	}
	for _, row := range bookingRows {
		name := BookingStatusName(row.Name)
		c.bookingByName[name] = row.ID
		c.bookingByID[row.ID] = name
	}
	for _, row := range paymentRows {
		name := PaymentStatusName(row.Name)
		c.paymentByName[name] = row.ID
		c.paymentByID[row.ID] = name
	}
	return c, nil
}

func (c *StatusCatalog) BookingStatusID(name BookingStatusName) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.bookingByName[name]
	return id, ok
}

func (c *StatusCatalog) BookingStatusName(id uint) (BookingStatusName, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.bookingByID[id]
	return name, ok
}

func (c *StatusCatalog) PaymentStatusID(name PaymentStatusName) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.paymentByName[name]
	return id, ok
}

func (c *StatusCatalog) PaymentStatusName(id uint) (PaymentStatusName, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.paymentByID[id]
	return name, ok
}

// addBookingStatus caches a reference row created after the initial load.
func (c *StatusCatalog) addBookingStatus(row models.BookingStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := BookingStatusName(row.Name)
	c.bookingByName[name] = row.ID
	c.bookingByID[row.ID] = name
}
