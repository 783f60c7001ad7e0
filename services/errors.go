package services

import "errors"

var (
	// ErrRoomUnavailable means a non-cancelled booking already overlaps the
	// requested range. User-correctable.
	ErrRoomUnavailable = errors.New("room is not available for the requested dates")

	// ErrStatusCatalogEmpty means the booking/payment status reference tables
	// were never seeded. Operator-fixable; fails loudly at startup.
	ErrStatusCatalogEmpty = errors.New("status catalog has not been seeded")

	ErrNotFound         = errors.New("record not found")
	ErrBookingCompleted = errors.New("completed bookings cannot be cancelled")

	ErrInvalidRange  = errors.New("check-out must be after check-in")
	ErrInvalidGuests = errors.New("guest count must be at least 1")
	ErrRoomClosed    = errors.New("room is not open for booking")
	ErrOverCapacity  = errors.New("guest count exceeds room capacity")
)
