package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	config "github.com/anjiri1684/hotel_booking/configs"
	"github.com/anjiri1684/hotel_booking/events"
	"github.com/anjiri1684/hotel_booking/models"
	"github.com/anjiri1684/hotel_booking/notifications"
	"github.com/anjiri1684/hotel_booking/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sendEmail is a package hook so tests can capture outbound mail.
var sendEmail = notifications.SendEmail

type BookingService struct {
	db       *gorm.DB
	statuses *StatusCatalog
	notifier Notifier
	events   *events.Publisher
}

func NewBookingService(db *gorm.DB, statuses *StatusCatalog, notifier Notifier, pub *events.Publisher) *BookingService {
	return &BookingService{db: db, statuses: statuses, notifier: notifier, events: pub}
}

// roomLocks serializes the availability check and insert per room id. The
// check and the insert are not one serializable transaction, so without this
// two overlapping requests could both pass the check before either commits.
var roomLocks sync.Map

func lockRoom(roomID uint) *sync.Mutex {
	mu, _ := roomLocks.LoadOrStore(roomID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Nights counts billable nights in [checkIn, checkOut), rounding partial
// days up.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

func TotalPrice(pricePerNight int64, nights int) int64 {
	return pricePerNight * int64(nights)
}

// IsRoomAvailable reports whether no non-cancelled booking on the room
// overlaps [checkIn, checkOut). Touching ranges do not overlap.
func (s *BookingService) IsRoomAvailable(ctx context.Context, roomID uint, checkIn, checkOut time.Time) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("room_id = ? AND check_in < ? AND check_out > ?", roomID, checkOut, checkIn)
	if cancelledID, ok := s.statuses.BookingStatusID(BookingCancelled); ok {
		q = q.Where("booking_status_id <> ?", cancelledID)
	}

	var conflicts int64
	if err := q.Count(&conflicts).Error; err != nil {
		return false, fmt.Errorf("availability check for room %d: %w", roomID, err)
	}
	return conflicts == 0, nil
}

type CreateBookingInput struct {
	RoomID        uint
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int
	UserID        *uuid.UUID // nil for guest bookings
	PaymentMethod string
}

// CreateBooking validates availability, computes the price and inserts the
// booking together with its payment record in one transaction. The returned
// booking has room, user, status and payment loaded.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if !input.CheckOut.After(input.CheckIn) {
		return nil, ErrInvalidRange
	}
	if input.Guests < 1 {
		return nil, ErrInvalidGuests
	}

	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", input.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !room.IsActive || !room.IsAvailable {
		return nil, ErrRoomClosed
	}
	if input.Guests > room.Capacity {
		return nil, ErrOverCapacity
	}

	pendingID, ok := s.statuses.BookingStatusID(BookingPending)
	if !ok {
		return nil, ErrStatusCatalogEmpty
	}
	processingID, ok := s.statuses.PaymentStatusID(PaymentProcessing)
	if !ok {
		return nil, ErrStatusCatalogEmpty
	}

	method := input.PaymentMethod
	if method == "" {
		method = "unspecified"
	}

	mu := lockRoom(input.RoomID)
	mu.Lock()
	defer mu.Unlock()

	available, err := s.IsRoomAvailable(ctx, input.RoomID, input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrRoomUnavailable
	}

	total := TotalPrice(room.PricePerNight, Nights(input.CheckIn, input.CheckOut))

	var booking models.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking = models.Booking{
			ReferenceCode:   uuid.New(),
			RoomID:          input.RoomID,
			UserID:          input.UserID,
			CheckIn:         input.CheckIn,
			CheckOut:        input.CheckOut,
			Guests:          input.Guests,
			TotalPrice:      total,
			BookingStatusID: pendingID,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		payment := models.Payment{
			BookingID:       booking.ID,
			Amount:          total,
			Method:          method,
			TransactionID:   utils.GenerateTransactionID(booking.ID, time.Now()),
			PaymentStatusID: processingID,
			PaidAt:          time.Now(),
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Preload("BookingStatus").
		Preload("Payment.PaymentStatus").
		First(&booking, "id = ?", booking.ID).Error; err != nil {
		return nil, err
	}

	s.dispatchNewBooking(&booking)
	return &booking, nil
}

// dispatchNewBooking is best-effort; a failed notification never unwinds the
// committed booking.
func (s *BookingService) dispatchNewBooking(booking *models.Booking) {
	if s.notifier != nil {
		s.notifier.PublishToAdmins(Event{
			Type:          "booking_created",
			BookingID:     booking.ID,
			ReferenceCode: booking.ReferenceCode.String(),
			RoomNumber:    booking.Room.RoomNumber,
			NewStatus:     booking.BookingStatus.Name,
			Message:       fmt.Sprintf("New booking for room %s", booking.Room.RoomNumber),
		})
	}

	if err := s.events.PublishJSON(context.Background(), "booking.created", map[string]any{
		"booking_id":  booking.ID,
		"room_id":     booking.RoomID,
		"check_in":    booking.CheckIn,
		"check_out":   booking.CheckOut,
		"total_price": booking.TotalPrice,
	}); err != nil {
		log.Printf("Failed to publish booking.created for booking %d: %v", booking.ID, err)
	}

	if booking.User != nil {
		body := fmt.Sprintf(
			"<h1>Booking Received</h1><p>Your booking for room %s from %s to %s is pending confirmation.</p>",
			booking.Room.RoomNumber,
			booking.CheckIn.Format("2006-01-02"),
			booking.CheckOut.Format("2006-01-02"),
		)
		go sendEmail(booking.User.FullName, booking.User.Email, "We received your booking!", body)
	}

	if adminEmail := config.Config("ADMIN_EMAIL"); adminEmail != "" {
		body := fmt.Sprintf(
			"<h1>New Booking</h1><p>Room %s was booked from %s to %s for %d guest(s). Reference: %s</p>",
			booking.Room.RoomNumber,
			booking.CheckIn.Format("2006-01-02"),
			booking.CheckOut.Format("2006-01-02"),
			booking.Guests,
			booking.ReferenceCode,
		)
		go sendEmail("Admin", adminEmail, "New booking received", body)
	}
}

// GetBooking loads a booking with its room, user, status and payment.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Preload("BookingStatus").
		Preload("Payment.PaymentStatus").
		First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ListUserBookings returns a user's bookings, newest stay first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("BookingStatus").
		Preload("Payment.PaymentStatus").
		Where("user_id = ?", userID).
		Order("check_in desc").
		Find(&bookings).Error
	return bookings, err
}
