package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/hotel_booking/events"
	"github.com/anjiri1684/hotel_booking/models"
	"github.com/anjiri1684/hotel_booking/utils"
	"gorm.io/gorm"
)

// StatusService is the only code path that writes booking and payment status
// fields. Notification dispatch happens after the write commits and is always
// best-effort.
type StatusService struct {
	db       *gorm.DB
	statuses *StatusCatalog
	notifier Notifier
	events   *events.Publisher
}

func NewStatusService(db *gorm.DB, statuses *StatusCatalog, notifier Notifier, pub *events.Publisher) *StatusService {
	return &StatusService{db: db, statuses: statuses, notifier: notifier, events: pub}
}

func (s *StatusService) loadBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
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

// UpdateBookingStatus moves a booking to the status identified by
// newStatusID and notifies the owning user and the admin group.
func (s *StatusService) UpdateBookingStatus(ctx context.Context, bookingID, newStatusID uint, reason string) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	// No transition table here: the caller picks any target status, and
	// that includes moving a booking out of Cancelled. Only CancelBooking
	// guards terminal states.
	var target models.BookingStatus
	if err := s.db.WithContext(ctx).First(&target, "id = ?", newStatusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	oldName := booking.BookingStatus.Name
	if target.Name == string(BookingCompleted) && booking.CompletedAt == nil {
		now := time.Now()
		booking.CompletedAt = &now
	}

	// Update through a fresh model: running it on the preloaded aggregate
	// would re-save the attached BookingStatus association and clobber the
	// new foreign key with the old one.
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"booking_status_id": target.ID,
			"completed_at":      booking.CompletedAt,
		}).Error; err != nil {
		log.Printf("Failed to update booking %d status: %v", bookingID, err)
		return err
	}

	s.dispatchStatusChange(booking, "booking_status_changed", "booking.status_changed", oldName, target.Name, reason)
	return nil
}

// UpdatePaymentStatus moves a booking's payment to the status identified by
// newStatusID, creating the payment record on first use if none exists.
func (s *StatusService) UpdatePaymentStatus(ctx context.Context, bookingID, newStatusID uint, reason string) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	var target models.PaymentStatus
	if err := s.db.WithContext(ctx).First(&target, "id = ?", newStatusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	oldName := ""
	if booking.Payment == nil {
		payment := models.Payment{
			BookingID:       booking.ID,
			Amount:          booking.TotalPrice,
			Method:          "unspecified",
			TransactionID:   utils.GenerateTransactionID(booking.ID, time.Now()),
			PaymentStatusID: target.ID,
			PaidAt:          time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
			log.Printf("Failed to create payment for booking %d: %v", bookingID, err)
			return err
		}
		booking.Payment = &payment
	} else {
		oldName = booking.Payment.PaymentStatus.Name
		booking.Payment.PaymentStatusID = target.ID
		booking.Payment.PaidAt = time.Now()
		// Fresh model for the same reason as the booking write above: the
		// preloaded PaymentStatus association would overwrite the new id.
		if err := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where("id = ?", booking.Payment.ID).
			Updates(map[string]any{
				"payment_status_id": booking.Payment.PaymentStatusID,
				"paid_at":           booking.Payment.PaidAt,
			}).Error; err != nil {
			log.Printf("Failed to update payment status for booking %d: %v", bookingID, err)
			return err
		}
	}

	s.dispatchStatusChange(booking, "payment_status_changed", "payment.status_changed", oldName, target.Name, reason)
	return nil
}

// CancelBooking applies the Cancelled status. Completed bookings are
// protected; cancelling an already cancelled booking is a no-op so the
// expiry sweeper can safely reprocess.
func (s *StatusService) CancelBooking(ctx context.Context, bookingID uint, reason string) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	switch booking.BookingStatus.Name {
	case string(BookingCompleted):
		return ErrBookingCompleted
	case string(BookingCancelled):
		return nil
	}

	cancelledID, err := s.cancelledStatusID(ctx)
	if err != nil {
		return err
	}

	oldName := booking.BookingStatus.Name
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("booking_status_id", cancelledID).Error; err != nil {
		log.Printf("Failed to cancel booking %d: %v", bookingID, err)
		return err
	}

	s.dispatchStatusChange(booking, "booking_cancelled", "booking.cancelled", oldName, string(BookingCancelled), reason)

	if booking.User != nil {
		body := fmt.Sprintf(
			"<h1>Booking Cancelled</h1><p>Your booking for room %s has been cancelled.</p><p>Reason: %s</p>",
			booking.Room.RoomNumber, reason,
		)
		go sendEmail(booking.User.FullName, booking.User.Email, "Your booking was cancelled", body)
	}
	return nil
}

// cancelledStatusID resolves Cancelled from the catalog cache, creating the
// reference row if the catalog predates it.
func (s *StatusService) cancelledStatusID(ctx context.Context) (uint, error) {
	if id, ok := s.statuses.BookingStatusID(BookingCancelled); ok {
		return id, nil
	}
	var row models.BookingStatus
	err := s.db.WithContext(ctx).
		Where(models.BookingStatus{Name: string(BookingCancelled)}).
		Attrs(models.BookingStatus{Description: "Booking has been cancelled", IsActive: true}).
		FirstOrCreate(&row).Error
	if err != nil {
		return 0, err
	}
	// Backfill the cache so availability checks keep excluding cancelled
	// bookings from now on.
	s.statuses.addBookingStatus(row)
	return row.ID, nil
}

// SendCheckInReminder notifies the owning user that check-in is coming up.
// Read-only; guest bookings have no notification channel and are skipped.
func (s *StatusService) SendCheckInReminder(ctx context.Context, bookingID uint) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID == nil {
		return nil
	}

	if s.notifier != nil {
		s.notifier.PublishToUser(*booking.UserID, Event{
			Type:          "check_in_reminder",
			BookingID:     booking.ID,
			ReferenceCode: booking.ReferenceCode.String(),
			RoomNumber:    booking.Room.RoomNumber,
			Message:       fmt.Sprintf("Check-in for room %s is on %s", booking.Room.RoomNumber, booking.CheckIn.Format("2006-01-02")),
		})
	}

	if booking.User != nil {
		body := fmt.Sprintf(
			"<h1>Check-in Reminder</h1><p>Your stay in room %s starts on %s. We look forward to welcoming you!</p>",
			booking.Room.RoomNumber, booking.CheckIn.Format("Monday, 02 Jan 2006"),
		)
		go sendEmail(booking.User.FullName, booking.User.Email, "Your stay is coming up!", body)
	}
	return nil
}

// SendPaymentReminder nudges the owning user about an unsettled payment. It
// suppresses itself when the payment already reached Succeeded or Refunded.
func (s *StatusService) SendPaymentReminder(ctx context.Context, bookingID uint) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID == nil {
		return nil
	}

	if booking.Payment != nil {
		name, ok := s.statuses.PaymentStatusName(booking.Payment.PaymentStatusID)
		if ok && (name == PaymentSucceeded || name == PaymentRefunded) {
			return nil
		}
	}

	if s.notifier != nil {
		s.notifier.PublishToUser(*booking.UserID, Event{
			Type:          "payment_reminder",
			BookingID:     booking.ID,
			ReferenceCode: booking.ReferenceCode.String(),
			Message:       fmt.Sprintf("Payment of %d for booking %s is still outstanding", booking.TotalPrice, booking.ReferenceCode),
		})
	}

	if booking.User != nil {
		body := fmt.Sprintf(
			"<h1>Payment Reminder</h1><p>The payment of %d for your booking in room %s has not been settled yet.</p>",
			booking.TotalPrice, booking.Room.RoomNumber,
		)
		go sendEmail(booking.User.FullName, booking.User.Email, "Payment reminder for your booking", body)
	}
	return nil
}

func (s *StatusService) dispatchStatusChange(booking *models.Booking, eventType, routingKey, oldName, newName, reason string) {
	event := Event{
		Type:          eventType,
		BookingID:     booking.ID,
		ReferenceCode: booking.ReferenceCode.String(),
		RoomNumber:    booking.Room.RoomNumber,
		OldStatus:     oldName,
		NewStatus:     newName,
		Reason:        reason,
		Message:       fmt.Sprintf("Booking %s: %s -> %s", booking.ReferenceCode, oldName, newName),
	}

	if s.notifier != nil {
		if booking.UserID != nil {
			s.notifier.PublishToUser(*booking.UserID, event)
		}
		s.notifier.PublishToAdmins(event)
	}

	if err := s.events.PublishJSON(context.Background(), routingKey, map[string]any{
		"booking_id": booking.ID,
		"old_status": oldName,
		"new_status": newName,
		"reason":     reason,
	}); err != nil {
		log.Printf("Failed to publish %s for booking %d: %v", routingKey, booking.ID, err)
	}
}
