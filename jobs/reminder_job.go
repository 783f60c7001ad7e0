package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/hotel_booking/models"
	"github.com/anjiri1684/hotel_booking/services"
	"gorm.io/gorm"
)

// SendCheckInReminders nudges guests whose confirmed stay starts within the
// next day. Scheduled from main via cron.
func SendCheckInReminders(db *gorm.DB, statuses *services.StatusCatalog, svc *services.StatusService) {
	log.Println("Running job: SendCheckInReminders...")

	confirmedID, ok := statuses.BookingStatusID(services.BookingConfirmed)
	if !ok {
		log.Println("Reminder job: status catalog has no Confirmed status, skipping")
		return
	}

	now := time.Now()
	lowerBound := now.Add(24 * time.Hour)
	upperBound := now.Add(25 * time.Hour)

	var upcoming []models.Booking
	err := db.
		Where("booking_status_id = ? AND check_in BETWEEN ? AND ?", confirmedID, lowerBound, upperBound).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Reminder job: failed to query upcoming bookings: %v", err)
		return
	}
	if len(upcoming) == 0 {
		return
	}

	for _, booking := range upcoming {
		if err := svc.SendCheckInReminder(context.Background(), booking.ID); err != nil {
			log.Printf("Reminder job: failed to send reminder for booking %d: %v", booking.ID, err)
		}
	}
}
