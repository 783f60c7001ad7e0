package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/hotel_booking/models"
	"github.com/anjiri1684/hotel_booking/services"
	"gorm.io/gorm"
)

const expiryReason = "auto-cancelled: confirmation window expired"

// ExpirySweeper cancels bookings that sat in Pending past the grace window.
// It runs on its own ticker, fully decoupled from request handling, and
// stops cooperatively via Stop.
type ExpirySweeper struct {
	db       *gorm.DB
	statuses *services.StatusCatalog
	svc      *services.StatusService
	interval time.Duration
	grace    time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewExpirySweeper(db *gorm.DB, statuses *services.StatusCatalog, svc *services.StatusService, interval, grace time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		db:       db,
		statuses: statuses,
		svc:      svc,
		interval: interval,
		grace:    grace,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *ExpirySweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Printf("Expiry sweeper started (interval %s, grace window %s)", s.interval, s.grace)
		for {
			select {
			case <-s.stop:
				log.Println("Expiry sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(context.Background())
			}
		}
	}()
}

// Stop interrupts the sleep promptly and waits for an in-flight sweep to
// finish; per-booking cancellations are never killed mid-transaction.
func (s *ExpirySweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	pendingID, ok := s.statuses.BookingStatusID(services.BookingPending)
	if !ok {
		log.Println("Expiry sweeper: status catalog has no Pending status, skipping sweep")
		return
	}

	deadline := time.Now().Add(-s.grace)
	var stale []models.Booking
	err := s.db.WithContext(ctx).
		Where("booking_status_id = ? AND created_at < ?", pendingID, deadline).
		Find(&stale).Error
	if err != nil {
		log.Printf("Expiry sweeper: failed to query stale bookings: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	for _, booking := range stale {
		if err := s.svc.CancelBooking(ctx, booking.ID, expiryReason); err != nil {
			log.Printf("Expiry sweeper: failed to cancel booking %d: %v", booking.ID, err)
			continue
		}
		log.Printf("Expiry sweeper: auto-cancelled booking %d (pending since %s)", booking.ID, booking.CreatedAt.Format(time.RFC3339))
	}
}
