package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anjiri1684/hotel_booking/database"
	"github.com/anjiri1684/hotel_booking/models"
	"github.com/anjiri1684/hotel_booking/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.BookingStatus{},
		&models.PaymentStatus{},
		&models.Booking{},
		&models.Payment{},
		&models.Review{},
	))
	require.NoError(t, database.SeedStatuses(db))
	return db
}

type sweeperFixture struct {
	db       *gorm.DB
	statuses *services.StatusCatalog
	svc      *services.StatusService
	room     models.Room
}

func newSweeperFixture(t *testing.T) *sweeperFixture {
	t.Helper()
	db := openTestDB(t)
	statuses, err := services.LoadStatusCatalog(db)
	require.NoError(t, err)

	room := models.Room{
		RoomNumber:    "101",
		RoomType:      "single",
		PricePerNight: 100_000,
		Capacity:      2,
		IsAvailable:   true,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&room).Error)

	return &sweeperFixture{
		db:       db,
		statuses: statuses,
		svc:      services.NewStatusService(db, statuses, nil, nil),
		room:     room,
	}
}

// seedBooking inserts a booking directly so its creation timestamp can be
// backdated past the grace window.
func (f *sweeperFixture) seedBooking(t *testing.T, status services.BookingStatusName, createdAt time.Time) models.Booking {
	t.Helper()
	statusID, ok := f.statuses.BookingStatusID(status)
	require.True(t, ok)

	booking := models.Booking{
		ReferenceCode:   uuid.New(),
		RoomID:          f.room.ID,
		CheckIn:         createdAt.Add(48 * time.Hour),
		CheckOut:        createdAt.Add(72 * time.Hour),
		Guests:          1,
		TotalPrice:      100_000,
		BookingStatusID: statusID,
		CreatedAt:       createdAt,
	}
	require.NoError(t, f.db.Create(&booking).Error)
	return booking
}

func (f *sweeperFixture) statusOf(t *testing.T, bookingID uint) string {
	t.Helper()
	var b models.Booking
	require.NoError(t, f.db.Preload("BookingStatus").First(&b, "id = ?", bookingID).Error)
	return b.BookingStatus.Name
}

func TestSweepCancelsStalePendingBookings(t *testing.T) {
	f := newSweeperFixture(t)
	sweeper := NewExpirySweeper(f.db, f.statuses, f.svc, time.Minute, 5*time.Minute)

	stale := f.seedBooking(t, services.BookingPending, time.Now().Add(-10*time.Minute))
	fresh := f.seedBooking(t, services.BookingPending, time.Now().Add(-1*time.Minute))
	confirmed := f.seedBooking(t, services.BookingConfirmed, time.Now().Add(-10*time.Minute))

	sweeper.sweep(context.Background())

	assert.Equal(t, string(services.BookingCancelled), f.statusOf(t, stale.ID))
	assert.Equal(t, string(services.BookingPending), f.statusOf(t, fresh.ID), "bookings inside the grace window are untouched")
	assert.Equal(t, string(services.BookingConfirmed), f.statusOf(t, confirmed.ID), "only pending bookings expire")
}

func TestSweepIsIdempotentAcrossTicks(t *testing.T) {
	f := newSweeperFixture(t)
	sweeper := NewExpirySweeper(f.db, f.statuses, f.svc, time.Minute, 5*time.Minute)

	stale := f.seedBooking(t, services.BookingPending, time.Now().Add(-10*time.Minute))

	sweeper.sweep(context.Background())
	require.Equal(t, string(services.BookingCancelled), f.statusOf(t, stale.ID))

	// the cancellation must actually leave Pending behind, so the next
	// tick's stale query comes back empty
	pendingID, ok := f.statuses.BookingStatusID(services.BookingPending)
	require.True(t, ok)
	var remaining int64
	require.NoError(t, f.db.Model(&models.Booking{}).
		Where("booking_status_id = ? AND created_at < ?", pendingID, time.Now().Add(-5*time.Minute)).
		Count(&remaining).Error)
	assert.Zero(t, remaining, "a swept booking must not be picked up again")

	// reprocessing an already-cancelled booking is a no-op
	sweeper.sweep(context.Background())
	assert.Equal(t, string(services.BookingCancelled), f.statusOf(t, stale.ID))
}

func TestSweepContinuesPastBadBooking(t *testing.T) {
	f := newSweeperFixture(t)
	sweeper := NewExpirySweeper(f.db, f.statuses, f.svc, time.Minute, 5*time.Minute)

	f.seedBooking(t, services.BookingPending, time.Now().Add(-10*time.Minute))
	f.seedBooking(t, services.BookingPending, time.Now().Add(-10*time.Minute))

	// make the first cancellation of the sweep fail; the second must still run
	var failedOnce bool
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").
		Register("fail_first_cancel", func(tx *gorm.DB) {
			if tx.Statement.Table == "bookings" && !failedOnce {
				failedOnce = true
				tx.AddError(errors.New("transient write failure"))
			}
		}))

	sweeper.sweep(context.Background())
	require.NoError(t, f.db.Callback().Update().Remove("fail_first_cancel"))

	cancelledID, ok := f.statuses.BookingStatusID(services.BookingCancelled)
	require.True(t, ok)
	var cancelled int64
	require.NoError(t, f.db.Model(&models.Booking{}).
		Where("booking_status_id = ?", cancelledID).Count(&cancelled).Error)
	assert.EqualValues(t, 1, cancelled, "one bad booking must not abort the sweep")

	// the next tick picks the failed one back up
	sweeper.sweep(context.Background())
	require.NoError(t, f.db.Model(&models.Booking{}).
		Where("booking_status_id = ?", cancelledID).Count(&cancelled).Error)
	assert.EqualValues(t, 2, cancelled)
}

func TestSweeperStartStop(t *testing.T) {
	f := newSweeperFixture(t)
	stale := f.seedBooking(t, services.BookingPending, time.Now().Add(-10*time.Minute))

	sweeper := NewExpirySweeper(f.db, f.statuses, f.svc, 10*time.Millisecond, 5*time.Minute)
	sweeper.Start()

	require.Eventually(t, func() bool {
		return f.statusOf(t, stale.ID) == string(services.BookingCancelled)
	}, 2*time.Second, 10*time.Millisecond)

	sweeper.Stop()
}

func TestSweeperStopInterruptsSleepPromptly(t *testing.T) {
	f := newSweeperFixture(t)
	sweeper := NewExpirySweeper(f.db, f.statuses, f.svc, time.Hour, 5*time.Minute)
	sweeper.Start()

	stopped := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not interrupt the sweeper's sleep")
	}
}
