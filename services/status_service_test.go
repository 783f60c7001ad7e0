package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/hotel_booking/models"
	"github.com/anjiri1684/hotel_booking/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type statusFixture struct {
	db       *gorm.DB
	statuses *StatusCatalog
	booking  *models.Booking
	bookings *BookingService
	svc      *StatusService
	notifier *fakeNotifier
	user     models.User
}

func newStatusFixture(t *testing.T) *statusFixture {
	t.Helper()
	db := openTestDB(t)
	statuses, err := LoadStatusCatalog(db)
	require.NoError(t, err)
	notifier := newFakeNotifier()

	bookings := NewBookingService(db, statuses, notifier, nil)
	svc := NewStatusService(db, statuses, notifier, nil)

	room := createTestRoom(t, db, 500_000, 2)
	user := models.User{FullName: "Brian Otieno", Email: "brian@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	booking, err := bookings.CreateBooking(context.Background(), CreateBookingInput{
		RoomID:   room.ID,
		CheckIn:  date(2026, 10, 1),
		CheckOut: date(2026, 10, 4),
		Guests:   2,
		UserID:   &user.ID,
	})
	require.NoError(t, err)

	return &statusFixture{
		db: db, statuses: statuses, booking: booking,
		bookings: bookings, svc: svc, notifier: notifier, user: user,
	}
}

func (f *statusFixture) bookingStatusID(t *testing.T, name BookingStatusName) uint {
	t.Helper()
	id, ok := f.statuses.BookingStatusID(name)
	require.True(t, ok)
	return id
}

func (f *statusFixture) paymentStatusID(t *testing.T, name PaymentStatusName) uint {
	t.Helper()
	id, ok := f.statuses.PaymentStatusID(name)
	require.True(t, ok)
	return id
}

func (f *statusFixture) currentStatus(t *testing.T) string {
	t.Helper()
	var b models.Booking
	require.NoError(t, f.db.Preload("BookingStatus").First(&b, "id = ?", f.booking.ID).Error)
	return b.BookingStatus.Name
}

func TestUpdateBookingStatus(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateBookingStatus(ctx, f.booking.ID, f.bookingStatusID(t, BookingConfirmed), "payment received"))
	assert.Equal(t, string(BookingConfirmed), f.currentStatus(t))

	// owning user and the admin group both hear about it, with labels
	require.Equal(t, 1, f.notifier.userCount(f.user.ID))
	f.notifier.mu.Lock()
	event := f.notifier.userEvents[f.user.ID][0]
	f.notifier.mu.Unlock()
	assert.Equal(t, string(BookingPending), event.OldStatus)
	assert.Equal(t, string(BookingConfirmed), event.NewStatus)
	assert.GreaterOrEqual(t, f.notifier.adminCount(), 2) // creation + status change
}

func TestUpdateBookingStatusSetsCompletedAt(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateBookingStatus(ctx, f.booking.ID, f.bookingStatusID(t, BookingCompleted), "checked out"))

	var b models.Booking
	require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
	require.NotNil(t, b.CompletedAt)
	assert.WithinDuration(t, time.Now(), *b.CompletedAt, time.Minute)
}

func TestUpdateBookingStatusNotFound(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	err := f.svc.UpdateBookingStatus(ctx, 9999, f.bookingStatusID(t, BookingConfirmed), "")
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.UpdateBookingStatus(ctx, f.booking.ID, 9999, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

// The status writers must not let the preloaded association rows win over
// the newly assigned foreign keys. Assert the raw ids after each write path.
func TestStatusWritesPersistNewForeignKeys(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	confirmedID := f.bookingStatusID(t, BookingConfirmed)
	require.NoError(t, f.svc.UpdateBookingStatus(ctx, f.booking.ID, confirmedID, "payment received"))

	var b models.Booking
	require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
	assert.Equal(t, confirmedID, b.BookingStatusID)

	succeededID := f.paymentStatusID(t, PaymentSucceeded)
	require.NoError(t, f.svc.UpdatePaymentStatus(ctx, f.booking.ID, succeededID, "settled"))

	var p models.Payment
	require.NoError(t, f.db.First(&p, "booking_id = ?", f.booking.ID).Error)
	assert.Equal(t, succeededID, p.PaymentStatusID)

	cancelledID := f.bookingStatusID(t, BookingCancelled)
	require.NoError(t, f.svc.CancelBooking(ctx, f.booking.ID, "guest request"))
	require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
	assert.Equal(t, cancelledID, b.BookingStatusID)
}

func TestCancelBookingIdempotent(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CancelBooking(ctx, f.booking.ID, "guest request"))
	assert.Equal(t, string(BookingCancelled), f.currentStatus(t))

	// second cancel is a no-op, not an error
	require.NoError(t, f.svc.CancelBooking(ctx, f.booking.ID, "sweeper retry"))
	assert.Equal(t, string(BookingCancelled), f.currentStatus(t))
}

// A catalog loaded before the Cancelled row existed must learn about the row
// CancelBooking creates, so availability checks keep excluding it.
func TestCancelBookingBackfillsMissingCancelledStatus(t *testing.T) {
	db := openBareDB(t)
	for _, name := range []string{"Pending", "Confirmed", "Completed"} {
		require.NoError(t, db.Create(&models.BookingStatus{Name: name, IsActive: true}).Error)
	}
	for _, name := range []string{"Processing", "Succeeded", "Failed", "Refunded"} {
		require.NoError(t, db.Create(&models.PaymentStatus{Name: name, IsActive: true}).Error)
	}
	statuses, err := LoadStatusCatalog(db)
	require.NoError(t, err)
	_, ok := statuses.BookingStatusID(BookingCancelled)
	require.False(t, ok)

	bookings := NewBookingService(db, statuses, nil, nil)
	svc := NewStatusService(db, statuses, nil, nil)
	room := createTestRoom(t, db, 100_000, 2)

	booking, err := bookings.CreateBooking(context.Background(), CreateBookingInput{
		RoomID:   room.ID,
		CheckIn:  date(2027, 1, 10),
		CheckOut: date(2027, 1, 12),
		Guests:   1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(context.Background(), booking.ID, "guest request"))

	id, ok := statuses.BookingStatusID(BookingCancelled)
	require.True(t, ok, "the created Cancelled row should land in the cache")
	var row models.BookingStatus
	require.NoError(t, db.First(&row, "name = ?", "Cancelled").Error)
	assert.Equal(t, row.ID, id)

	available, err := bookings.IsRoomAvailable(context.Background(), room.ID, date(2027, 1, 10), date(2027, 1, 12))
	require.NoError(t, err)
	assert.True(t, available, "the cancelled booking must not block the room")
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateBookingStatus(ctx, f.booking.ID, f.bookingStatusID(t, BookingCompleted), "checked out"))

	err := f.svc.CancelBooking(ctx, f.booking.ID, "too late")
	assert.ErrorIs(t, err, ErrBookingCompleted)
	assert.Equal(t, string(BookingCompleted), f.currentStatus(t))
}

func TestCancelBookingCarriesReason(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CancelBooking(ctx, f.booking.ID, "auto-cancelled: confirmation window expired"))

	f.notifier.mu.Lock()
	events := f.notifier.userEvents[f.user.ID]
	f.notifier.mu.Unlock()
	require.NotEmpty(t, events)
	assert.Equal(t, "auto-cancelled: confirmation window expired", events[len(events)-1].Reason)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.UpdatePaymentStatus(ctx, f.booking.ID, f.paymentStatusID(t, PaymentSucceeded), "card settled"))

	var payment models.Payment
	require.NoError(t, f.db.Preload("PaymentStatus").First(&payment, "booking_id = ?", f.booking.ID).Error)
	assert.Equal(t, string(PaymentSucceeded), payment.PaymentStatus.Name)
}

func TestUpdatePaymentStatusCreatesPaymentLazily(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	// simulate a booking that never got its payment row
	require.NoError(t, f.db.Where("booking_id = ?", f.booking.ID).Delete(&models.Payment{}).Error)

	require.NoError(t, f.svc.UpdatePaymentStatus(ctx, f.booking.ID, f.paymentStatusID(t, PaymentSucceeded), "manual entry"))

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, "booking_id = ?", f.booking.ID).Error)
	assert.Equal(t, f.booking.TotalPrice, payment.Amount)
	assert.Equal(t, "unspecified", payment.Method)
	assert.NotEmpty(t, payment.TransactionID)
}

func TestPaymentReminderSuppression(t *testing.T) {
	f := newStatusFixture(t)
	ctx := context.Background()

	before := f.notifier.userCount(f.user.ID)
	require.NoError(t, f.svc.SendPaymentReminder(ctx, f.booking.ID))
	assert.Equal(t, before+1, f.notifier.userCount(f.user.ID), "processing payment should be reminded")

	require.NoError(t, f.svc.UpdatePaymentStatus(ctx, f.booking.ID, f.paymentStatusID(t, PaymentSucceeded), "settled"))
	after := f.notifier.userCount(f.user.ID)
	require.NoError(t, f.svc.SendPaymentReminder(ctx, f.booking.ID))
	assert.Equal(t, after, f.notifier.userCount(f.user.ID), "paid bookings must not be reminded")

	require.NoError(t, f.svc.UpdatePaymentStatus(ctx, f.booking.ID, f.paymentStatusID(t, PaymentRefunded), "refund issued"))
	after = f.notifier.userCount(f.user.ID)
	require.NoError(t, f.svc.SendPaymentReminder(ctx, f.booking.ID))
	assert.Equal(t, after, f.notifier.userCount(f.user.ID), "refunded bookings must not be reminded")
}

func TestCheckInReminderSkipsGuestBookings(t *testing.T) {
	db := openTestDB(t)
	statuses, err := LoadStatusCatalog(db)
	require.NoError(t, err)
	notifier := newFakeNotifier()
	bookings := NewBookingService(db, statuses, notifier, nil)
	svc := NewStatusService(db, statuses, notifier, nil)
	room := createTestRoom(t, db, 100_000, 2)

	booking, err := bookings.CreateBooking(context.Background(), CreateBookingInput{
		RoomID:   room.ID,
		CheckIn:  date(2026, 11, 1),
		CheckOut: date(2026, 11, 2),
		Guests:   1,
	})
	require.NoError(t, err)
	require.Nil(t, booking.UserID)

	require.NoError(t, svc.SendCheckInReminder(context.Background(), booking.ID))
}

// failingConn always errors on write, standing in for a dead client.
type failingConn struct{}

func (failingConn) WriteJSON(v interface{}) error { return errors.New("connection reset") }
func (failingConn) Close() error                  { return nil }

func TestNotificationTransportFailureDoesNotFailStatusWrite(t *testing.T) {
	db := openTestDB(t)
	statuses, err := LoadStatusCatalog(db)
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	bookings := NewBookingService(db, statuses, hub, nil)
	svc := NewStatusService(db, statuses, hub, nil)
	room := createTestRoom(t, db, 100_000, 2)

	user := models.User{FullName: "Carol W", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	hub.Register(&websocket.Client{UserID: user.ID, Conn: failingConn{}})
	hub.Register(&websocket.Client{UserID: user.ID, IsAdmin: true, Conn: failingConn{}})

	booking, err := bookings.CreateBooking(context.Background(), CreateBookingInput{
		RoomID:   room.ID,
		CheckIn:  date(2026, 12, 1),
		CheckOut: date(2026, 12, 3),
		Guests:   1,
		UserID:   &user.ID,
	})
	require.NoError(t, err, "failing websocket clients must not fail booking creation")

	confirmedID, ok := statuses.BookingStatusID(BookingConfirmed)
	require.True(t, ok)
	require.NoError(t, svc.UpdateBookingStatus(context.Background(), booking.ID, confirmedID, "payment received"),
		"failing websocket clients must not fail a status update")

	var b models.Booking
	require.NoError(t, db.Preload("BookingStatus").First(&b, "id = ?", booking.ID).Error)
	assert.Equal(t, string(BookingConfirmed), b.BookingStatus.Name)
}
