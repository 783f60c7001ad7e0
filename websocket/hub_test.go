package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderConn struct {
	mu     sync.Mutex
	events []any
	fail   bool
	closed bool
}

func (c *recorderConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection reset")
	}
	c.events = append(c.events, v)
	return nil
}

func (c *recorderConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recorderConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func TestAdminBroadcastReachesEveryAdmin(t *testing.T) {
	hub := startHub(t)

	adminA := &recorderConn{}
	adminB := &recorderConn{}
	guest := &recorderConn{}
	guestID := uuid.New()

	hub.Register(&Client{UserID: uuid.New(), IsAdmin: true, Conn: adminA})
	hub.Register(&Client{UserID: uuid.New(), IsAdmin: true, Conn: adminB})
	hub.Register(&Client{UserID: guestID, Conn: guest})

	hub.PublishToAdmins(map[string]string{"type": "booking_created"})

	require.Eventually(t, func() bool {
		return adminA.count() == 1 && adminB.count() == 1
	}, time.Second, 5*time.Millisecond, "broadcast, not load-balanced")
	assert.Zero(t, guest.count(), "admin events stay in the admin group")
}

func TestPublishToUserHitsAllSessionsOfThatUser(t *testing.T) {
	hub := startHub(t)

	userID := uuid.New()
	sessionA := &recorderConn{}
	sessionB := &recorderConn{}
	other := &recorderConn{}

	hub.Register(&Client{UserID: userID, Conn: sessionA})
	hub.Register(&Client{UserID: userID, Conn: sessionB})
	hub.Register(&Client{UserID: uuid.New(), Conn: other})

	hub.PublishToUser(userID, map[string]string{"type": "payment_reminder"})

	require.Eventually(t, func() bool {
		return sessionA.count() == 1 && sessionB.count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, other.count())
}

func TestFailingConnectionIsDroppedOthersStillServed(t *testing.T) {
	hub := startHub(t)

	dead := &recorderConn{fail: true}
	alive := &recorderConn{}
	hub.Register(&Client{UserID: uuid.New(), IsAdmin: true, Conn: dead})
	hub.Register(&Client{UserID: uuid.New(), IsAdmin: true, Conn: alive})

	hub.PublishToAdmins(map[string]string{"type": "booking_created"})
	require.Eventually(t, func() bool { return alive.count() == 1 }, time.Second, 5*time.Millisecond)

	dead.mu.Lock()
	closed := dead.closed
	dead.mu.Unlock()
	assert.True(t, closed, "dead connections are closed and evicted")

	hub.PublishToAdmins(map[string]string{"type": "booking_cancelled"})
	require.Eventually(t, func() bool { return alive.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := startHub(t)

	userID := uuid.New()
	conn := &recorderConn{}
	client := &Client{UserID: userID, Conn: conn}
	hub.Register(client)

	hub.PublishToUser(userID, "hello")
	require.Eventually(t, func() bool { return conn.count() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	hub.PublishToUser(userID, "gone")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, conn.count())
}

func TestPublishNeverBlocksWhenHubIsStalled(t *testing.T) {
	// hub deliberately not running: the buffered channel fills and the
	// overflow is dropped instead of stalling the publisher
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+50; i++ {
			hub.PublishToAdmins(map[string]int{"seq": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishToAdmins blocked on a stalled hub")
	}
}
