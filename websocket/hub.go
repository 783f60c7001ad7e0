package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the write side of a client connection. The fiber contrib
// websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID  uuid.UUID
	IsAdmin bool
	Conn    Conn
}

type envelope struct {
	userID *uuid.UUID // nil means the admin group
	event  any
}

// Hub fans events out to connected clients: each user has their own channel
// and every admin connection receives every admin-group event. Delivery is
// at-most-once with no persistence of missed messages.
type Hub struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]map[Conn]struct{}
	admins map[Conn]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	quit       chan struct{}
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		users:      make(map[uuid.UUID]map[Conn]struct{}),
		admins:     make(map[Conn]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case env := <-h.broadcast:
			h.deliver(env)
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PublishToUser queues an event for one user's connected sessions. It never
// blocks; when the hub is backed up the event is dropped and logged.
func (h *Hub) PublishToUser(userID uuid.UUID, event any) {
	id := userID
	select {
	case h.broadcast <- envelope{userID: &id, event: event}:
	default:
		log.Printf("Notification hub backed up, dropping event for user %s", userID)
	}
}

// PublishToAdmins queues an event for every admin connection.
func (h *Hub) PublishToAdmins(event any) {
	select {
	case h.broadcast <- envelope{event: event}:
	default:
		log.Println("Notification hub backed up, dropping admin event")
	}
}

func (h *Hub) add(client *Client) {
	log.Printf("Client registered: %s (admin=%v)", client.UserID, client.IsAdmin)
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.IsAdmin {
		h.admins[client.Conn] = struct{}{}
	}
	conns, ok := h.users[client.UserID]
	if !ok {
		conns = make(map[Conn]struct{})
		h.users[client.UserID] = conns
	}
	conns[client.Conn] = struct{}{}
}

func (h *Hub) remove(client *Client) {
	log.Printf("Client unregistered: %s", client.UserID)
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.admins, client.Conn)
	if conns, ok := h.users[client.UserID]; ok {
		delete(conns, client.Conn)
		if len(conns) == 0 {
			delete(h.users, client.UserID)
		}
	}
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	targets := make([]Conn, 0, 4)
	if env.userID != nil {
		for conn := range h.users[*env.userID] {
			targets = append(targets, conn)
		}
	} else {
		for conn := range h.admins {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(env.event); err != nil {
			log.Printf("Error writing to websocket client: %v", err)
			conn.Close()
			h.dropConn(conn)
		}
	}
}

func (h *Hub) dropConn(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.admins, conn)
	for userID, conns := range h.users {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.users, userID)
			}
		}
	}
}
