package handlers

import (
	"log"

	"github.com/anjiri1684/hotel_booking/middleware"
	"github.com/anjiri1684/hotel_booking/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ServeWs upgrades a client connection, authenticates it with a first-frame
// auth message and subscribes it to its user channel (and the admin group
// for admin tokens).
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	token, err := middleware.ParseToken(authMsg.Token)
	if err != nil || !token.Valid {
		log.Printf("WebSocket auth failed: invalid token: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token claims"})
		c.Close()
		return
	}
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid user_id %q: %v", rawID, err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}
	role, _ := claims["role"].(string)

	client := &websocket.Client{UserID: userID, IsAdmin: role == "admin", Conn: c}
	hub.Register(client)
	defer func() {
		hub.Unregister(client)
		c.Close()
	}()

	// Clients only listen on this feed; drain control frames until they go.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
