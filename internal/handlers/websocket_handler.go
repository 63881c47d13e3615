package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/TuongNguyen09/web-chat/internal/handlers/ws"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

type WebSocketHandler struct {
	hub             *ws.Hub
	presenceService *service.PresenceService
	typingService   *service.TypingService
	chatService     *service.ChatService
}

func NewWebSocketHandler(hub *ws.Hub, presenceService *service.PresenceService, typingService *service.TypingService, chatService *service.ChatService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		presenceService: presenceService,
		typingService:   typingService,
		chatService:     chatService,
	}
}

// GetHub returns the hub instance (useful for publishing from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// HandleWebSocket runs one authenticated connection. The identity was bound
// by the auth middleware before the upgrade; every command on this
// connection acts as that user. Presence transitions fire on the user's
// first connection and last disconnect, so a second device connecting or
// dropping does not flap the online flag.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)

	client, first := h.hub.Register(userID, c)
	if first {
		// Synchronous: the online record must exist before the read loop can
		// end, otherwise a fast disconnect could mark offline first and the
		// late mark-online would leave a stale record with no connection
		// behind it.
		if err := h.presenceService.MarkOnline(userID); err != nil {
			log.Printf("Failed to mark user %d online: %v", userID, err)
		}
	}

	defer func() {
		if last := h.hub.Unregister(client); last {
			if err := h.presenceService.MarkOffline(userID); err != nil {
				log.Printf("Failed to mark user %d offline: %v", userID, err)
			}
		}
	}()

	log.Printf("User %d connected via WebSocket", userID)

	ctx := &ws.MessageContext{
		UserID:        userID,
		Client:        client,
		Hub:           h.hub,
		TypingService: h.typingService,
		ChatService:   h.chatService,
	}

	for {
		_, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			ws.SendError(client, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			ws.SendError(client, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %d disconnected from WebSocket", userID)
}
