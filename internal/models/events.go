package models

// Realtime event payloads pushed over the WebSocket hub. These are
// best-effort: a disconnected subscriber misses them and recovers via the
// snapshot endpoints.

type PresenceEvent struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Online      bool   `json:"online"`
	LastSeen    int64  `json:"last_seen"` // epoch millis
}

type TypingEvent struct {
	ChatID      uint   `json:"chat_id"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Typing      bool   `json:"typing"`
}

type UnreadEvent struct {
	ChatID      uint  `json:"chat_id"`
	UnreadCount int64 `json:"unread_count"`
}

type NewMessageEvent struct {
	ChatID  uint            `json:"chat_id"`
	Message MessageResponse `json:"message"`
}
