package service

// Broadcaster is the one-way fan-out interface the trackers publish through.
// Delivery is best effort: calls return immediately and never report whether
// any subscriber received the event. Missed events are recovered through the
// snapshot endpoints, never through redelivery.
//
// The WebSocket hub implements this in production.
type Broadcaster interface {
	// PublishGlobal delivers to every subscriber of the global topic.
	PublishGlobal(eventType string, payload interface{})
	// PublishToUser delivers to all of a user's active connections.
	PublishToUser(userID uint, eventType string, payload interface{})
	// PublishToChat delivers to subscribers of a chat topic. subtopic scopes
	// the topic further ("typing"); empty means the chat's main topic.
	PublishToChat(chatID uint, subtopic string, eventType string, payload interface{})
}

// NopBroadcaster discards every event. Used when the serving layer runs
// without a realtime hub (one-off tools, tests).
type NopBroadcaster struct{}

func (NopBroadcaster) PublishGlobal(string, interface{})             {}
func (NopBroadcaster) PublishToUser(uint, string, interface{})       {}
func (NopBroadcaster) PublishToChat(uint, string, string, interface{}) {}
