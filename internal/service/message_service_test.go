package service

import (
	"errors"
	"testing"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
)

func newTestMessageService() (*MessageService, *MockChatRepository, *MockMessageRepository, *UnreadService, *RecordingBroadcaster) {
	store := cache.NewMemoryStore()
	broadcaster := &RecordingBroadcaster{}
	unread := NewUnreadService(store, broadcaster)
	chatRepo := NewMockChatRepository()
	messageRepo := NewMockMessageRepository()
	svc := NewMessageService(messageRepo, chatRepo, unread, broadcaster)
	return svc, chatRepo, messageRepo, unread, broadcaster
}

func TestSendMessage(t *testing.T) {
	svc, chatRepo, _, unread, broadcaster := newTestMessageService()
	chatRepo.AddChat(10, 1, 2, 3)

	resp, err := svc.SendMessage(10, 1, SendMessageInput{Content: "  hello there  "})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("Content = %q, want trimmed", resp.Content)
	}
	if resp.ClientID == "" {
		t.Error("ClientID not defaulted")
	}
	if resp.MessageType != models.TextMessage {
		t.Errorf("MessageType = %q, want text", resp.MessageType)
	}

	// Fan-out to the chat topic.
	chatEvents := broadcaster.eventsOfType("new_message")
	if len(chatEvents) != 1 || chatEvents[0].ChatID != 10 || chatEvents[0].Subtopic != "" {
		t.Fatalf("new_message events = %+v, want one on chat 10 main topic", chatEvents)
	}

	// Unread counters bumped for everyone but the sender.
	for _, member := range []uint{2, 3} {
		counts, _ := unread.GetAll(member)
		if counts[10] != 1 {
			t.Errorf("user %d counter = %d, want 1", member, counts[10])
		}
	}
	counts, _ := unread.GetAll(1)
	if len(counts) != 0 {
		t.Errorf("sender counters = %v, want none", counts)
	}
}

func TestSendMessageRequiresMembership(t *testing.T) {
	svc, chatRepo, _, _, broadcaster := newTestMessageService()
	chatRepo.AddChat(10, 1, 2)

	_, err := svc.SendMessage(10, 9, SendMessageInput{Content: "hi"})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-member SendMessage err = %v, want ErrForbidden", err)
	}
	if len(broadcaster.Events) != 0 {
		t.Errorf("events published for rejected message: %+v", broadcaster.Events)
	}
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	svc, chatRepo, _, _, _ := newTestMessageService()
	chatRepo.AddChat(10, 1, 2)

	if _, err := svc.SendMessage(10, 1, SendMessageInput{Content: "   "}); err == nil {
		t.Error("whitespace-only message accepted")
	}
}

func TestSendMessageDeduplicatesByClientID(t *testing.T) {
	svc, chatRepo, _, _, _ := newTestMessageService()
	chatRepo.AddChat(10, 1, 2)

	input := SendMessageInput{ClientID: "11111111-1111-1111-1111-111111111111", Content: "hi"}
	if _, err := svc.SendMessage(10, 1, input); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if _, err := svc.SendMessage(10, 1, input); err == nil {
		t.Error("retried client_id accepted twice")
	}
}

func TestGetChatMessages(t *testing.T) {
	svc, chatRepo, _, _, _ := newTestMessageService()
	chatRepo.AddChat(10, 1, 2)

	for i := 0; i < 5; i++ {
		if _, err := svc.SendMessage(10, 1, SendMessageInput{Content: "msg"}); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	messages, err := svc.GetChatMessages(10, 2, 0, 3)
	if err != nil {
		t.Fatalf("GetChatMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	// Newest first.
	if messages[0].ID <= messages[1].ID {
		t.Errorf("messages not newest-first: %d then %d", messages[0].ID, messages[1].ID)
	}

	// Cursor pages strictly older messages.
	older, err := svc.GetChatMessages(10, 2, messages[2].ID, 10)
	if err != nil {
		t.Fatalf("cursor page failed: %v", err)
	}
	for _, m := range older {
		if m.ID >= messages[2].ID {
			t.Errorf("cursor page returned message %d >= cursor %d", m.ID, messages[2].ID)
		}
	}

	if _, err := svc.GetChatMessages(10, 9, 0, 10); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-member GetChatMessages err = %v, want ErrForbidden", err)
	}
}
