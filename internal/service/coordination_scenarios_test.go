package service

import (
	"testing"
	"time"

	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
)

// End-to-end flows across the coordination services, wired the way main wires
// them (shared store, shared broadcaster) but with mock persistence.

func TestTypingLifecycleAcrossMembers(t *testing.T) {
	store := cache.NewMemoryStore()
	chatRepo := NewMockChatRepository()
	userRepo := NewMockUserRepository()
	userRepo.Create(&models.User{ID: 1, Username: "a", Email: "a@example.com"})
	userRepo.Create(&models.User{ID: 2, Username: "b", Email: "b@example.com"})
	typing := NewTypingService(store, chatRepo, userRepo, cache.NewUserCache(store), NopBroadcaster{})

	chatRepo.AddChat(10, 1, 2)

	base := time.Now()
	store.Now = func() time.Time { return base }
	if err := typing.StartTyping(10, 1); err != nil {
		t.Fatalf("StartTyping failed: %v", err)
	}

	// Within the signal lifetime the other member sees the typer.
	store.Now = func() time.Time { return base.Add(3 * time.Second) }
	typers, err := typing.GetActiveTypers(10, 2)
	if err != nil {
		t.Fatalf("GetActiveTypers failed: %v", err)
	}
	if len(typers) != 1 || typers[0].UserID != 1 || !typers[0].Typing || typers[0].ChatID != 10 {
		t.Fatalf("typers at t+3s = %+v, want user 1 typing in chat 10", typers)
	}

	// One second past the lifetime, with no further signal, the list is empty.
	store.Now = func() time.Time { return base.Add(6 * time.Second) }
	typers, err = typing.GetActiveTypers(10, 2)
	if err != nil {
		t.Fatalf("GetActiveTypers failed: %v", err)
	}
	if len(typers) != 0 {
		t.Errorf("typers at t+6s = %+v, want none", typers)
	}
}

func TestMessageReadFlowAcrossMembers(t *testing.T) {
	store := cache.NewMemoryStore()
	broadcaster := &RecordingBroadcaster{}
	unread := NewUnreadService(store, broadcaster)
	chatRepo := NewMockChatRepository()
	messageRepo := NewMockMessageRepository()
	readStateRepo := NewMockReadStateRepository()
	messages := NewMessageService(messageRepo, chatRepo, unread, broadcaster)
	readState := NewReadStateService(readStateRepo, chatRepo, messageRepo, unread)

	// Chat with members A=1, B=2, D=3.
	chatRepo.AddChat(10, 1, 2, 3)

	m1, err := messages.SendMessage(10, 1, SendMessageInput{Content: "hello"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	counts := func(userID uint) int64 {
		all, err := unread.GetAll(userID)
		if err != nil {
			t.Fatalf("GetAll(%d) failed: %v", userID, err)
		}
		return all[10]
	}

	if counts(2) != 1 || counts(3) != 1 {
		t.Fatalf("B=%d D=%d after send, want 1 and 1", counts(2), counts(3))
	}
	if counts(1) != 0 {
		t.Fatalf("sender count = %d, want 0", counts(1))
	}

	if err := readState.MarkRead(10, 2, m1.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	if counts(2) != 0 {
		t.Errorf("B count = %d after MarkRead, want 0", counts(2))
	}
	if counts(3) != 1 {
		t.Errorf("D count = %d after B's MarkRead, want 1 (untouched)", counts(3))
	}

	state, err := readStateRepo.Get(10, 2)
	if err != nil {
		t.Fatalf("read state missing: %v", err)
	}
	if state.LastReadMessageID != m1.ID {
		t.Errorf("LastReadMessageID = %d, want %d", state.LastReadMessageID, m1.ID)
	}
}
