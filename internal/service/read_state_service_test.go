package service

import (
	"errors"
	"testing"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/cache"
)

func newTestReadStateService() (*ReadStateService, *UnreadService, *MockChatRepository, *MockMessageRepository, *MockReadStateRepository) {
	store := cache.NewMemoryStore()
	unread := NewUnreadService(store, &RecordingBroadcaster{})
	chatRepo := NewMockChatRepository()
	messageRepo := NewMockMessageRepository()
	readStateRepo := NewMockReadStateRepository()
	svc := NewReadStateService(readStateRepo, chatRepo, messageRepo, unread)
	return svc, unread, chatRepo, messageRepo, readStateRepo
}

func TestMarkReadResetsCounter(t *testing.T) {
	svc, unread, chatRepo, messageRepo, readStateRepo := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2)
	messageRepo.AddMessage(55, 10, 1)

	unread.Increment(10, 1, []uint{1, 2})
	unread.Increment(10, 1, []uint{1, 2})

	if err := svc.MarkRead(10, 2, 55); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	counts, _ := unread.GetAll(2)
	if _, ok := counts[10]; ok {
		t.Errorf("counter survived MarkRead: %v", counts)
	}

	state, err := readStateRepo.Get(10, 2)
	if err != nil {
		t.Fatalf("read state missing after MarkRead: %v", err)
	}
	if state.LastReadMessageID != 55 {
		t.Errorf("LastReadMessageID = %d, want 55", state.LastReadMessageID)
	}
}

func TestMarkReadIsMonotonic(t *testing.T) {
	svc, _, chatRepo, messageRepo, readStateRepo := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2)
	messageRepo.AddMessage(40, 10, 1)
	messageRepo.AddMessage(55, 10, 1)

	svc.MarkRead(10, 2, 55)
	// A stale acknowledgment (older message id) must not move the marker back.
	svc.MarkRead(10, 2, 40)

	state, _ := readStateRepo.Get(10, 2)
	if state.LastReadMessageID != 55 {
		t.Errorf("LastReadMessageID = %d after stale ack, want 55", state.LastReadMessageID)
	}
}

func TestMarkReadRejectsForeignMessage(t *testing.T) {
	svc, unread, chatRepo, messageRepo, readStateRepo := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2)
	chatRepo.AddChat(11, 1, 2)
	messageRepo.AddMessage(55, 11, 1) // lives in the other chat

	unread.Increment(10, 1, []uint{1, 2})

	// Unknown id and an id from another chat are both rejected.
	if err := svc.MarkRead(10, 2, 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown message id err = %v, want ErrNotFound", err)
	}
	if err := svc.MarkRead(10, 2, 55); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign message id err = %v, want ErrNotFound", err)
	}

	// Neither the marker nor the counter moved.
	if _, err := readStateRepo.Get(10, 2); err == nil {
		t.Error("read state written for rejected acknowledgment")
	}
	counts, _ := unread.GetAll(2)
	if counts[10] != 1 {
		t.Errorf("counter = %d after rejected MarkRead, want 1", counts[10])
	}
}

func TestMarkReadPersistFailureLeavesCounter(t *testing.T) {
	svc, unread, chatRepo, messageRepo, readStateRepo := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2)
	messageRepo.AddMessage(55, 10, 1)

	unread.Increment(10, 1, []uint{1, 2})
	readStateRepo.failNext = errors.New("db down")

	if err := svc.MarkRead(10, 2, 55); err == nil {
		t.Fatal("MarkRead succeeded despite persistence failure")
	}

	// The counter reset never ran; the client retries and sees the unread.
	counts, _ := unread.GetAll(2)
	if counts[10] != 1 {
		t.Errorf("counter = %d after failed MarkRead, want 1", counts[10])
	}
}

func TestMarkReadRequiresMembership(t *testing.T) {
	svc, _, chatRepo, messageRepo, _ := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2)
	messageRepo.AddMessage(55, 10, 1)

	if err := svc.MarkRead(10, 3, 55); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-member MarkRead err = %v, want ErrForbidden", err)
	}
}

func TestGetReadState(t *testing.T) {
	svc, _, chatRepo, messageRepo, _ := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2)
	messageRepo.AddMessage(7, 10, 1)

	if _, err := svc.Get(10, 2); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get before any ack err = %v, want ErrNotFound", err)
	}

	svc.MarkRead(10, 2, 7)
	state, err := svc.Get(10, 2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.LastReadMessageID != 7 {
		t.Errorf("LastReadMessageID = %d, want 7", state.LastReadMessageID)
	}
}

func TestListForChat(t *testing.T) {
	svc, _, chatRepo, messageRepo, _ := newTestReadStateService()
	chatRepo.AddChat(10, 1, 2, 3)
	messageRepo.AddMessage(5, 10, 1)
	messageRepo.AddMessage(9, 10, 1)

	svc.MarkRead(10, 1, 9)
	svc.MarkRead(10, 2, 5)

	states, err := svc.ListForChat(10, 3)
	if err != nil {
		t.Fatalf("ListForChat failed: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d read states, want 2", len(states))
	}

	if _, err := svc.ListForChat(10, 9); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-member ListForChat err = %v, want ErrForbidden", err)
	}

	// A chat with no acknowledgments lists empty, not nil.
	chatRepo.AddChat(11, 1, 2)
	states, err = svc.ListForChat(11, 1)
	if err != nil {
		t.Fatalf("ListForChat on quiet chat failed: %v", err)
	}
	if states == nil || len(states) != 0 {
		t.Errorf("quiet chat states = %#v, want empty slice", states)
	}
}
