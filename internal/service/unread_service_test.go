package service

import (
	"testing"

	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
)

func TestUnreadIncrementSkipsSender(t *testing.T) {
	store := cache.NewMemoryStore()
	broadcaster := &RecordingBroadcaster{}
	svc := NewUnreadService(store, broadcaster)

	members := []uint{1, 2, 3}
	if err := svc.Increment(10, 1, members); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	senderCounts, _ := svc.GetAll(1)
	if len(senderCounts) != 0 {
		t.Errorf("sender counters = %v, want none", senderCounts)
	}
	for _, member := range []uint{2, 3} {
		counts, _ := svc.GetAll(member)
		if counts[10] != 1 {
			t.Errorf("user %d counter = %d, want 1", member, counts[10])
		}
	}
}

func TestUnreadAccumulatesPerChat(t *testing.T) {
	store := cache.NewMemoryStore()
	broadcaster := &RecordingBroadcaster{}
	svc := NewUnreadService(store, broadcaster)

	members := []uint{1, 2}
	svc.Increment(10, 1, members)
	svc.Increment(10, 1, members)
	svc.Increment(10, 1, members)
	svc.Increment(11, 1, members)

	counts, err := svc.GetAll(2)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if counts[10] != 3 {
		t.Errorf("chat 10 counter = %d, want 3", counts[10])
	}
	if counts[11] != 1 {
		t.Errorf("chat 11 counter = %d, want 1", counts[11])
	}

	// Each increment pushes the exact post-increment value.
	events := broadcaster.eventsOfType("unread")
	if len(events) != 4 {
		t.Fatalf("got %d unread events, want 4", len(events))
	}
	third := events[2].Payload.(models.UnreadEvent)
	if third.ChatID != 10 || third.UnreadCount != 3 {
		t.Errorf("third event = %+v, want chat 10 count 3", third)
	}
}

func TestUnreadReset(t *testing.T) {
	store := cache.NewMemoryStore()
	broadcaster := &RecordingBroadcaster{}
	svc := NewUnreadService(store, broadcaster)

	svc.Increment(10, 1, []uint{1, 2})
	svc.Increment(11, 1, []uint{1, 2})

	if err := svc.Reset(2, 10); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	counts, _ := svc.GetAll(2)
	if _, ok := counts[10]; ok {
		t.Errorf("chat 10 counter survived reset: %v", counts)
	}
	if counts[11] != 1 {
		t.Errorf("chat 11 counter = %d, want 1 (untouched)", counts[11])
	}

	events := broadcaster.eventsOfType("unread")
	last := events[len(events)-1]
	if last.UserID != 2 {
		t.Errorf("reset event user = %d, want 2", last.UserID)
	}
	payload := last.Payload.(models.UnreadEvent)
	if payload.ChatID != 10 || payload.UnreadCount != 0 {
		t.Errorf("reset event = %+v, want chat 10 count 0", payload)
	}
}

func TestUnreadResetWithoutCounterIsIdempotent(t *testing.T) {
	store := cache.NewMemoryStore()
	svc := NewUnreadService(store, &RecordingBroadcaster{})

	if err := svc.Reset(2, 10); err != nil {
		t.Fatalf("Reset on empty state failed: %v", err)
	}
}
