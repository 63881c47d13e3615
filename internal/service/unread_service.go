package service

import (
	"fmt"
	"strconv"

	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
)

type UnreadService struct {
	store       cache.Store
	broadcaster Broadcaster
}

func NewUnreadService(store cache.Store, broadcaster Broadcaster) *UnreadService {
	return &UnreadService{store: store, broadcaster: broadcaster}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:%d", userID)
}

// Increment bumps the counter of every chat member except the sender by one.
// The store's atomic increment serializes concurrent message deliveries, so
// each member's post-increment value is exact even under contention.
func (s *UnreadService) Increment(chatID, senderID uint, memberIDs []uint) error {
	field := formatUint(chatID)
	for _, memberID := range memberIDs {
		if memberID == senderID {
			continue
		}
		updated, err := s.store.HashIncrBy(unreadKey(memberID), field, 1)
		if err != nil {
			return err
		}
		s.broadcaster.PublishToUser(memberID, "unread", models.UnreadEvent{
			ChatID:      chatID,
			UnreadCount: updated,
		})
	}
	return nil
}

// Reset zeroes the counter for one (user, chat) pair.
func (s *UnreadService) Reset(userID, chatID uint) error {
	if err := s.store.HashDelete(unreadKey(userID), formatUint(chatID)); err != nil {
		return err
	}
	s.broadcaster.PublishToUser(userID, "unread", models.UnreadEvent{
		ChatID:      chatID,
		UnreadCount: 0,
	})
	return nil
}

// GetAll returns a snapshot of the user's counters across all chats.
func (s *UnreadService) GetAll(userID uint) (map[uint]int64, error) {
	entries, err := s.store.HashGetAll(unreadKey(userID))
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(entries))
	for field, raw := range entries {
		chatID, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			continue
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[uint(chatID)] = count
	}
	return counts, nil
}
