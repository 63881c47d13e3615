package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
)

// TypingTTL bounds how long a typing signal lives without a refresh. A client
// that crashes mid-composition disappears from the typers list on its own;
// no cleanup job exists.
const TypingTTL = 5 * time.Second

type TypingService struct {
	store       cache.Store
	chatRepo    repository.ChatRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	userCache   *cache.UserCache
	broadcaster Broadcaster
}

func NewTypingService(store cache.Store, chatRepo repository.ChatRepositoryInterface, userRepo repository.UserRepositoryInterface, userCache *cache.UserCache, broadcaster Broadcaster) *TypingService {
	return &TypingService{
		store:       store,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		userCache:   userCache,
		broadcaster: broadcaster,
	}
}

func typingKey(chatID, userID uint) string {
	return fmt.Sprintf("typing:%d:%d", chatID, userID)
}

func typingPattern(chatID uint) string {
	return fmt.Sprintf("typing:%d:*", chatID)
}

// StartTyping writes a fresh signal with the full TTL. Restarting replaces
// the previous signal rather than extending it.
func (s *TypingService) StartTyping(chatID, userID uint) error {
	if err := s.ensureMember(chatID, userID); err != nil {
		return err
	}
	if err := s.store.Set(typingKey(chatID, userID), "1", TypingTTL); err != nil {
		return err
	}
	s.broadcast(chatID, userID, true)
	return nil
}

// StopTyping is idempotent: deleting an absent signal is not an error.
func (s *TypingService) StopTyping(chatID, userID uint) error {
	if err := s.ensureMember(chatID, userID); err != nil {
		return err
	}
	if err := s.store.Delete(typingKey(chatID, userID)); err != nil {
		return err
	}
	s.broadcast(chatID, userID, false)
	return nil
}

// GetActiveTypers enumerates live signals for the chat and intersects them
// with current membership, so signals outliving a membership change are
// filtered rather than cleaned up.
func (s *TypingService) GetActiveTypers(chatID, requesterID uint) ([]models.TypingEvent, error) {
	if err := s.ensureMember(chatID, requesterID); err != nil {
		return nil, err
	}

	keys, err := s.store.ScanKeys(typingPattern(chatID))
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.chatRepo.MemberIDs(chatID)
	if err != nil {
		return nil, err
	}
	members := make(map[uint]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}

	typers := make([]models.TypingEvent, 0, len(keys))
	for _, key := range keys {
		userID, ok := userIDFromTypingKey(key)
		if !ok {
			continue
		}
		if _, isMember := members[userID]; !isMember {
			continue
		}
		typers = append(typers, models.TypingEvent{
			ChatID:      chatID,
			UserID:      userID,
			DisplayName: s.displayName(userID),
			Typing:      true,
		})
	}
	return typers, nil
}

func (s *TypingService) ensureMember(chatID, userID uint) error {
	if _, err := s.chatRepo.FindByID(chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	isMember, err := s.chatRepo.IsMember(chatID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *TypingService) broadcast(chatID, userID uint, typing bool) {
	s.broadcaster.PublishToChat(chatID, "typing", "typing", models.TypingEvent{
		ChatID:      chatID,
		UserID:      userID,
		DisplayName: s.displayName(userID),
		Typing:      typing,
	})
}

func (s *TypingService) displayName(userID uint) string {
	if cached, ok := s.userCache.GetProfile(userID); ok {
		return cached.DisplayName()
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ""
	}
	_ = s.userCache.SetProfile(user)
	return user.DisplayName()
}

func userIDFromTypingKey(key string) (uint, bool) {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(key[idx+1:], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
