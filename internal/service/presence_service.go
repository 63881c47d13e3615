package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
)

// presenceKey is the single hash holding userID -> last-activity millis.
// A field exists iff the user has at least one live connection.
const presenceKey = "presence:online"

type PresenceService struct {
	store       cache.Store
	userRepo    repository.UserRepositoryInterface
	userCache   *cache.UserCache
	broadcaster Broadcaster
}

func NewPresenceService(store cache.Store, userRepo repository.UserRepositoryInterface, userCache *cache.UserCache, broadcaster Broadcaster) *PresenceService {
	return &PresenceService{
		store:       store,
		userRepo:    userRepo,
		userCache:   userCache,
		broadcaster: broadcaster,
	}
}

func (s *PresenceService) MarkOnline(userID uint) error {
	now := time.Now().UnixMilli()
	if err := s.store.HashSet(presenceKey, formatUint(userID), now); err != nil {
		return err
	}
	s.broadcast(userID, true, now)
	return nil
}

func (s *PresenceService) MarkOffline(userID uint) error {
	if err := s.store.HashDelete(presenceKey, formatUint(userID)); err != nil {
		return err
	}
	s.broadcast(userID, false, time.Now().UnixMilli())
	return nil
}

func (s *PresenceService) IsOnline(userID uint) (bool, error) {
	_, err := s.store.HashGet(presenceKey, formatUint(userID))
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetLastSeen returns the stored timestamp and whether one exists. The record
// is dropped on disconnect, so an offline user has no last-seen here; callers
// fall back to now().
func (s *PresenceService) GetLastSeen(userID uint) (int64, bool, error) {
	raw, err := s.store.HashGet(presenceKey, formatUint(userID))
	if errors.Is(err, cache.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return millis, true, nil
}

// GetAllOnline is a snapshot: entries may be stale by the time the caller
// reads them.
func (s *PresenceService) GetAllOnline() (map[uint]int64, error) {
	entries, err := s.store.HashGetAll(presenceKey)
	if err != nil {
		return nil, err
	}
	online := make(map[uint]int64, len(entries))
	for field, raw := range entries {
		userID, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			continue
		}
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		online[uint(userID)] = millis
	}
	return online, nil
}

func (s *PresenceService) broadcast(userID uint, online bool, lastSeen int64) {
	event := models.PresenceEvent{
		UserID:      userID,
		DisplayName: s.displayName(userID),
		Online:      online,
		LastSeen:    lastSeen,
	}
	s.broadcaster.PublishGlobal("presence", event)
	s.broadcaster.PublishToUser(userID, "presence", event)
}

func (s *PresenceService) displayName(userID uint) string {
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

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
