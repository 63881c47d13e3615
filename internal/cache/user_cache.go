package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/TuongNguyen09/web-chat/internal/models"
)

const userProfileTTL = 5 * time.Minute

// CachedUser is the subset of the user record needed to decorate presence
// and typing events without a database round trip.
type CachedUser struct {
	ID       uint   `msgpack:"id"`
	Username string `msgpack:"username"`
	FullName string `msgpack:"full_name"`
}

func (u *CachedUser) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// UserCache caches user profiles in the shared store, msgpack-encoded.
type UserCache struct {
	store Store
}

func NewUserCache(store Store) *UserCache {
	return &UserCache{store: store}
}

func profileKey(userID uint) string {
	return fmt.Sprintf("profile:%d", userID)
}

func (uc *UserCache) GetProfile(userID uint) (*CachedUser, bool) {
	if uc == nil || uc.store == nil {
		return nil, false
	}
	data, err := uc.store.GetBytes(profileKey(userID))
	if err != nil {
		return nil, false
	}
	var cached CachedUser
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (uc *UserCache) SetProfile(user *models.User) error {
	if uc == nil || uc.store == nil {
		return nil
	}
	data, err := msgpack.Marshal(&CachedUser{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	})
	if err != nil {
		return err
	}
	return uc.store.Set(profileKey(user.ID), data, userProfileTTL)
}

func (uc *UserCache) InvalidateProfile(userID uint) error {
	if uc == nil || uc.store == nil {
		return nil
	}
	return uc.store.Delete(profileKey(userID))
}
