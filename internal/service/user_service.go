package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
)

type UserService struct {
	userRepo  repository.UserRepositoryInterface
	userCache *cache.UserCache
}

func NewUserService(userRepo repository.UserRepositoryInterface, userCache *cache.UserCache) *UserService {
	return &UserService{userRepo: userRepo, userCache: userCache}
}

func (s *UserService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Warm the profile cache so presence/typing events resolve names cheaply.
	_ = s.userCache.SetProfile(user)
	return user, nil
}

func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return user, err
}
