package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
	"github.com/TuongNguyen09/web-chat/internal/validation"
)

type AuthService struct {
	userRepo repository.UserRepositoryInterface
	tokens   *TokenService
}

func NewAuthService(userRepo repository.UserRepositoryInterface, tokens *TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthSession struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"-"` // delivered via HttpOnly cookie only
	User         models.UserResponse `json:"user"`
}

func (s *AuthService) Register(input RegisterInput) (*AuthSession, error) {
	input.Email = validation.NormalizeEmail(input.Email)
	input.Username = validation.NormalizeUsername(input.Username)

	if !validation.ValidateEmail(input.Email) {
		return nil, errors.New("invalid email")
	}
	if !validation.ValidateUsername(input.Username) {
		return nil, errors.New("invalid username")
	}
	if !validation.ValidatePassword(input.Password) {
		return nil, errors.New("password too short")
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, errors.New("email already exists")
	}
	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.newSession(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthSession, error) {
	user, err := s.userRepo.FindByEmail(validation.NormalizeEmail(input.Email))
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return s.newSession(user)
}

// RefreshSession rotates a refresh token: the presented token is verified,
// its jti consumed (one shot), and a brand-new pair issued. A replayed
// refresh token fails verification of the jti mapping and is rejected.
func (s *AuthService) RefreshSession(refreshToken string) (*AuthSession, error) {
	claims, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := s.tokens.ConsumeRefresh(claims.ID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return s.newSession(user)
}

// Logout blacklists the access token for its remaining lifetime and revokes
// the user's current refresh token.
func (s *AuthService) Logout(accessToken string) error {
	claims, err := s.tokens.Verify(accessToken, AccessToken)
	if err != nil {
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.RevokeAccess(claims.ID, remaining); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(claims.UserID)
}

// Introspect reports whether a token is currently a valid access token.
func (s *AuthService) Introspect(token string) bool {
	_, err := s.tokens.Verify(token, AccessToken)
	return err == nil
}

func (s *AuthService) newSession(user *models.User) (*AuthSession, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthSession{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.ToResponse(),
	}, nil
}
