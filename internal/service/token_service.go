package service

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/models"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour

	blacklistPrefix   = "bl:access:"
	refreshPrefix     = "rt:"
	userRefreshPrefix = "user:rt:"
)

// Claims is the signed content of both token kinds.
type Claims struct {
	UserID uint   `json:"user_id"`
	Kind   string `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues, verifies and revokes session credentials. Refresh
// token state (jti -> user mapping plus a per-user pointer) and the access
// token blacklist live in the shared store so every serving instance agrees.
type TokenService struct {
	store      cache.Store
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(store cache.Store) *TokenService {
	return &TokenService{
		store:      store,
		secret:     []byte(os.Getenv("JWT_SECRET")),
		accessTTL:  envDuration("JWT_ACCESS_TTL", defaultAccessTTL),
		refreshTTL: envDuration("JWT_REFRESH_TTL", defaultRefreshTTL),
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Issue builds a fresh access/refresh pair for the user and records the
// refresh jti in the store with TTL equal to the refresh lifetime.
func (s *TokenService) Issue(user *models.User) (*TokenPair, error) {
	access, _, err := s.generate(user, AccessToken, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshJTI, err := s.generate(user, RefreshToken, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	userID := strconv.FormatUint(uint64(user.ID), 10)
	if err := s.store.Set(refreshPrefix+refreshJTI, userID, s.refreshTTL); err != nil {
		return nil, err
	}
	// Pointer from user to current refresh jti so all sessions can be
	// revoked in O(1) on logout.
	if err := s.store.Set(userRefreshPrefix+userID, refreshJTI, s.refreshTTL); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) generate(user *models.User, kind TokenKind, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		UserID: user.ID,
		Kind:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    "web-chat",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Verify checks signature, expiry and kind, and for access tokens the
// revocation blacklist. Every failure collapses to ErrUnauthenticated so the
// caller cannot tell which check fired; only a failed store round trip is
// surfaced distinctly.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, apperr.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Kind != string(kind) || claims.ID == "" {
		return nil, apperr.ErrUnauthenticated
	}

	if kind == AccessToken {
		blacklisted, err := s.store.Exists(blacklistPrefix + claims.ID)
		if err != nil {
			return nil, err
		}
		if blacklisted {
			return nil, apperr.ErrUnauthenticated
		}
	}

	return claims, nil
}

// RevokeAccess blacklists an access jti for its remaining lifetime. The entry
// self-expires exactly when the token would have, so the set never outgrows
// the live token population.
func (s *TokenService) RevokeAccess(jti string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	return s.store.Set(blacklistPrefix+jti, "1", remaining)
}

// ConsumeRefresh resolves a refresh jti to its owning user and deletes the
// mapping in the same store round trip. A second call with the same jti gets
// ErrUnauthenticated, which is how refresh token reuse is detected.
func (s *TokenService) ConsumeRefresh(jti string) (uint, error) {
	val, err := s.store.GetDel(refreshPrefix + jti)
	if errors.Is(err, cache.ErrNotFound) {
		return 0, apperr.ErrUnauthenticated
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("corrupt refresh mapping for jti %s: %w", jti, apperr.ErrUnauthenticated)
	}
	return uint(userID), nil
}

// RevokeAllForUser drops the user's refresh pointer and its target mapping.
func (s *TokenService) RevokeAllForUser(userID uint) error {
	userKey := userRefreshPrefix + strconv.FormatUint(uint64(userID), 10)
	jti, err := s.store.Get(userKey)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return err
	}
	keys := []string{userKey}
	if jti != "" {
		keys = append(keys, refreshPrefix+jti)
	}
	return s.store.Delete(keys...)
}
