package apperr

import "errors"

// Sentinel errors for the coordination layer. Services return these (wrapped
// with context where useful); handlers translate them to HTTP responses.
var (
	// ErrUnauthenticated covers every credential failure: bad signature,
	// expired, wrong kind, blacklisted jti, reused refresh token. Callers
	// never learn which.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but is not a member of
	// the target chat.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")

	ErrInvalidState = errors.New("invalid state")

	// ErrStoreUnavailable signals a failed round trip to the ephemeral store.
	// Retryable, and distinct from the domain errors above.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }
func IsForbidden(err error) bool       { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsInvalidState(err error) bool    { return errors.Is(err, ErrInvalidState) }
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
