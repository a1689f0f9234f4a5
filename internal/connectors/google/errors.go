package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return is(err, ErrUnauthorized, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return is(err, ErrForbidden, http.StatusForbidden)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return is(err, ErrNotFound, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return is(err, ErrRateLimited, http.StatusTooManyRequests)
}

func is(err, sentinel error, code int) bool {
	if errors.Is(err, sentinel) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// RetryAfter returns the Retry-After header of a Google API error in
// seconds, or 0 when absent.
func RetryAfter(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs < 0 {
		return 0
	}
	return secs
}

// WrapError converts a Google API error into a domain error that keeps
// the Google sentinel in its chain.
//
//	401            -> domain.ErrAuthInvalid
//	403            -> domain.ErrAuthInvalid
//	404            -> domain.ErrNotFound
//	429            -> domain.ErrRateLimited
//	anything else  -> domain.ErrRemoteUnavailable
//
// Token refresh failures already carry domain.ErrTokenRefreshFailed and
// are returned unchanged.
func WrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrTokenRefreshFailed):
		return err
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, ErrUnauthorized)
	case IsForbidden(err):
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, ErrForbidden)
	case IsNotFound(err):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, ErrNotFound)
	case IsRateLimited(err):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, ErrRateLimited)
	default:
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
}
