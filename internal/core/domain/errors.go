package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMissingUser indicates a query arrived with no user and no
	// authenticated session identity.
	ErrMissingUser = errors.New("user is required")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answers fall back to extractive synthesis.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRemoteUnavailable indicates no remote document store is configured.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrExtraction indicates a document could not be turned into text.
	// Never surfaced to users; the document is skipped.
	ErrExtraction = errors.New("text extraction failed")

	// ErrConnector indicates a source could not be searched.
	// The affected scope group contributes no documents.
	ErrConnector = errors.New("connector failed")

	// ErrSynthesis indicates the language model produced no usable answer.
	// The synthesizer falls back to extractive mode.
	ErrSynthesis = errors.New("synthesis failed")

	// Authentication Errors.

	// ErrAuthRequired indicates the remote store requires authentication but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// UnknownUserError is returned when a query names a user that is not in
// the registry. Valid lists the known users, sorted.
type UnknownUserError struct {
	User  string
	Valid []string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown user %q (valid users: %s)", e.User, strings.Join(e.Valid, ", "))
}
