package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes. Every domain error wraps exactly one of these so the HTTP
// layer can map it to a status without knowing the concrete cause.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage unavailable")
)

// Validation errors
var (
	ErrInvalidDirection  = fmt.Errorf("%w: direction must be left or right", ErrInvalidInput)
	ErrSelfSwipe         = fmt.Errorf("%w: a pet cannot swipe on itself", ErrInvalidInput)
	ErrSelfAction        = fmt.Errorf("%w: cannot target yourself", ErrInvalidInput)
	ErrInvalidStatus     = fmt.Errorf("%w: status must be matched or rejected", ErrInvalidInput)
	ErrInvalidVisibility = fmt.Errorf("%w: visibility must be public, followers or private", ErrInvalidInput)
)

// Ownership errors
var (
	ErrPetNotOwned   = fmt.Errorf("%w: pet is not owned by the caller", ErrForbidden)
	ErrMatchAccess   = fmt.Errorf("%w: caller owns neither pet of this match", ErrForbidden)
	ErrPostNotOwned  = fmt.Errorf("%w: post was written by another user", ErrForbidden)
	ErrStoryNotOwned = fmt.Errorf("%w: story was posted by another user", ErrForbidden)
)

// Not found errors
var (
	ErrPetNotFound   = fmt.Errorf("%w: pet", ErrNotFound)
	ErrPostNotFound  = fmt.Errorf("%w: post", ErrNotFound)
	ErrMatchNotFound = fmt.Errorf("%w: match", ErrNotFound)
	ErrStoryNotFound = fmt.Errorf("%w: story", ErrNotFound)
)

// Conflict errors
var (
	ErrDecisionAlreadyMade = fmt.Errorf("%w: a decision has already been made for this pair", ErrConflict)
	ErrMatchExists         = fmt.Errorf("%w: a match record already exists for this pair", ErrConflict)
	ErrAlreadyFollowing    = fmt.Errorf("%w: already following", ErrConflict)
)

// StorageError wraps a driver error so callers can still match both the
// storage class and the underlying cause (e.g. gorm.ErrDuplicatedKey).
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// StatusFromError maps an error class to its HTTP status
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
