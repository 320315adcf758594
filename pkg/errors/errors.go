package hue_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Chat domain errors
var (
	ErrEmptyBody      = errors.New("message body is empty")
	ErrWindowExpired  = errors.New("edit window expired")
	ErrAlreadyDeleted = errors.New("message already deleted")
	ErrSelfRequest    = errors.New("cannot befriend yourself")
	ErrAlreadyFriends = errors.New("already friends")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
