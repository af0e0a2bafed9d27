package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this telegram id already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrAuthRecordNotFound indicates that auth record was not found
	ErrAuthRecordNotFound = errors.New("auth record not found")

	// ErrSessionNotFound indicates that session was not found or has expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrEventNotFound indicates that booking event was not found
	ErrEventNotFound = errors.New("event not found")
)
