package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrPersistence means the gateway rejected or never received a state
	// change; the local copy has already been applied and kept.
	ErrPersistence = errors.New("gateway persistence failed")

	// ErrActiveRequest means the chat already has a request in flight.
	ErrActiveRequest = errors.New("request already in progress")

	ErrRateLimited = errors.New("rate limit exceeded")
)
