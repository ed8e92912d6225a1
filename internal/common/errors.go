// Package common defines shared constants and sentinel errors used across
// the Trainspotter backend. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Caller-input errors.
	ErrorValidation      = errors.New("validation error")
	ErrorInvalidUsername = errors.New("invalid username")
	ErrorAlreadyExists   = errors.New("already exists")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")

	// Backend I/O failures, not attributable to caller input. Kept
	// separate so "wrong password" and "backend unavailable" stay
	// distinguishable to callers.
	ErrorStore = errors.New("store failure")
	ErrorCache = errors.New("cache failure")
)
