package model

import "errors"

// Common errors used across the application
var (
	// Engine errors
	ErrInvalidConfiguration = errors.New("invalid minefield configuration")
	ErrIndexOutOfRange      = errors.New("coordinate outside the grid")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)
