package model

import "errors"

// Common errors used across the application
var (
	// Coordinator errors
	ErrInvalidTransition   = errors.New("event does not apply to the current screen state")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	ErrStaleWinnerSession  = errors.New("waiting winner has no screen session")
	ErrForfeitDisconnect   = errors.New("player forfeited by disconnecting")
	ErrPersistenceFailure  = errors.New("failed to persist score")

	// Lookup errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNotQueued       = errors.New("player is not queued")
	ErrScreenNotFound  = errors.New("screen not found")

	// Request errors
	ErrAlreadyQueued       = errors.New("player is already queued")
	ErrAlreadyPlaying      = errors.New("player is already in a match")
	ErrDisplayNotConnected = errors.New("screen display is not connected")
	ErrInvalidSlot         = errors.New("invalid slot")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrUnauthorized        = errors.New("unauthorized")
)
