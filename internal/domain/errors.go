package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrSessionPaused    = errors.New("session is paused")

	// ErrInvalidSequence is returned for an empty step list or a step
	// with a negative duration.
	ErrInvalidSequence = errors.New("invalid sequence")
	// ErrInvalidElapsed is returned for a negative clock value.
	ErrInvalidElapsed = errors.New("invalid elapsed time")
	// ErrInvalidInput is returned when narration is checked against a
	// non-positive allotted duration, or the checker is misconfigured.
	ErrInvalidInput = errors.New("invalid input")
)
