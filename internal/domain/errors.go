package domain

import "errors"

var (
	// ErrInvalidDuration is returned when user input is not a positive duration.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrUnknownPreset is returned when no configured preset matches a name.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrControllerStopped is returned when a command is sent after the
	// controller event loop has exited.
	ErrControllerStopped = errors.New("countdown controller stopped")

	// ErrRunExists is returned when a run with the same ID is already stored.
	ErrRunExists = errors.New("run already exists")
)
