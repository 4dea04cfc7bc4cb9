package game

import "errors"

var (
	// ErrOutOfRange is returned when the cursor is past the end of the passage.
	ErrOutOfRange = errors.New("cursor out of range")
	// ErrInvalidTransition is returned for a trigger the current state does not define.
	ErrInvalidTransition = errors.New("invalid transition")
)
