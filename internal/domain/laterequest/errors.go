package laterequest

import "errors"

var (
	ErrRequestNotFound   = errors.New("late attendance request not found")
	ErrInvalidTransition = errors.New("late attendance request cannot move to the requested status")
	ErrEmptyPunches      = errors.New("at least one requested punch is required")
)
