package domain

import "errors"

// All failures are local and recoverable; the HTTP layer maps them to status
// codes with errors.Is and leaves shared state untouched.
var (
	// ErrValidation covers malformed room names or configuration.
	ErrValidation = errors.New("validation failed")

	// ErrCapacityExceeded is returned when a join would push the roster past
	// the room's maxUsers.
	ErrCapacityExceeded = errors.New("room capacity exceeded")

	// ErrPermission is returned when a non-admin attempts an admin-gated
	// action such as startGame, kick or elimination.
	ErrPermission = errors.New("permission denied")

	// ErrInvalidState is returned when an action is attempted outside its
	// valid phase, e.g. a double startGame or eliminating a dead player.
	ErrInvalidState = errors.New("invalid state for action")
)
