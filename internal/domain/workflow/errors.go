package workflow

import "errors"

var (
	// ErrNotFound is returned when a participant or acting user cannot be resolved
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent transition moved the
	// participant between read and write; callers should reload and retry
	ErrConflict = errors.New("participant was modified concurrently")

	// ErrUnauthorized is returned when the acting user does not hold the
	// role required to act on the participant's current step
	ErrUnauthorized = errors.New("acting user not permitted on current step")

	// ErrInvalidAction is returned when the requested action is not a known verb
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidChain is returned when a workflow's authored step chain is
	// malformed: dangling next references, cycles, or missing designated steps
	ErrInvalidChain = errors.New("invalid workflow chain")
)
