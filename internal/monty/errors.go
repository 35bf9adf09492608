package monty

import "errors"

var (
	// ErrInvalidMove reports an illegal door target for the current phase.
	ErrInvalidMove = errors.New("invalid move")
	// ErrWrongPhase reports an action that is not legal in the current phase.
	ErrWrongPhase = errors.New("wrong phase")
	// ErrInvalidInput reports simulator arguments out of domain.
	ErrInvalidInput = errors.New("invalid input")
)
