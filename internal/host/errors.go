package host

import (
	"errors"
	"fmt"

	"github.com/xtding233/montyhall/internal/monty"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many live sessions")
	// ErrTrialsExceedLimit also matches monty.ErrInvalidInput.
	ErrTrialsExceedLimit = fmt.Errorf("%w: trial count exceeds limit", monty.ErrInvalidInput)
)
