package gridcalc

import (
	"errors"
	"fmt"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// ErrInvalidAddress indicates malformed cell reference text.
var ErrInvalidAddress = parser.ErrInvalidAddress

// ErrInvalidRange indicates malformed range text.
var ErrInvalidRange = parser.ErrInvalidRange

// ErrOutOfBounds indicates an address beyond the configured columns or rows.
var ErrOutOfBounds = errors.New("address out of bounds")

// ErrUnknownCommand indicates a command method the engine does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidArgument indicates a missing or malformed command argument.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidChart indicates an unsupported chart type or chart configuration.
var ErrInvalidChart = errors.New("invalid chart")

// CommandError represents a failed command.
type CommandError struct {
	Method string
	Ref    string // the address or range the command targeted, if any
	Err    error
}

func (e *CommandError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("command %s failed: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("command %s failed at %s: %v", e.Method, e.Ref, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(method, ref string, err error) *CommandError {
	return &CommandError{
		Method: method,
		Ref:    ref,
		Err:    err,
	}
}
