package command

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for a missing descriptor, a blank name or
	// malformed command arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateName is returned when a name is already registered.
	ErrDuplicateName = errors.New("duplicate command name")
	// ErrNotFound is returned when no command is registered under a name.
	ErrNotFound = errors.New("command not found")
	// ErrUnsupportedInvocation is returned when a command is invoked with an
	// argument shape it does not support.
	ErrUnsupportedInvocation = errors.New("unsupported invocation")
)

// CommandError is a failure raised by the command itself, either a returned
// error or a recovered panic.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ArgumentError reports a raw argument that does not fit its declared type.
type ArgumentError struct {
	Arg    Argument
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("argument <%s>: %s", e.Arg.Name, e.Reason)
	}
	return fmt.Sprintf("argument <%s> %q: %s", e.Arg.Name, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// failureKind names the class of an execution failure for log fields.
func failureKind(err error) string {
	var cmdErr *CommandError
	switch {
	case errors.As(err, &cmdErr):
		return "command failure"
	case errors.Is(err, ErrUnsupportedInvocation):
		return "unsupported invocation"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid argument"
	default:
		return "unknown"
	}
}
