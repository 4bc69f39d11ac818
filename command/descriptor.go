package command

import (
	"context"
	"fmt"
	"strings"
)

// Func is the no-argument invocation shape.
type Func func(ctx context.Context) (bool, error)

// ArgsFunc is the argument invocation shape.
type ArgsFunc func(ctx context.Context, args []string) (bool, error)

// Descriptor is the registered definition of a command.
type Descriptor struct {
	Name        string
	Description string
	Level       Level
	// ClientOnly commands are refused to remote callers.
	ClientOnly bool
	// Args, when set, are validated before RunArgs is called.
	Args []Argument

	Run     Func
	RunArgs ArgsFunc
}

// Invoke runs the no-argument shape. A descriptor that only accepts arguments
// is called with none.
func (d *Descriptor) Invoke(ctx context.Context) (bool, error) {
	switch {
	case d.Run != nil:
		ok, err := d.Run(ctx)
		if err != nil {
			return false, &CommandError{Name: d.Name, Err: err}
		}
		return ok, nil
	case d.RunArgs != nil:
		return d.InvokeArgs(ctx, nil)
	default:
		return false, fmt.Errorf("%w: %q has no invocation", ErrUnsupportedInvocation, d.Name)
	}
}

// InvokeArgs runs the argument shape. Errors returned by the command are
// wrapped in *CommandError.
func (d *Descriptor) InvokeArgs(ctx context.Context, args []string) (bool, error) {
	return d.invokeArgs(ctx, args, nil)
}

func (d *Descriptor) invokeArgs(ctx context.Context, args []string, players Players) (bool, error) {
	if d.RunArgs == nil {
		return false, fmt.Errorf("%w: %q does not accept arguments", ErrUnsupportedInvocation, d.Name)
	}
	if len(d.Args) > 0 {
		if err := ValidateArgs(d.Args, args, players); err != nil {
			return false, err
		}
	}
	ok, err := d.RunArgs(ctx, args)
	if err != nil {
		return false, &CommandError{Name: d.Name, Err: err}
	}
	return ok, nil
}

// AcceptsArgs reports whether the argument shape is supported.
func (d *Descriptor) AcceptsArgs() bool {
	return d.RunArgs != nil
}

// Usage is the command name followed by its declared arguments.
func (d *Descriptor) Usage() string {
	if len(d.Args) == 0 {
		return d.Name
	}
	return d.Name + " " + Usage(d.Args)
}

func (d *Descriptor) validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidArgument)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: empty command name", ErrInvalidArgument)
	}
	if strings.ContainsAny(strings.TrimSpace(d.Name), " \t\r\n") {
		return fmt.Errorf("%w: command name %q contains whitespace", ErrInvalidArgument, d.Name)
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: command %q has no description", ErrInvalidArgument, d.Name)
	}
	if d.Run == nil && d.RunArgs == nil {
		return fmt.Errorf("%w: command %q has no invocation", ErrInvalidArgument, d.Name)
	}
	for _, a := range d.Args[required(d.Args):] {
		if !a.Optional {
			return fmt.Errorf("%w: command %q: argument %q follows an optional one", ErrInvalidArgument, d.Name, a.Name)
		}
	}
	return nil
}

// clone returns a copy that shares no mutable state with d.
func (d *Descriptor) clone() Descriptor {
	c := *d
	if d.Args != nil {
		c.Args = append([]Argument(nil), d.Args...)
	}
	return c
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
