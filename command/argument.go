package command

import (
	"strconv"
	"strings"
)

// ArgType is the declared type of a command argument.
type ArgType int

const (
	ArgString ArgType = iota
	ArgInteger
	ArgPlayer
)

func (t ArgType) String() string {
	switch t {
	case ArgInteger:
		return "integer"
	case ArgPlayer:
		return "player"
	default:
		return "string"
	}
}

// Argument describes one positional parameter of a self-describing command.
type Argument struct {
	Name        string
	Description string
	Type        ArgType
	// Optional arguments may be left out; they must come last.
	Optional bool
}

// Players resolves player references for ArgPlayer arguments.
type Players interface {
	Exists(name string) bool
}

// Usage renders the argument list, e.g. "<player> <amount> [tier]".
func Usage(args []Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Optional {
			parts[i] = "[" + a.Name + "]"
		} else {
			parts[i] = "<" + a.Name + ">"
		}
	}
	return strings.Join(parts, " ")
}

func required(args []Argument) int {
	n := 0
	for _, a := range args {
		if a.Optional {
			break
		}
		n++
	}
	return n
}

// ValidateArgs checks raw against the declared arguments. Extra trailing
// values are rejected; players may be nil, then player references are only
// checked for being non-empty.
func ValidateArgs(declared []Argument, raw []string, players Players) error {
	if len(raw) < required(declared) {
		return &ArgumentError{Arg: declared[len(raw)], Reason: "missing"}
	}
	if len(raw) > len(declared) {
		return &ArgumentError{
			Arg:    Argument{Name: "extra"},
			Value:  raw[len(declared)],
			Reason: "unexpected, usage: " + Usage(declared),
		}
	}
	for i, v := range raw {
		a := declared[i]
		switch a.Type {
		case ArgInteger:
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return &ArgumentError{Arg: a, Value: v, Reason: "not an integer"}
			}
		case ArgPlayer:
			if strings.TrimSpace(v) == "" {
				return &ArgumentError{Arg: a, Value: v, Reason: "empty player name"}
			}
			if players != nil && !players.Exists(v) {
				return &ArgumentError{Arg: a, Value: v, Reason: "no such player"}
			}
		default:
			if v == "" {
				return &ArgumentError{Arg: a, Reason: "empty"}
			}
		}
	}
	return nil
}
