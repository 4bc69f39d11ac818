package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Level gates who may invoke a command. Higher levels include lower ones.
type Level int

const (
	LevelUser Level = iota
	LevelModerator
	LevelAdmin
	LevelOwner
)

var levelNames = map[Level]string{
	LevelUser:      "user",
	LevelModerator: "moderator",
	LevelAdmin:     "admin",
	LevelOwner:     "owner",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

// Allows reports whether a holder of l may run a command requiring required.
func (l Level) Allows(required Level) bool {
	return l >= required
}

// ParseLevel accepts a level name or its number.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(LevelUser) || n > int(LevelOwner) {
		return LevelUser, fmt.Errorf("%w: unknown permission level %q", ErrInvalidArgument, s)
	}
	return Level(n), nil
}

// MarshalText / UnmarshalText let levels appear by name in config files.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
