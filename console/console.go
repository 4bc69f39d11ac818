package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/fatih/color"
	"github.com/jarvisgally/gamecmd/player"
)

const DefaultPrefix = "/"

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrEmptyCommand  = errors.New("empty command")
)

// ParseLine splits a chat line into a command name and arguments. Lines not
// starting with prefix are chat, ok is false for them.
func ParseLine(line, prefix string) (name string, args []string, ok bool, err error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefix) {
		return "", nil, false, nil
	}
	parts, err := shellwords.SplitPosix(strings.TrimPrefix(line, prefix))
	if err != nil {
		return "", nil, true, fmt.Errorf("can not parse %q: %w", line, err)
	}
	if len(parts) == 0 || parts[0] == "" {
		return "", nil, true, ErrEmptyCommand
	}
	return parts[0], parts[1:], true, nil
}

// Console reads command lines for one local player.
type Console struct {
	Dispatcher *Dispatcher
	Prefix     string
	// Chat receives lines that are not commands, may be nil.
	Chat func(p *player.Player, line string)
}

func New(d *Dispatcher) *Console {
	return &Console{Dispatcher: d, Prefix: DefaultPrefix}
}

// Handle processes one line and reports whether it was a command that
// succeeded.
func (c *Console) Handle(ctx context.Context, p *player.Player, line string) bool {
	name, args, ok, err := ParseLine(line, c.Prefix)
	if !ok {
		if c.Chat != nil && strings.TrimSpace(line) != "" {
			c.Chat(p, line)
		}
		return false
	}
	if err != nil {
		p.Tell("%s", color.RedString("%v", err))
		return false
	}
	if !c.Dispatcher.Dispatch(ctx, p, name, args, OriginLocal) {
		p.Tell("%s", color.RedString("Command %s failed.", name))
		return false
	}
	return true
}

// Run handles lines from r until EOF or ctx is cancelled.
func (c *Console) Run(ctx context.Context, r io.Reader, p *player.Player) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line := <-lines:
			c.Handle(ctx, p, line)
		}
	}
}
