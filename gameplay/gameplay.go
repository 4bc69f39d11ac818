// Package gameplay provides the game's commands: economy, moderation, doors,
// coin printers and help. Each module owns its state and hands its commands
// to a command.Registry.
package gameplay

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
)

var ErrNoPlayer = errors.New("command needs an invoking player")

// Module is a source of commands.
type Module interface {
	Commands() []*command.Descriptor
}

// Register adds the commands of every module. On the first failure the
// commands added so far are removed again.
func Register(r *command.Registry, modules ...Module) error {
	var added []string
	for _, m := range modules {
		for _, d := range m.Commands() {
			if err := r.Register(d); err != nil {
				for _, name := range added {
					r.Unregister(name)
				}
				return fmt.Errorf("can not register %v: %w", d.Name, err)
			}
			added = append(added, d.Name)
		}
	}
	return nil
}

// Unregister removes the commands of every module, returning the first error.
func Unregister(r *command.Registry, modules ...Module) error {
	var first error
	for _, m := range modules {
		for _, d := range m.Commands() {
			if err := r.Unregister(d.Name); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func caller(ctx context.Context) (*player.Player, error) {
	p, ok := player.FromContext(ctx)
	if !ok {
		return nil, ErrNoPlayer
	}
	return p, nil
}

func parseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", player.ErrInvalidAmount, n)
	}
	return n, nil
}

func findPlayer(players *player.Manager, name string) (*player.Player, error) {
	p, ok := players.Find(name)
	if !ok {
		return nil, fmt.Errorf("player %v not found", name)
	}
	return p, nil
}
