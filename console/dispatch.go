// Package console turns chat and console input into command executions. The
// Dispatcher is where permission levels are enforced; the registry only
// stores them.
package console

import (
	"context"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
	"github.com/sirupsen/logrus"
)

// Origin tells where an execution request came from.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

type Dispatcher struct {
	Registry *command.Registry
	Players  *player.Manager
	Log      logrus.FieldLogger
}

func NewDispatcher(r *command.Registry, players *player.Manager, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{Registry: r, Players: players, Log: log}
}

// Dispatch checks that p may run name and runs it. Like Registry.Execute it
// reports every failure as false.
func (d *Dispatcher) Dispatch(ctx context.Context, p *player.Player, name string, args []string, origin Origin) bool {
	entry := d.Log.WithFields(logrus.Fields{
		"player":  p.Name(),
		"command": name,
		"origin":  origin,
	})
	desc, err := d.Registry.Get(name)
	if err != nil {
		entry.WithError(err).Warn("unknown command")
		p.Tell("Unknown command %q.", name)
		return false
	}
	if !p.Level().Allows(desc.Level) {
		entry.Warnf("permission denied, requires %v", desc.Level)
		p.Tell("You need to be %v to use %s.", desc.Level, desc.Name)
		return false
	}
	if desc.ClientOnly && origin == OriginRemote {
		entry.Warn("client-only command refused")
		p.Tell("%s can only be used from the game console.", desc.Name)
		return false
	}
	if !p.Allow() {
		entry.Warn("throttled")
		p.Tell("Slow down.")
		return false
	}

	// run the descriptor that passed the checks, not a fresh lookup
	return d.Registry.Run(player.NewContext(ctx, p), desc, args)
}

// DispatchAs resolves the player by name first.
func (d *Dispatcher) DispatchAs(ctx context.Context, playerName, name string, args []string, origin Origin) (bool, error) {
	p, ok := d.Players.Find(playerName)
	if !ok {
		return false, ErrUnknownPlayer
	}
	return d.Dispatch(ctx, p, name, args, origin), nil
}
