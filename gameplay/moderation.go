package gameplay

import (
	"context"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
)

type Moderation struct {
	players *player.Manager
}

func NewModeration(players *player.Manager) *Moderation {
	return &Moderation{players: players}
}

func (m *Moderation) Commands() []*command.Descriptor {
	return []*command.Descriptor{
		{
			Name:        "kick",
			Description: "Disconnect a player",
			Level:       command.LevelModerator,
			Args:        []command.Argument{{Name: "player", Description: "player to kick", Type: command.ArgPlayer}},
			RunArgs:     m.kick,
		},
		{
			Name:        "set-level",
			Description: "Change a player's permission level",
			Level:       command.LevelAdmin,
			Args: []command.Argument{
				{Name: "player", Description: "player to change", Type: command.ArgPlayer},
				{Name: "level", Description: "user, moderator, admin or owner", Type: command.ArgString},
			},
			RunArgs: m.setLevel,
		},
	}
}

func (m *Moderation) kick(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	target, err := findPlayer(m.players, args[0])
	if err != nil {
		return false, err
	}
	if target == p {
		p.Tell("You can not kick yourself.")
		return false, nil
	}
	if target.Level() > p.Level() {
		p.Tell("%s outranks you.", target.Name())
		return false, nil
	}
	target.Tell("You were kicked by %s.", p.Name())
	if err := m.players.Del(target.Name()); err != nil {
		return false, err
	}
	p.Tell("Kicked %s.", target.Name())
	return true, nil
}

// setLevel never grants more than the caller holds.
func (m *Moderation) setLevel(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	target, err := findPlayer(m.players, args[0])
	if err != nil {
		return false, err
	}
	level, err := command.ParseLevel(args[1])
	if err != nil {
		return false, err
	}
	if !p.Level().Allows(level) || !p.Level().Allows(target.Level()) {
		p.Tell("You can not change %s to %s.", target.Name(), level)
		return false, nil
	}
	target.SetLevel(level)
	target.Tell("Your permission level is now %s.", level)
	p.Tell("%s is now %s.", target.Name(), level)
	return true, nil
}
