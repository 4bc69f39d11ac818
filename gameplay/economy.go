package gameplay

import (
	"context"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
)

// Economy moves coins between players.
type Economy struct {
	players *player.Manager
}

func NewEconomy(players *player.Manager) *Economy {
	return &Economy{players: players}
}

func (e *Economy) Commands() []*command.Descriptor {
	return []*command.Descriptor{
		{
			Name:        "give",
			Description: "Create coins for a player",
			Level:       command.LevelAdmin,
			Args: []command.Argument{
				{Name: "player", Description: "receiving player", Type: command.ArgPlayer},
				{Name: "amount", Description: "coins to create", Type: command.ArgInteger},
			},
			RunArgs: e.give,
		},
		{
			Name:        "pay",
			Description: "Pay coins to another player",
			Level:       command.LevelUser,
			Args: []command.Argument{
				{Name: "player", Description: "receiving player", Type: command.ArgPlayer},
				{Name: "amount", Description: "coins to pay", Type: command.ArgInteger},
			},
			RunArgs: e.pay,
		},
		{
			Name:        "balance",
			Description: "Show your coin balance",
			Level:       command.LevelUser,
			Run:         e.balance,
		},
	}
}

func (e *Economy) give(ctx context.Context, args []string) (bool, error) {
	target, err := findPlayer(e.players, args[0])
	if err != nil {
		return false, err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return false, err
	}
	if err := target.Credit(amount); err != nil {
		return false, err
	}
	target.Tell("You received %d coins.", amount)
	if p, ok := player.FromContext(ctx); ok && p != target {
		p.Tell("Gave %d coins to %s.", amount, target.Name())
	}
	return true, nil
}

func (e *Economy) pay(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	target, err := findPlayer(e.players, args[0])
	if err != nil {
		return false, err
	}
	if target == p {
		p.Tell("You can not pay yourself.")
		return false, nil
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return false, err
	}
	if err := p.Transfer(target, amount); err != nil {
		p.Tell("Payment failed: %v.", err)
		return false, nil
	}
	p.Tell("Paid %d coins to %s.", amount, target.Name())
	target.Tell("%s paid you %d coins.", p.Name(), amount)
	return true, nil
}

func (e *Economy) balance(ctx context.Context) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	p.Tell("Balance: %d coins.", p.Balance())
	return true, nil
}
