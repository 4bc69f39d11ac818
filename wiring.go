package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/config"
	"github.com/jarvisgally/gamecmd/gameplay"
	"github.com/jarvisgally/gamecmd/player"
	"github.com/jarvisgally/gamecmd/session"
	"github.com/sirupsen/logrus"
)

// Service ids of the session peers next to command.RegistryID
var (
	playersID  = uuid.MustParse("3d5c1f8a-9b27-4e61-8c0d-7a4f2e9b1c36")
	doorsID    = uuid.MustParse("b2e47a90-15c3-4f8e-a6d1-0c9f3e7b5a24")
	printersID = uuid.MustParse("61f0d9c2-7e48-4b35-9a1f-d8c3b6e2047f")
)

// newSession builds the players, registry and gameplay modules of one game
// session from conf.
func newSession(ctx context.Context, conf *config.Config, log logrus.FieldLogger) (*session.Session, error) {
	sess := session.New(session.WithLogger(log))

	players := player.NewManager(ctx,
		player.WithCommandRate(conf.CommandRate, conf.CommandBurst),
		player.WithOutput(os.Stdout),
	)
	for _, seed := range conf.Players {
		p, err := players.Add(seed.Name, seed.Level)
		if err != nil {
			return nil, err
		}
		p.SetBalance(seed.Balance)
	}

	registry := command.NewRegistry(command.WithLogger(log), command.WithPlayers(players))

	doors := gameplay.NewDoors(players)
	for _, seed := range conf.Doors {
		if err := doors.Add(seed.ID, seed.Price); err != nil {
			return nil, err
		}
	}
	tiers, err := printerTiers(conf.Printer.Tiers)
	if err != nil {
		return nil, err
	}
	printers := gameplay.NewPrinters(players, conf.Printer.Capacity, tiers, log)
	for _, seed := range conf.Printers {
		tier := gameplay.TierBronze
		if seed.Tier != "" {
			if tier, err = gameplay.ParseTier(seed.Tier); err != nil {
				return nil, fmt.Errorf("printer %v: %w", seed.ID, err)
			}
		}
		if err := printers.Add(seed.ID, seed.Owner, tier); err != nil {
			return nil, err
		}
	}

	err = gameplay.Register(registry,
		gameplay.NewEconomy(players),
		gameplay.NewModeration(players),
		doors,
		printers,
		gameplay.NewHelp(registry),
	)
	if err != nil {
		return nil, err
	}

	for id, svc := range map[uuid.UUID]interface{}{
		playersID:  players,
		doorsID:    doors,
		printersID: printers,
	} {
		if err := sess.Provide(id, svc); err != nil {
			return nil, err
		}
	}
	if err := command.Attach(sess, registry); err != nil {
		return nil, fmt.Errorf("can not attach registry: %w", err)
	}
	log.WithFields(logrus.Fields{
		"session":  sess.ID(),
		"commands": len(registry.ListNames()),
		"players":  len(players.List()),
	}).Info("session ready")
	return sess, nil
}

// printerTiers lays the configured tiers over the built-in ones.
func printerTiers(overrides map[string]config.PrinterTier) (map[gameplay.Tier]gameplay.TierConfig, error) {
	tiers := gameplay.DefaultTiers()
	for name, o := range overrides {
		t, err := gameplay.ParseTier(name)
		if err != nil {
			return nil, err
		}
		tiers[t] = gameplay.TierConfig{
			Price:    o.Price,
			Rate:     o.Rate,
			Interval: time.Duration(o.Interval),
		}
	}
	return tiers, nil
}
