package gameplay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
	"github.com/sirupsen/logrus"
)

var (
	ErrPrinterNotFound = errors.New("printer not found")
	ErrNotPrinterOwner = errors.New("not the printer owner")
)

// Printer is a snapshot of a coin printer.
type Printer struct {
	ID       string
	Owner    string
	Tier     Tier
	Capacity int64
	Stored   int64

	elapsed time.Duration
}

// Printers generates coins for their owners, each printer at the pace of its
// tier.
type Printers struct {
	sync.Mutex

	printers map[string]*Printer
	players  *player.Manager
	tiers    map[Tier]TierConfig
	capacity int64
	log      logrus.FieldLogger
}

// NewPrinters creates an empty set. Every printer holds at most capacity
// coins; nil tiers means DefaultTiers.
func NewPrinters(players *player.Manager, capacity int64, tiers map[Tier]TierConfig, log logrus.FieldLogger) *Printers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if tiers == nil {
		tiers = DefaultTiers()
	}
	return &Printers{
		printers: make(map[string]*Printer),
		players:  players,
		tiers:    tiers,
		capacity: capacity,
		log:      log,
	}
}

// Tier returns the configuration printers of t use.
func (ps *Printers) Tier(t Tier) TierConfig {
	if c, found := ps.tiers[t]; found {
		return c
	}
	return fallbackTier
}

func (ps *Printers) Add(id, owner string, tier Tier) error {
	ps.Lock()
	defer ps.Unlock()
	return ps.add(id, owner, tier)
}

func (ps *Printers) add(id, owner string, tier Tier) error {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		return errors.New("empty printer id")
	}
	if _, found := ps.printers[key]; found {
		return fmt.Errorf("printer %v already exists", id)
	}
	ps.printers[key] = &Printer{ID: key, Owner: owner, Tier: tier, Capacity: ps.capacity}
	return nil
}

// Buy charges p the tier price and places a printer owned by p.
func (ps *Printers) Buy(p *player.Player, id string, tier Tier) (int64, error) {
	ps.Lock()
	defer ps.Unlock()
	key := strings.ToLower(strings.TrimSpace(id))
	if _, found := ps.printers[key]; found {
		return 0, fmt.Errorf("printer %v already exists", id)
	}
	price := ps.Tier(tier).Price
	if price > 0 {
		if err := p.Debit(price); err != nil {
			return 0, err
		}
	}
	if err := ps.add(id, p.Name(), tier); err != nil {
		if price > 0 {
			_ = p.Credit(price)
		}
		return 0, err
	}
	return price, nil
}

// SetTier changes the tier of a printer, coins already stored stay.
func (ps *Printers) SetTier(id string, tier Tier) error {
	ps.Lock()
	defer ps.Unlock()
	pr, found := ps.printers[strings.ToLower(id)]
	if !found {
		return fmt.Errorf("%w: %v", ErrPrinterNotFound, id)
	}
	pr.Tier = tier
	pr.elapsed = 0
	return nil
}

func (ps *Printers) Remove(id string) error {
	ps.Lock()
	defer ps.Unlock()
	key := strings.ToLower(id)
	if _, found := ps.printers[key]; !found {
		return fmt.Errorf("%w: %v", ErrPrinterNotFound, id)
	}
	delete(ps.printers, key)
	return nil
}

func (ps *Printers) Get(id string) (Printer, bool) {
	ps.Lock()
	defer ps.Unlock()
	pr, found := ps.printers[strings.ToLower(id)]
	if !found {
		return Printer{}, false
	}
	return *pr, true
}

func (ps *Printers) List() []Printer {
	ps.Lock()
	result := make([]Printer, 0, len(ps.printers))
	for _, pr := range ps.printers {
		result = append(result, *pr)
	}
	ps.Unlock()
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Tick advances every printer by elapsed. A printer prints its tier's rate
// once per full tier interval, up to its capacity.
func (ps *Printers) Tick(elapsed time.Duration) {
	ps.Lock()
	defer ps.Unlock()
	for _, pr := range ps.printers {
		conf := ps.Tier(pr.Tier)
		if conf.Interval <= 0 {
			pr.Stored += conf.Rate
		} else {
			pr.elapsed += elapsed
			for pr.elapsed >= conf.Interval {
				pr.elapsed -= conf.Interval
				pr.Stored += conf.Rate
			}
		}
		if pr.Stored > pr.Capacity {
			pr.Stored = pr.Capacity
		}
	}
}

// Run ticks every interval until ctx is done.
func (ps *Printers) Run(ctx context.Context, interval time.Duration) {
	ps.log.WithField("interval", interval).Info("printers running")
	for {
		select {
		case <-ctx.Done():
			ps.log.Info("printers stopped")
			return
		case <-time.After(interval):
			ps.Tick(interval)
		}
	}
}

// Collect empties the printer into its owner's balance.
func (ps *Printers) Collect(p *player.Player, id string) (int64, error) {
	ps.Lock()
	defer ps.Unlock()
	pr, found := ps.printers[strings.ToLower(id)]
	if !found {
		return 0, fmt.Errorf("%w: %v", ErrPrinterNotFound, id)
	}
	if !strings.EqualFold(pr.Owner, p.Name()) {
		return 0, fmt.Errorf("%w: %v", ErrNotPrinterOwner, id)
	}
	amount := pr.Stored
	if amount == 0 {
		return 0, nil
	}
	if err := p.Credit(amount); err != nil {
		return 0, err
	}
	pr.Stored = 0
	return amount, nil
}

func (ps *Printers) Commands() []*command.Descriptor {
	printerArg := command.Argument{Name: "printer", Description: "printer id", Type: command.ArgString}
	tierArg := command.Argument{Name: "tier", Description: "bronze, silver, gold or diamond", Type: command.ArgString}
	optionalTier := tierArg
	optionalTier.Optional = true
	return []*command.Descriptor{
		{
			Name:        "collect-printer-money",
			Description: "Collect the coins stored in your printer",
			Args:        []command.Argument{printerArg},
			RunArgs:     ps.collectCommand,
		},
		{
			Name:        "printer-status",
			Description: "Show how many coins a printer holds",
			Args:        []command.Argument{printerArg},
			RunArgs:     ps.statusCommand,
		},
		{
			Name:        "printer-tiers",
			Description: "List printer tiers with their price and pace",
			Run:         ps.tiersCommand,
		},
		{
			Name:        "buy-printer",
			Description: "Buy a printer, bronze unless a tier is given",
			Args:        []command.Argument{printerArg, optionalTier},
			RunArgs:     ps.buyCommand,
		},
		{
			Name:        "place-printer",
			Description: "Place a new printer owned by a player",
			Level:       command.LevelAdmin,
			Args: []command.Argument{
				printerArg,
				{Name: "owner", Description: "owning player", Type: command.ArgPlayer},
				optionalTier,
			},
			RunArgs: ps.placeCommand,
		},
		{
			Name:        "set-printer-tier",
			Description: "Change the tier of a printer",
			Level:       command.LevelAdmin,
			Args:        []command.Argument{printerArg, tierArg},
			RunArgs:     ps.setTierCommand,
		},
	}
}

func tierAt(args []string, i int) (Tier, error) {
	if len(args) <= i {
		return TierBronze, nil
	}
	return ParseTier(args[i])
}

func (ps *Printers) collectCommand(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	amount, err := ps.Collect(p, args[0])
	if err != nil {
		p.Tell("Can not collect from %s: %v.", args[0], err)
		return false, nil
	}
	p.Tell("Collected %d coins.", amount)
	return true, nil
}

func (ps *Printers) statusCommand(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	pr, found := ps.Get(args[0])
	if !found {
		p.Tell("No printer %s.", args[0])
		return false, nil
	}
	p.Tell("%s (%v): %d/%d coins, owned by %s.", pr.ID, pr.Tier, pr.Stored, pr.Capacity, pr.Owner)
	return true, nil
}

func (ps *Printers) tiersCommand(ctx context.Context) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range Tiers() {
		conf := ps.Tier(t)
		p.Tell("%v: %d coins, prints %d every %v", t, conf.Price, conf.Rate, conf.Interval)
	}
	return true, nil
}

func (ps *Printers) buyCommand(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	tier, err := tierAt(args, 1)
	if err != nil {
		return false, err
	}
	price, err := ps.Buy(p, args[0], tier)
	if err != nil {
		p.Tell("Can not buy printer %s: %v.", args[0], err)
		return false, nil
	}
	p.Tell("You bought %v printer %s for %d coins.", tier, strings.ToLower(args[0]), price)
	return true, nil
}

func (ps *Printers) placeCommand(ctx context.Context, args []string) (bool, error) {
	owner, err := findPlayer(ps.players, args[1])
	if err != nil {
		return false, err
	}
	tier, err := tierAt(args, 2)
	if err != nil {
		return false, err
	}
	if err := ps.Add(args[0], owner.Name(), tier); err != nil {
		return false, err
	}
	owner.Tell("You received %v printer %s.", tier, strings.ToLower(args[0]))
	return true, nil
}

func (ps *Printers) setTierCommand(ctx context.Context, args []string) (bool, error) {
	tier, err := ParseTier(args[1])
	if err != nil {
		return false, err
	}
	if err := ps.SetTier(args[0], tier); err != nil {
		return false, err
	}
	ps.log.WithFields(logrus.Fields{"printer": args[0], "tier": tier}).Info("printer tier changed")
	return true, nil
}
