package gameplay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
)

var (
	ErrDoorNotFound = errors.New("door not found")
	ErrDoorOwned    = errors.New("door already owned")
	ErrNotDoorOwner = errors.New("not the door owner")
)

// Door is a snapshot of a purchasable door.
type Door struct {
	ID     string
	Price  int64
	Owner  string
	Title  string
	Locked bool
}

// Doors holds ownership and lock state of every door on the map.
type Doors struct {
	sync.RWMutex

	doors   map[string]*Door
	players *player.Manager
}

func NewDoors(players *player.Manager) *Doors {
	return &Doors{
		doors:   make(map[string]*Door),
		players: players,
	}
}

func (d *Doors) Add(id string, price int64) error {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		return errors.New("empty door id")
	}
	if price < 0 {
		return fmt.Errorf("door %v: negative price", id)
	}
	d.Lock()
	defer d.Unlock()
	if _, found := d.doors[key]; found {
		return fmt.Errorf("door %v already exists", id)
	}
	d.doors[key] = &Door{ID: key, Price: price}
	return nil
}

func (d *Doors) Get(id string) (Door, bool) {
	d.RLock()
	defer d.RUnlock()
	door, found := d.doors[strings.ToLower(id)]
	if !found {
		return Door{}, false
	}
	return *door, true
}

// List returns snapshots sorted by id.
func (d *Doors) List() []Door {
	d.RLock()
	result := make([]Door, 0, len(d.doors))
	for _, door := range d.doors {
		result = append(result, *door)
	}
	d.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Buy charges p the door price and makes p the owner.
func (d *Doors) Buy(p *player.Player, id string) error {
	d.Lock()
	defer d.Unlock()
	door, found := d.doors[strings.ToLower(id)]
	if !found {
		return fmt.Errorf("%w: %v", ErrDoorNotFound, id)
	}
	if door.Owner != "" {
		return fmt.Errorf("%w by %v", ErrDoorOwned, door.Owner)
	}
	if door.Price > 0 {
		if err := p.Debit(door.Price); err != nil {
			return err
		}
	}
	door.Owner = p.Name()
	return nil
}

// Sell gives the door up for half its price.
func (d *Doors) Sell(p *player.Player, id string) (int64, error) {
	d.Lock()
	defer d.Unlock()
	door, err := d.owned(p, id, false)
	if err != nil {
		return 0, err
	}
	refund := door.Price / 2
	if refund > 0 {
		if err := p.Credit(refund); err != nil {
			return 0, err
		}
	}
	door.Owner = ""
	door.Title = ""
	door.Locked = false
	return refund, nil
}

// SetTitle names a door, an empty title clears it. Only the owner may.
func (d *Doors) SetTitle(p *player.Player, id, title string) error {
	d.Lock()
	defer d.Unlock()
	door, err := d.owned(p, id, false)
	if err != nil {
		return err
	}
	door.Title = strings.TrimSpace(title)
	return nil
}

// SetLocked locks or unlocks a door. Admins may override ownership.
func (d *Doors) SetLocked(p *player.Player, id string, locked bool) error {
	d.Lock()
	defer d.Unlock()
	door, err := d.owned(p, id, p.Level().Allows(command.LevelAdmin))
	if err != nil {
		return err
	}
	door.Locked = locked
	return nil
}

func (d *Doors) owned(p *player.Player, id string, override bool) (*Door, error) {
	door, found := d.doors[strings.ToLower(id)]
	if !found {
		return nil, fmt.Errorf("%w: %v", ErrDoorNotFound, id)
	}
	if !override && !strings.EqualFold(door.Owner, p.Name()) {
		return nil, fmt.Errorf("%w: %v", ErrNotDoorOwner, id)
	}
	return door, nil
}

func (d *Doors) Commands() []*command.Descriptor {
	doorArg := []command.Argument{{Name: "door", Description: "door id", Type: command.ArgString}}
	return []*command.Descriptor{
		{
			Name:        "buy-door",
			Description: "Buy an unowned door",
			Args:        doorArg,
			RunArgs:     d.buyCommand,
		},
		{
			Name:        "sell-door",
			Description: "Sell one of your doors for half its price",
			Args:        doorArg,
			RunArgs:     d.sellCommand,
		},
		{
			Name:        "lock-door",
			Description: "Lock one of your doors",
			Args:        doorArg,
			RunArgs:     d.lockCommand(true),
		},
		{
			Name:        "unlock-door",
			Description: "Unlock one of your doors",
			Args:        doorArg,
			RunArgs:     d.lockCommand(false),
		},
		{
			Name:        "set-door-title",
			Description: "Name one of your doors, no title clears it",
			Args: append(doorArg, command.Argument{
				Name: "title", Description: "shown next to the door", Type: command.ArgString, Optional: true,
			}),
			RunArgs: d.titleCommand,
		},
		{
			Name:        "doors",
			Description: "List doors and their owners",
			Run:         d.listCommand,
		},
	}
}

func (d *Doors) buyCommand(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	if err := d.Buy(p, args[0]); err != nil {
		p.Tell("Can not buy door %s: %v.", args[0], err)
		return false, nil
	}
	p.Tell("You now own door %s.", strings.ToLower(args[0]))
	return true, nil
}

func (d *Doors) sellCommand(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	refund, err := d.Sell(p, args[0])
	if err != nil {
		p.Tell("Can not sell door %s: %v.", args[0], err)
		return false, nil
	}
	p.Tell("Sold door %s for %d coins.", strings.ToLower(args[0]), refund)
	return true, nil
}

func (d *Doors) lockCommand(locked bool) command.ArgsFunc {
	verb := "unlock"
	if locked {
		verb = "lock"
	}
	return func(ctx context.Context, args []string) (bool, error) {
		p, err := caller(ctx)
		if err != nil {
			return false, err
		}
		if err := d.SetLocked(p, args[0], locked); err != nil {
			p.Tell("Can not %s door %s: %v.", verb, args[0], err)
			return false, nil
		}
		p.Tell("Door %s %sed.", strings.ToLower(args[0]), verb)
		return true, nil
	}
}

func (d *Doors) titleCommand(ctx context.Context, args []string) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	var title string
	if len(args) > 1 {
		title = args[1]
	}
	if err := d.SetTitle(p, args[0], title); err != nil {
		p.Tell("Can not set the title of door %s: %v.", args[0], err)
		return false, nil
	}
	if title == "" {
		p.Tell("Door %s has no title now.", strings.ToLower(args[0]))
	} else {
		p.Tell("Door %s is now %q.", strings.ToLower(args[0]), title)
	}
	return true, nil
}

func (d *Doors) listCommand(ctx context.Context) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	for _, door := range d.List() {
		owner := door.Owner
		if owner == "" {
			owner = fmt.Sprintf("for sale, %d coins", door.Price)
		}
		state := "open"
		if door.Locked {
			state = "locked"
		}
		if door.Title != "" {
			p.Tell("%s %q: %s (%s)", door.ID, door.Title, owner, state)
		} else {
			p.Tell("%s: %s (%s)", door.ID, owner, state)
		}
	}
	return true, nil
}
