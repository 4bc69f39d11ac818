package gameplay

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/jarvisgally/gamecmd/player"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTiers = map[Tier]TierConfig{
	TierBronze: {Price: 100, Rate: 10, Interval: time.Second},
	TierGold:   {Price: 300, Rate: 10, Interval: 250 * time.Millisecond},
}

type world struct {
	registry *command.Registry
	players  *player.Manager
	doors    *Doors
	printers *Printers
	hook     *test.Hook
}

func newWorld(t *testing.T) *world {
	logger, hook := test.NewNullLogger()
	players := player.NewManager(context.Background())
	r := command.NewRegistry(command.WithLogger(logger), command.WithPlayers(players))
	w := &world{
		registry: r,
		players:  players,
		doors:    NewDoors(players),
		printers: NewPrinters(players, 25, testTiers, logger),
		hook:     hook,
	}
	require.NoError(t, Register(r,
		NewEconomy(players),
		NewModeration(players),
		w.doors,
		w.printers,
		NewHelp(r),
	))
	return w
}

func (w *world) join(t *testing.T, name string, level command.Level) (*player.Player, *bytes.Buffer) {
	p, err := w.players.Add(name, level)
	require.NoError(t, err)
	var buf bytes.Buffer
	p.SetOutput(&buf)
	return p, &buf
}

func as(p *player.Player) context.Context {
	return player.NewContext(context.Background(), p)
}

func TestRegisterRollsBack(t *testing.T) {
	logger, _ := test.NewNullLogger()
	players := player.NewManager(context.Background())
	r := command.NewRegistry(command.WithLogger(logger))
	require.NoError(t, r.Register(&command.Descriptor{
		Name: "kick", Description: "taken", Run: func(context.Context) (bool, error) { return true, nil },
	}))

	err := Register(r, NewEconomy(players), NewModeration(players))
	assert.True(t, errors.Is(err, command.ErrDuplicateName))
	assert.Equal(t, []string{"kick"}, r.ListNames())
}

func TestUnregisterModules(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, Unregister(w.registry, w.doors))
	_, err := w.registry.Get("buy-door")
	assert.True(t, errors.Is(err, command.ErrNotFound))
	assert.Error(t, Unregister(w.registry, w.doors))
}

func TestGive(t *testing.T) {
	w := newWorld(t)
	admin, adminOut := w.join(t, "admin", command.LevelAdmin)
	bob, bobOut := w.join(t, "bob", command.LevelUser)

	assert.True(t, w.registry.Execute(as(admin), "GIVE", []string{"Bob", "100"}))
	assert.Equal(t, int64(100), bob.Balance())
	assert.Contains(t, bobOut.String(), "received 100 coins")
	assert.Contains(t, adminOut.String(), "Gave 100 coins to bob")

	assert.False(t, w.registry.Execute(as(admin), "give", []string{"bob", "-5"}))
	assert.False(t, w.registry.Execute(as(admin), "give", []string{"nobody", "5"}))
	assert.Equal(t, int64(100), bob.Balance())
}

func TestPayAndBalance(t *testing.T) {
	w := newWorld(t)
	alice, aliceOut := w.join(t, "alice", command.LevelUser)
	bob, _ := w.join(t, "bob", command.LevelUser)
	alice.SetBalance(50)

	assert.True(t, w.registry.Execute(as(alice), "pay", []string{"bob", "20"}))
	assert.Equal(t, int64(30), alice.Balance())
	assert.Equal(t, int64(20), bob.Balance())

	assert.False(t, w.registry.Execute(as(alice), "pay", []string{"bob", "500"}))
	assert.False(t, w.registry.Execute(as(alice), "pay", []string{"alice", "1"}))
	assert.Equal(t, int64(30), alice.Balance())

	assert.True(t, w.registry.Call(as(alice), "balance"))
	assert.Contains(t, aliceOut.String(), "Balance: 30 coins.")

	// no invoking player
	assert.False(t, w.registry.Call(context.Background(), "balance"))
	assert.Contains(t, w.hook.LastEntry().Message, ErrNoPlayer.Error())
}

func TestKick(t *testing.T) {
	w := newWorld(t)
	mod, _ := w.join(t, "mod", command.LevelModerator)
	_, _ = w.join(t, "owner", command.LevelOwner)
	_, troll := w.join(t, "troll", command.LevelUser)

	assert.False(t, w.registry.Execute(as(mod), "kick", []string{"mod"}))
	assert.False(t, w.registry.Execute(as(mod), "kick", []string{"owner"}))
	assert.True(t, w.registry.Execute(as(mod), "kick", []string{"troll"}))
	assert.False(t, w.players.Exists("troll"))
	assert.Contains(t, troll.String(), "kicked by mod")
}

func TestSetLevel(t *testing.T) {
	w := newWorld(t)
	admin, _ := w.join(t, "admin", command.LevelAdmin)
	bob, _ := w.join(t, "bob", command.LevelUser)

	assert.True(t, w.registry.Execute(as(admin), "set-level", []string{"bob", "moderator"}))
	assert.Equal(t, command.LevelModerator, bob.Level())
	assert.False(t, w.registry.Execute(as(admin), "set-level", []string{"bob", "owner"}))
	assert.False(t, w.registry.Execute(as(admin), "set-level", []string{"bob", "god"}))
	assert.Equal(t, command.LevelModerator, bob.Level())
}

func TestDoors(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.doors.Add("Front", 100))
	assert.Error(t, w.doors.Add("front", 1))

	alice, aliceOut := w.join(t, "alice", command.LevelUser)
	bob, _ := w.join(t, "bob", command.LevelUser)
	admin, _ := w.join(t, "admin", command.LevelAdmin)
	alice.SetBalance(150)
	bob.SetBalance(500)

	assert.True(t, w.registry.Execute(as(alice), "buy-door", []string{"FRONT"}))
	assert.Equal(t, int64(50), alice.Balance())
	door, ok := w.doors.Get("front")
	require.True(t, ok)
	assert.Equal(t, "alice", door.Owner)

	assert.False(t, w.registry.Execute(as(bob), "buy-door", []string{"front"}))
	assert.Equal(t, int64(500), bob.Balance())
	assert.False(t, w.registry.Execute(as(bob), "lock-door", []string{"front"}))
	assert.False(t, w.registry.Execute(as(alice), "buy-door", []string{"back"}))

	assert.True(t, w.registry.Execute(as(alice), "lock-door", []string{"front"}))
	door, _ = w.doors.Get("front")
	assert.True(t, door.Locked)
	assert.True(t, w.registry.Execute(as(admin), "unlock-door", []string{"front"}))
	door, _ = w.doors.Get("front")
	assert.False(t, door.Locked)

	assert.True(t, w.registry.Call(as(alice), "doors"))
	assert.Contains(t, aliceOut.String(), "front: alice (open)")

	assert.False(t, w.registry.Execute(as(bob), "set-door-title", []string{"front", "Bob's"}))
	assert.True(t, w.registry.Execute(as(alice), "set-door-title", []string{"front", "Alice's Shop"}))
	door, _ = w.doors.Get("front")
	assert.Equal(t, "Alice's Shop", door.Title)
	aliceOut.Reset()
	assert.True(t, w.registry.Call(as(alice), "doors"))
	assert.Contains(t, aliceOut.String(), `front "Alice's Shop": alice (open)`)

	assert.True(t, w.registry.Execute(as(alice), "sell-door", []string{"front"}))
	assert.Equal(t, int64(100), alice.Balance())
	door, _ = w.doors.Get("front")
	assert.Empty(t, door.Owner)
	assert.Empty(t, door.Title)
	assert.Len(t, w.doors.List(), 1)
}

func TestClearDoorTitle(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.doors.Add("front", 0))
	alice, _ := w.join(t, "alice", command.LevelUser)
	require.NoError(t, w.doors.Buy(alice, "front"))

	require.NoError(t, w.doors.SetTitle(alice, "front", "  Home  "))
	door, _ := w.doors.Get("front")
	assert.Equal(t, "Home", door.Title)
	assert.True(t, w.registry.Execute(as(alice), "set-door-title", []string{"front"}))
	door, _ = w.doors.Get("front")
	assert.Empty(t, door.Title)
	assert.True(t, errors.Is(w.doors.SetTitle(alice, "back", "x"), ErrDoorNotFound))
}

func TestPrinters(t *testing.T) {
	w := newWorld(t)
	admin, _ := w.join(t, "admin", command.LevelAdmin)
	alice, aliceOut := w.join(t, "alice", command.LevelUser)
	bob, _ := w.join(t, "bob", command.LevelUser)

	assert.True(t, w.registry.Execute(as(admin), "place-printer", []string{"p1", "alice"}))
	assert.False(t, w.registry.Execute(as(admin), "place-printer", []string{"p1", "alice"}))

	w.printers.Tick(time.Second)
	w.printers.Tick(time.Second)
	w.printers.Tick(time.Second)
	pr, ok := w.printers.Get("p1")
	require.True(t, ok)
	assert.Equal(t, TierBronze, pr.Tier)
	assert.Equal(t, int64(25), pr.Stored)

	assert.False(t, w.registry.Execute(as(bob), "collect-printer-money", []string{"p1"}))
	assert.True(t, w.registry.Execute(as(alice), "printer-status", []string{"p1"}))
	assert.Contains(t, aliceOut.String(), "p1 (bronze): 25/25 coins")
	assert.True(t, w.registry.Execute(as(alice), "collect-printer-money", []string{"p1"}))
	assert.Equal(t, int64(25), alice.Balance())
	assert.Equal(t, int64(0), bob.Balance())

	amount, err := w.printers.Collect(alice, "p1")
	require.NoError(t, err)
	assert.Zero(t, amount)

	require.NoError(t, w.printers.Remove("p1"))
	assert.True(t, errors.Is(w.printers.Remove("p1"), ErrPrinterNotFound))
}

func TestPrinterTiers(t *testing.T) {
	w := newWorld(t)
	admin, _ := w.join(t, "admin", command.LevelAdmin)
	alice, aliceOut := w.join(t, "alice", command.LevelUser)

	assert.True(t, w.registry.Execute(as(admin), "place-printer", []string{"slow", "alice", "bronze"}))
	assert.True(t, w.registry.Execute(as(admin), "place-printer", []string{"fast", "alice", "GOLD"}))
	assert.False(t, w.registry.Execute(as(admin), "place-printer", []string{"odd", "alice", "platinum"}))
	_, found := w.printers.Get("odd")
	assert.False(t, found)

	// gold prints every 250ms, bronze every second
	w.printers.Tick(500 * time.Millisecond)
	slow, _ := w.printers.Get("slow")
	fast, _ := w.printers.Get("fast")
	assert.Zero(t, slow.Stored)
	assert.Equal(t, int64(20), fast.Stored)
	w.printers.Tick(500 * time.Millisecond)
	slow, _ = w.printers.Get("slow")
	assert.Equal(t, int64(10), slow.Stored)

	assert.True(t, w.registry.Execute(as(admin), "set-printer-tier", []string{"slow", "gold"}))
	slow, _ = w.printers.Get("slow")
	assert.Equal(t, TierGold, slow.Tier)
	assert.Equal(t, int64(10), slow.Stored)

	// silver is not configured and falls back to one minute
	assert.Equal(t, fallbackTier, w.printers.Tier(TierSilver))

	assert.True(t, w.registry.Call(as(alice), "printer-tiers"))
	assert.Contains(t, aliceOut.String(), "gold: 300 coins, prints 10 every 250ms")
}

func TestBuyPrinter(t *testing.T) {
	w := newWorld(t)
	alice, _ := w.join(t, "alice", command.LevelUser)
	alice.SetBalance(350)

	assert.True(t, w.registry.Execute(as(alice), "buy-printer", []string{"mine"}))
	assert.Equal(t, int64(250), alice.Balance())
	assert.False(t, w.registry.Execute(as(alice), "buy-printer", []string{"mine", "gold"}))
	assert.Equal(t, int64(250), alice.Balance())
	assert.False(t, w.registry.Execute(as(alice), "buy-printer", []string{"other", "gold"}))
	assert.Equal(t, int64(250), alice.Balance())
	assert.False(t, w.registry.Execute(as(alice), "buy-printer", []string{"other", "tin"}))

	pr, ok := w.printers.Get("mine")
	require.True(t, ok)
	assert.Equal(t, "alice", pr.Owner)
	assert.Equal(t, TierBronze, pr.Tier)
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(" " + tier.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := ParseTier("wood")
	assert.True(t, errors.Is(err, ErrUnknownTier))
	assert.Equal(t, "tier(9)", Tier(9).String())
}

func TestPrintersRun(t *testing.T) {
	logger, _ := test.NewNullLogger()
	printers := NewPrinters(player.NewManager(context.Background()), 25, map[Tier]TierConfig{
		TierBronze: {Rate: 10, Interval: 5 * time.Millisecond},
	}, logger)
	require.NoError(t, printers.Add("p1", "alice", TierBronze))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		printers.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	assert.Eventually(t, func() bool {
		pr, _ := printers.Get("p1")
		return pr.Stored == 25
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestHelp(t *testing.T) {
	w := newWorld(t)
	bob, out := w.join(t, "bob", command.LevelUser)
	assert.True(t, w.registry.Call(as(bob), "help"))
	assert.Contains(t, out.String(), "pay <player> <amount>")
	assert.NotContains(t, out.String(), "give")

	bob.SetLevel(command.LevelAdmin)
	out.Reset()
	assert.True(t, w.registry.Call(as(bob), "help"))
	assert.Contains(t, out.String(), "give <player> <amount>")
}
