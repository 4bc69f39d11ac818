package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jarvisgally/gamecmd/command"
	"golang.org/x/time/rate"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrBalanceOverflow   = errors.New("balance would overflow")
)

// A connected player
type Player struct {
	name  string
	id    uuid.UUID
	level atomic.Int32

	balance atomic.Int64

	outLock sync.Mutex
	out     io.Writer

	limiterLock sync.Mutex
	limiter     *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) ID() uuid.UUID {
	return p.id
}

func (p *Player) Level() command.Level {
	return command.Level(p.level.Load())
}

func (p *Player) SetLevel(l command.Level) {
	p.level.Store(int32(l))
}

// Context is cancelled once the player leaves.
func (p *Player) Context() context.Context {
	return p.ctx
}

func (p *Player) Close() error {
	p.cancel()
	return nil
}

func (p *Player) Balance() int64 {
	return p.balance.Load()
}

func (p *Player) SetBalance(n int64) {
	p.balance.Store(n)
}

func (p *Player) Credit(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, n)
	}
	for {
		cur := p.balance.Load()
		if cur > math.MaxInt64-n {
			return fmt.Errorf("%w: have %d, adding %d", ErrBalanceOverflow, cur, n)
		}
		if p.balance.CompareAndSwap(cur, cur+n) {
			return nil
		}
	}
}

// Debit takes n coins, failing without change when the balance is short.
func (p *Player) Debit(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, n)
	}
	for {
		cur := p.balance.Load()
		if cur < n {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, cur, n)
		}
		if p.balance.CompareAndSwap(cur, cur-n) {
			return nil
		}
	}
}

// Transfer moves n coins from p to to.
func (p *Player) Transfer(to *Player, n int64) error {
	if err := p.Debit(n); err != nil {
		return err
	}
	if err := to.Credit(n); err != nil {
		// restore the debit
		p.balance.Add(n)
		return err
	}
	return nil
}

// SetCommandRate throttles commands to perSecond with the given burst; a
// non-positive rate removes the throttle.
func (p *Player) SetCommandRate(perSecond float64, burst int) {
	p.limiterLock.Lock()
	defer p.limiterLock.Unlock()
	if perSecond <= 0 {
		p.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (p *Player) GetCommandRate() (float64, int) {
	p.limiterLock.Lock()
	defer p.limiterLock.Unlock()
	if p.limiter == nil {
		return 0, 0
	}
	return float64(p.limiter.Limit()), p.limiter.Burst()
}

// Allow reports whether the player may run another command now.
func (p *Player) Allow() bool {
	p.limiterLock.Lock()
	limiter := p.limiter
	p.limiterLock.Unlock()
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (p *Player) SetOutput(w io.Writer) {
	p.outLock.Lock()
	defer p.outLock.Unlock()
	p.out = w
}

// Output is where messages to the player go, never nil.
func (p *Player) Output() io.Writer {
	p.outLock.Lock()
	defer p.outLock.Unlock()
	if p.out == nil {
		return io.Discard
	}
	return p.out
}

// Tell sends a line to the player.
func (p *Player) Tell(format string, args ...interface{}) {
	p.outLock.Lock()
	defer p.outLock.Unlock()
	if p.out == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	io.WriteString(p.out, msg)
}

// Create a player, the context bounds its lifetime
func New(ctx context.Context, name string, level command.Level) *Player {
	ctx, cancel := context.WithCancel(ctx)
	p := &Player{
		name:   name,
		id:     uuid.New(),
		ctx:    ctx,
		cancel: cancel,
	}
	p.SetLevel(level)
	return p
}

type ctxKey struct{}

// NewContext returns a context carrying the invoking player.
func NewContext(ctx context.Context, p *Player) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (*Player, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Player)
	return p, ok && p != nil
}

// Manager tracks connected players by case-insensitive name.
type Manager struct {
	sync.RWMutex

	players map[string]*Player
	ctx     context.Context

	rate   float64
	burst  int
	output io.Writer
}

type Option func(*Manager)

// WithCommandRate sets the throttle applied to players added later.
func WithCommandRate(perSecond float64, burst int) Option {
	return func(m *Manager) {
		m.rate = perSecond
		m.burst = burst
	}
}

// WithOutput sets the default message writer of players added later.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.output = w }
}

func (m *Manager) Find(name string) (*Player, bool) {
	m.RLock()
	defer m.RUnlock()
	p, found := m.players[strings.ToLower(name)]
	return p, found
}

// Exists lets the manager resolve player arguments of commands.
func (m *Manager) Exists(name string) bool {
	_, found := m.Find(name)
	return found
}

func (m *Manager) Add(name string, level command.Level) (*Player, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, errors.New("empty player name")
	}
	m.Lock()
	defer m.Unlock()
	if _, found := m.players[key]; found {
		return nil, fmt.Errorf("player %v already exists", name)
	}
	p := New(m.ctx, strings.TrimSpace(name), level)
	p.SetCommandRate(m.rate, m.burst)
	p.SetOutput(m.output)
	m.players[key] = p
	return p, nil
}

func (m *Manager) Del(name string) error {
	m.Lock()
	defer m.Unlock()
	key := strings.ToLower(name)
	p, found := m.players[key]
	if !found {
		return fmt.Errorf("player %v not found", name)
	}
	p.Close()
	delete(m.players, key)
	return nil
}

// List returns the players sorted by name.
// Broadcast tells every player, writing once to outputs players share.
func (m *Manager) Broadcast(format string, args ...interface{}) {
	seen := make(map[io.Writer]bool)
	for _, p := range m.List() {
		out := p.Output()
		if reflect.TypeOf(out).Comparable() {
			if seen[out] {
				continue
			}
			seen[out] = true
		}
		p.Tell(format, args...)
	}
}

func (m *Manager) List() []*Player {
	m.RLock()
	result := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		result = append(result, p)
	}
	m.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].name) < strings.ToLower(result[j].name)
	})
	return result
}

func NewManager(ctx context.Context, opts ...Option) *Manager {
	m := &Manager{
		ctx:     ctx,
		players: make(map[string]*Player),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
