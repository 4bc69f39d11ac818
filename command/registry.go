// Package command holds the name-keyed table of invokable actions that
// gameplay modules register and that chat, console and RPC handlers run.
//
// The registry stores permission levels but does not check them; callers
// decide who may run what, then hand the checked descriptor to Run.
package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry maps lowercased command names to descriptors. It is safe for
// concurrent use; the lock is never held while a command runs.
type Registry struct {
	sync.RWMutex

	commands map[string]*Descriptor
	players  Players
	log      logrus.FieldLogger
}

type Option func(*Registry)

// WithLogger sets the diagnostic side channel.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = l }
}

// WithPlayers sets the resolver used to validate player arguments.
func WithPlayers(p Players) Option {
	return func(r *Registry) { r.players = p }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		commands: make(map[string]*Descriptor),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds d under its lowercased name. Registration is strict: an
// existing entry is never replaced.
func (r *Registry) Register(d *Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	entry := d.clone()
	entry.Name = normalize(d.Name)

	r.Lock()
	defer r.Unlock()
	if _, found := r.commands[entry.Name]; found {
		return fmt.Errorf("%w: %q already exists", ErrDuplicateName, entry.Name)
	}
	r.commands[entry.Name] = &entry
	return nil
}

func (r *Registry) Unregister(name string) error {
	key, err := key(name)
	if err != nil {
		return err
	}
	r.Lock()
	defer r.Unlock()
	if _, found := r.commands[key]; !found {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	delete(r.commands, key)
	return nil
}

// Get returns a copy of the descriptor registered under name, in any case.
func (r *Registry) Get(name string) (Descriptor, error) {
	key, err := key(name)
	if err != nil {
		return Descriptor{}, err
	}
	r.RLock()
	d, found := r.commands[key]
	r.RUnlock()
	if !found {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return d.clone(), nil
}

// ListNames returns the registered names in ascending order.
func (r *Registry) ListNames() []string {
	r.RLock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	r.RUnlock()
	sort.Strings(names)
	return names
}

// Descriptors returns copies of every descriptor, sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	r.RLock()
	result := make([]Descriptor, 0, len(r.commands))
	for _, d := range r.commands {
		result = append(result, d.clone())
	}
	r.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Execute runs the argument shape of the named command. Every failure,
// including a panic inside the command, is logged and reported as false.
func (r *Registry) Execute(ctx context.Context, name string, args []string) bool {
	return r.run(name, func(d *Descriptor) (bool, error) {
		return d.invokeArgs(ctx, args, r.players)
	})
}

// Call runs the no-argument shape of the named command with the same
// failure handling as Execute.
func (r *Registry) Call(ctx context.Context, name string) bool {
	return r.run(name, func(d *Descriptor) (bool, error) {
		return d.Invoke(ctx)
	})
}

// Run executes d as given, without resolving its name again. Callers that
// checked a descriptor's level use this so the checked command is the one
// that runs. Without args the no-argument shape is preferred when d has one.
func (r *Registry) Run(ctx context.Context, d Descriptor, args []string) bool {
	return r.invoke(d, func(d *Descriptor) (bool, error) {
		if len(args) == 0 && d.Run != nil {
			return d.Invoke(ctx)
		}
		return d.invokeArgs(ctx, args, r.players)
	})
}

func (r *Registry) run(name string, fn func(*Descriptor) (bool, error)) bool {
	d, err := r.Get(name)
	if err != nil {
		r.fail(normalize(name), err, nil)
		return false
	}
	return r.invoke(d, fn)
}

func (r *Registry) invoke(d Descriptor, fn func(*Descriptor) (bool, error)) (ok bool) {
	display := normalize(d.Name)
	r.log.WithField("command", display).Infof("Executing command %q.", display)

	defer func() {
		if p := recover(); p != nil {
			r.fail(display, &CommandError{Name: display, Err: fmt.Errorf("panic: %v", p)}, debug.Stack())
			ok = false
		}
	}()

	ok, err := fn(&d)
	if err != nil {
		r.fail(display, err, nil)
		return false
	}
	return ok
}

func (r *Registry) fail(name string, err error, stack []byte) {
	entry := r.log.WithFields(logrus.Fields{
		"command": name,
		"kind":    failureKind(err),
	})
	if stack != nil {
		entry = entry.WithField("stack", string(stack))
	}
	entry.Errorf("Failed to execute command %q: %v.", name, err)
}

func key(name string) (string, error) {
	k := normalize(name)
	if k == "" {
		return "", fmt.Errorf("%w: empty command name", ErrInvalidArgument)
	}
	return k, nil
}
