// Package session is the container that peer subsystems of one game session
// are resolved from. Services are keyed by fixed UUIDs instead of being
// passed around as globals.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNilService     = errors.New("nil service")
	ErrServiceExists  = errors.New("service already provided")
	ErrServiceMissing = errors.New("service not provided")
)

type Session struct {
	sync.RWMutex

	id       uuid.UUID
	services map[uuid.UUID]interface{}
	log      logrus.FieldLogger
}

type Option func(*Session)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithID fixes the session id, a random one is used otherwise.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

func New(opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		services: make(map[uuid.UUID]interface{}),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Provide makes svc resolvable under id.
func (s *Session) Provide(id uuid.UUID, svc interface{}) error {
	if svc == nil {
		return fmt.Errorf("%w for %v", ErrNilService, id)
	}
	s.Lock()
	defer s.Unlock()
	if _, found := s.services[id]; found {
		return fmt.Errorf("%w: %v", ErrServiceExists, id)
	}
	s.services[id] = svc
	return nil
}

func (s *Session) Remove(id uuid.UUID) error {
	s.Lock()
	defer s.Unlock()
	if _, found := s.services[id]; !found {
		return fmt.Errorf("%w: %v", ErrServiceMissing, id)
	}
	delete(s.services, id)
	return nil
}

// Lookup returns the service under id. A miss is logged and reported as
// false.
func (s *Session) Lookup(id uuid.UUID) (interface{}, bool) {
	s.RLock()
	svc, found := s.services[id]
	s.RUnlock()
	if !found {
		s.log.WithFields(logrus.Fields{
			"session": s.id,
			"service": id,
		}).Error("service not found in session")
		return nil, false
	}
	return svc, true
}

// IDs lists the provided service ids in no particular order.
func (s *Session) IDs() []uuid.UUID {
	s.RLock()
	defer s.RUnlock()
	result := make([]uuid.UUID, 0, len(s.services))
	for id := range s.services {
		result = append(result, id)
	}
	return result
}

// Resolve is Lookup with a type assertion. A service of the wrong type is
// logged and reported as absent.
func Resolve[T any](s *Session, id uuid.UUID) (T, bool) {
	var zero T
	svc, ok := s.Lookup(id)
	if !ok {
		return zero, false
	}
	typed, ok := svc.(T)
	if !ok {
		s.log.WithFields(logrus.Fields{
			"session": s.id,
			"service": id,
		}).Errorf("service has type %T, want %T", svc, zero)
		return zero, false
	}
	return typed, true
}
