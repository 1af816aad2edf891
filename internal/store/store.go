package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrOwnerRequired  = errors.New("cart owner is required")
	ErrEmailTaken     = errors.New("user with this email already exists")
	ErrDuplicateOrder = errors.New("order id already exists")
)

// Command is one typed state transition. Apply mutates the state it is given
// and must leave no partial change visible when it returns an error; the store
// guarantees this by applying commands to a private copy.
type Command interface {
	Name() string
	Apply(s *State, now time.Time) error
}

// Listener observes committed changes. Listeners run in commit order while the
// store is locked; they must not retain s or dispatch commands.
type Listener func(ctx context.Context, s State, cmd Command)

// Store is the state container of one storefront instance
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []Listener
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Store)

// WithClock overrides the time source used by commands
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a store seeded with initial
func New(initial State, opts ...Option) *Store {
	s := &Store{
		state:  initial.Clone(),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies cmd atomically: either the whole command commits or nothing changes.
func (s *Store) Dispatch(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := cmd.Apply(&next, s.now()); err != nil {
		s.logger.Debug("Command rejected", zap.String("command", cmd.Name()), zap.Error(err))
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	s.state = next

	s.logger.Debug("Command applied", zap.String("command", cmd.Name()))
	for _, l := range s.listeners {
		l(ctx, s.state, cmd)
	}
	return nil
}

// Subscribe registers l for every future commit
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// View runs fn against the current state without copying it. fn must not
// retain or modify the state.
func (s *Store) View(fn func(State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *Store) Now() time.Time {
	return s.now()
}
