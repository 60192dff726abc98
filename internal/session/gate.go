// Package session implements the one-shot authentication gate that guards
// access to the diary entries for the lifetime of a process.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/clock"
)

// State is a gate state.
type State int

const (
	Unauthenticated State = iota
	AwaitingEnrollment
	AwaitingVerification
	Authenticated
)

func (s State) String() string {
	switch s {
	case AwaitingEnrollment:
		return "awaiting_enrollment"
	case AwaitingVerification:
		return "awaiting_verification"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Credentials is the part of the credential store the gate needs.
type Credentials interface {
	HasCredential() bool
	Enroll(password string) error
	Verify(password string) (bool, error)
}

// Gate resolves enrollment or verification once and then hands out the
// guarded value E. Authenticated is terminal.
type Gate[E any] struct {
	mu         sync.Mutex
	creds      Credentials
	guarded    E
	state      State
	clock      clock.Clock
	unlockedAt clock.Stamp
	logger     *slog.Logger
}

// Option configures a Gate.
type Option func(*options)

type options struct {
	clock  clock.Clock
	logger *slog.Logger
}

// WithClock sets the clock used to stamp the unlock time.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a gate over creds guarding value. The initial state is computed
// here, once, from creds.HasCredential.
func New[E any](creds Credentials, value E, opts ...Option) *Gate[E] {
	o := options{clock: clock.System, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	g := &Gate[E]{
		creds:   creds,
		guarded: value,
		clock:   o.clock,
		logger:  o.logger,
	}
	if creds.HasCredential() {
		g.state = AwaitingVerification
	} else {
		g.state = AwaitingEnrollment
	}
	g.logger.Info("session: gate ready", slog.String("state", g.state.String()))
	return g
}

// State returns the current state.
func (g *Gate[E]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Enroll sets the first password and unlocks the gate.
func (g *Gate[E]) Enroll(password string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != AwaitingEnrollment {
		return g.state, fmt.Errorf("session: enroll in state %s: %w", g.state, apperr.ErrInvalidState)
	}
	if err := g.creds.Enroll(password); err != nil {
		return g.state, fmt.Errorf("session: enroll: %w", err)
	}
	g.unlock()
	return g.state, nil
}

// Verify checks password against the enrolled one and unlocks on a match.
func (g *Gate[E]) Verify(password string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != AwaitingVerification {
		return g.state, fmt.Errorf("session: verify in state %s: %w", g.state, apperr.ErrInvalidState)
	}
	ok, err := g.creds.Verify(password)
	if err != nil {
		return g.state, fmt.Errorf("session: verify: %w", err)
	}
	if !ok {
		return g.state, fmt.Errorf("session: verify: %w", apperr.ErrWrongPassword)
	}
	g.unlock()
	return g.state, nil
}

// Unlocked returns the guarded value once the gate is authenticated.
func (g *Gate[E]) Unlocked() (E, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Authenticated {
		var zero E
		return zero, apperr.ErrLocked
	}
	return g.guarded, nil
}

// UnlockedAt returns the clock reading taken when the gate opened.
func (g *Gate[E]) UnlockedAt() (clock.Stamp, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlockedAt, g.state == Authenticated
}

func (g *Gate[E]) unlock() {
	g.state = Authenticated
	g.unlockedAt = g.clock.Now()
	g.logger.Info("session: unlocked", slog.String("at", g.unlockedAt.String()))
}
