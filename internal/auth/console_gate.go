package auth

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrConsoleLocked   = errors.New("too many failed attempts, console locked")
	ErrConsoleDisabled = errors.New("legacy console access is disabled")
)

// ConsoleGate guards the legacy shared-password admin console. It keeps a
// failed-attempt counter per caller and refuses further attempts for the
// lockout window once the limit is reached. The lockout is durable for the
// whole window; a correct password does not clear it early.
type ConsoleGate struct {
	passwordHash string
	maxAttempts  int
	lockout      time.Duration
	now          func() time.Time

	mu       sync.Mutex
	failures map[string]*attemptState
}

type attemptState struct {
	count       int
	lockedUntil time.Time
}

// NewConsoleGate creates a gate around the shared console password hash.
// An empty hash disables the gate.
func NewConsoleGate(passwordHash string, maxAttempts int, lockout time.Duration) *ConsoleGate {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &ConsoleGate{
		passwordHash: passwordHash,
		maxAttempts:  maxAttempts,
		lockout:      lockout,
		now:          time.Now,
		failures:     make(map[string]*attemptState),
	}
}

// Attempt verifies the shared password for the given caller key. Returns
// ErrConsoleLocked while the caller is locked out and ErrPasswordMismatch
// on a wrong password.
func (g *ConsoleGate) Attempt(caller, password string) error {
	if g.passwordHash == "" {
		return ErrConsoleDisabled
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state := g.failures[caller]
	if state != nil && now.Before(state.lockedUntil) {
		return ErrConsoleLocked
	}

	if err := VerifyPassword(password, g.passwordHash); err != nil {
		if state == nil || now.After(state.lockedUntil) && state.count >= g.maxAttempts {
			state = &attemptState{}
			g.failures[caller] = state
		}
		state.count++
		if state.count >= g.maxAttempts {
			state.lockedUntil = now.Add(g.lockout)
		}
		return ErrPasswordMismatch
	}

	delete(g.failures, caller)
	return nil
}

// RemainingAttempts reports how many attempts the caller has left before
// lockout, and how long a current lockout lasts.
func (g *ConsoleGate) RemainingAttempts(caller string) (int, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.failures[caller]
	if state == nil {
		return g.maxAttempts, 0
	}

	now := g.now()
	if now.Before(state.lockedUntil) {
		return 0, state.lockedUntil.Sub(now)
	}

	remaining := g.maxAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, 0
}
