package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testGate(t *testing.T, lockout time.Duration) (*ConsoleGate, *time.Time) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	gate := NewConsoleGate(string(hash), 5, lockout)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return clock }
	return gate, &clock
}

func TestConsoleGateAcceptsCorrectPassword(t *testing.T) {
	gate, _ := testGate(t, 15*time.Minute)

	assert.NoError(t, gate.Attempt("caller-1", "open-sesame"))

	remaining, wait := gate.RemainingAttempts("caller-1")
	assert.Equal(t, 5, remaining)
	assert.Zero(t, wait)
}

func TestConsoleGateLocksAfterMaxFailures(t *testing.T) {
	gate, _ := testGate(t, 15*time.Minute)

	for i := 0; i < 5; i++ {
		err := gate.Attempt("caller-1", "wrong")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	}

	// Locked now, even with the correct password.
	assert.ErrorIs(t, gate.Attempt("caller-1", "open-sesame"), ErrConsoleLocked)

	remaining, wait := gate.RemainingAttempts("caller-1")
	assert.Zero(t, remaining)
	assert.Equal(t, 15*time.Minute, wait)
}

func TestConsoleGateLockoutExpires(t *testing.T) {
	gate, clock := testGate(t, 15*time.Minute)

	for i := 0; i < 5; i++ {
		_ = gate.Attempt("caller-1", "wrong")
	}
	require.ErrorIs(t, gate.Attempt("caller-1", "open-sesame"), ErrConsoleLocked)

	*clock = clock.Add(16 * time.Minute)

	assert.NoError(t, gate.Attempt("caller-1", "open-sesame"))
}

func TestConsoleGateSuccessClearsFailures(t *testing.T) {
	gate, _ := testGate(t, 15*time.Minute)

	for i := 0; i < 3; i++ {
		_ = gate.Attempt("caller-1", "wrong")
	}
	remaining, _ := gate.RemainingAttempts("caller-1")
	assert.Equal(t, 2, remaining)

	require.NoError(t, gate.Attempt("caller-1", "open-sesame"))

	remaining, _ = gate.RemainingAttempts("caller-1")
	assert.Equal(t, 5, remaining)
}

func TestConsoleGateIsolatesCallers(t *testing.T) {
	gate, _ := testGate(t, 15*time.Minute)

	for i := 0; i < 5; i++ {
		_ = gate.Attempt("caller-1", "wrong")
	}

	assert.NoError(t, gate.Attempt("caller-2", "open-sesame"))
}

func TestConsoleGateDisabledWithoutHash(t *testing.T) {
	gate := NewConsoleGate("", 5, time.Minute)

	assert.ErrorIs(t, gate.Attempt("caller-1", "anything"), ErrConsoleDisabled)
}
