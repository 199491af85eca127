package gateway

import (
	"sync"
	"time"
)

// LockoutPolicy bounds repeated authentication failures per silo. Threshold
// failures inside Window lock the silo out of further handshakes for
// Duration.
type LockoutPolicy struct {
	Threshold int
	Window    time.Duration
	Duration  time.Duration
}

// DefaultLockoutPolicy is five failures in five minutes for a fifteen-minute
// lockout.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: 5, Window: 5 * time.Minute, Duration: 15 * time.Minute}
}

type lockoutState struct {
	failures    []time.Time
	lockedUntil time.Time
}

// Lockout tracks authentication failures per silo in memory. State is tied
// to the process lifetime, like sessions.
type Lockout struct {
	policy LockoutPolicy

	mu    sync.Mutex
	silos map[string]*lockoutState
}

func NewLockout(policy LockoutPolicy) *Lockout {
	return &Lockout{policy: policy, silos: make(map[string]*lockoutState)}
}

// Locked reports whether the silo is currently locked out.
func (l *Lockout) Locked(siloID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.silos[siloID]
	return ok && now.Before(state.lockedUntil)
}

// RecordFailure counts one authentication failure and reports whether it
// tripped the lockout.
func (l *Lockout) RecordFailure(siloID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.silos[siloID]
	if !ok {
		state = &lockoutState{}
		l.silos[siloID] = state
	}

	cutoff := now.Add(-l.policy.Window)
	kept := state.failures[:0]
	for _, t := range state.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	state.failures = append(kept, now)

	if len(state.failures) >= l.policy.Threshold {
		state.lockedUntil = now.Add(l.policy.Duration)
		state.failures = state.failures[:0]
		return true
	}
	return false
}

// Reset clears failure state after a successful handshake.
func (l *Lockout) Reset(siloID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.silos, siloID)
}
