// Package guard throttles authentication attempts per identity. It runs
// before any access profile exists and owns the only mutable shared state in
// the engine.
package guard

import (
	"math"
	"sync"
	"time"

	"campaign-access-service/internal/util"
)

// Policy holds the lockout tunables. The invariant worth keeping when tuning:
// LockoutDuration must stay shorter than AttemptWindow, so a failure count
// survives an expired lockout instead of being forgiven with it.
type Policy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultPolicy matches the production configuration.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		AttemptWindow:   time.Hour,
	}
}

// Guard is the per-identity failed-login state machine. Every identity is in
// one of three states: Clean (no record), Accumulating (count below the
// threshold, no lockout) or Locked (lockout armed and in the future). All
// mutation is serialized per key by the store.
type Guard struct {
	store  AttemptStore
	policy Policy
	now    func() time.Time

	sweepOnce sync.Once
	sweepStop chan struct{}
}

// New builds a guard over the given store.
func New(store AttemptStore, policy Policy) *Guard {
	return &Guard{
		store:     store,
		policy:    policy,
		now:       time.Now,
		sweepStop: make(chan struct{}),
	}
}

// RecordFailure registers one failed authentication attempt. First failure
// creates the record; a record whose window has elapsed is treated as
// expired and restarts at one; a locked identity is left untouched (the
// lockout is not extended); otherwise the count increments and crossing the
// threshold arms the lockout.
func (g *Guard) RecordFailure(id string) {
	now := g.now()
	g.store.Mutate(id, func(rec *AttemptRecord) *AttemptRecord {
		if rec == nil {
			return &AttemptRecord{Count: 1, FirstAttemptAt: now}
		}
		if now.Sub(rec.FirstAttemptAt) > g.policy.AttemptWindow {
			return &AttemptRecord{Count: 1, FirstAttemptAt: now}
		}
		if rec.LockedUntil.After(now) {
			return rec
		}
		rec.Count++
		if rec.Count >= g.policy.MaxAttempts {
			rec.LockedUntil = now.Add(g.policy.LockoutDuration)
		}
		return rec
	})
}

// IsLocked reports the remaining lockout in whole seconds (ceiling). A
// lockout found expired is cleared in the same atomic step: if the attempt
// window has also elapsed the record is deleted, otherwise the failure count
// is preserved so the identity re-locks quickly on its next failure.
func (g *Guard) IsLocked(id string) (int, bool) {
	now := g.now()
	var remaining int
	var locked bool

	g.store.Mutate(id, func(rec *AttemptRecord) *AttemptRecord {
		if rec == nil {
			return nil
		}
		if rec.LockedUntil.IsZero() {
			return rec
		}
		if rec.LockedUntil.After(now) {
			remaining = lockRemaining(rec.LockedUntil, now)
			locked = true
			return rec
		}
		// Lockout expired. Window expired too means the record is stale.
		if now.Sub(rec.FirstAttemptAt) > g.policy.AttemptWindow {
			return nil
		}
		rec.LockedUntil = time.Time{}
		return rec
	})

	return remaining, locked
}

// lockRemaining is the pure remaining-seconds computation behind IsLocked.
func lockRemaining(lockedUntil, now time.Time) int {
	secs := math.Ceil(lockedUntil.Sub(now).Seconds())
	if secs < 1 {
		return 1
	}
	return int(secs)
}

// ResetAttempts forgets the identity entirely. Called on successful
// authentication.
func (g *Guard) ResetAttempts(id string) {
	g.store.Delete(id)
}

// RemainingAttempts reports how many failures the identity has left before
// lockout. A missing or window-expired record counts as a full allowance.
func (g *Guard) RemainingAttempts(id string) int {
	rec, ok := g.store.Get(id)
	if !ok {
		return g.policy.MaxAttempts
	}
	if g.now().Sub(rec.FirstAttemptAt) > g.policy.AttemptWindow {
		return g.policy.MaxAttempts
	}
	remaining := g.policy.MaxAttempts - rec.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Attempts returns the current failure count for an identity, zero when
// Clean or expired. Used by the auth flow when emitting security events.
func (g *Guard) Attempts(id string) int {
	rec, ok := g.store.Get(id)
	if !ok {
		return 0
	}
	if g.now().Sub(rec.FirstAttemptAt) > g.policy.AttemptWindow {
		return 0
	}
	return rec.Count
}

// StartSweeper launches the periodic garbage collection of stale records.
// A record is stale once it has no active lockout and its window elapsed;
// removal only needs to happen eventually, not immediately.
func (g *Guard) StartSweeper(interval time.Duration) {
	g.sweepOnce.Do(func() {
		ticker := time.NewTicker(interval)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					removed := g.Sweep()
					if removed > 0 {
						util.Debug("login guard sweep completed", util.Int("removed", removed))
					}
				case <-g.sweepStop:
					return
				}
			}
		}()
	})
}

// StopSweeper terminates the background sweep.
func (g *Guard) StopSweeper() {
	select {
	case <-g.sweepStop:
	default:
		close(g.sweepStop)
	}
}

// Sweep removes every stale record and returns how many were dropped.
func (g *Guard) Sweep() int {
	now := g.now()
	var stale []string
	g.store.Range(func(id string, rec AttemptRecord) bool {
		if rec.LockedUntil.After(now) {
			return true
		}
		if now.Sub(rec.FirstAttemptAt) > g.policy.AttemptWindow {
			stale = append(stale, id)
		}
		return true
	})

	removed := 0
	for _, id := range stale {
		// Re-check under the key's lock; the record may have been refreshed
		// between the walk and now.
		g.store.Mutate(id, func(rec *AttemptRecord) *AttemptRecord {
			if rec == nil {
				return nil
			}
			if !rec.LockedUntil.After(now) && now.Sub(rec.FirstAttemptAt) > g.policy.AttemptWindow {
				removed++
				return nil
			}
			return rec
		})
	}
	return removed
}
