package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// MaxLoginAttempts failures from one address trigger a lockout.
	MaxLoginAttempts = 10
	// LockoutDuration is how long a locked address stays denied.
	LockoutDuration = 10 * time.Minute
)

type (
	// Throttle rate-limits login attempts per client address. Keying on
	// the address rather than the username also slows distributed
	// guessing of many usernames from one host, at the price of
	// occasionally locking out a shared NAT address.
	Throttle struct {
		store Store
		now   func() time.Time
	}
)

func NewThrottle(store Store) *Throttle {
	return &Throttle{store: store, now: time.Now}
}

// Check reports whether the address is admitted to attempt a login.
// It must run before any credential work.
func (t *Throttle) Check(ctx context.Context, address string) (bool, error) {
	attempt, err := t.store.FindLoginAttempt(ctx, address)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to check throttle state for address, cause %w", err)
	}
	if attempt.LockoutExpiresAt != nil && attempt.LockoutExpiresAt.After(t.now()) {
		return false, nil
	}
	return true, nil
}

// RecordFailure bumps the failure counter for the address and arms the
// lockout once the counter reaches MaxLoginAttempts. Concurrent
// failures may race on the counter; last-writer-wins is fine since the
// throttle only needs eventual lockout under sustained abuse.
func (t *Throttle) RecordFailure(ctx context.Context, address string) error {
	attempt, err := t.store.FindLoginAttempt(ctx, address)
	if errors.Is(err, ErrNotFound) {
		attempt = LoginAttempt{Address: address}
	} else if err != nil {
		return fmt.Errorf("unable to load throttle state for address, cause %w", err)
	}
	attempt.Attempts++
	if attempt.Attempts >= MaxLoginAttempts {
		lockout := t.now().Add(LockoutDuration)
		attempt.LockoutExpiresAt = &lockout
	} else {
		attempt.LockoutExpiresAt = nil
	}
	if err := t.store.UpsertLoginAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("unable to record login failure, cause %w", err)
	}
	return nil
}

// RecordSuccess fully forgives the address: counter back to zero,
// lockout cleared, regardless of prior state.
func (t *Throttle) RecordSuccess(ctx context.Context, address string) error {
	err := t.store.UpsertLoginAttempt(ctx, LoginAttempt{Address: address})
	if err != nil {
		return fmt.Errorf("unable to reset throttle state, cause %w", err)
	}
	return nil
}
