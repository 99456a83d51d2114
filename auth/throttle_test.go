package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestThrottleAdmitsBelowThreshold(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	throttle := NewThrottle(store)

	for i := 0; i < MaxLoginAttempts-1; i++ {
		admitted, err := throttle.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, admitted, "attempt %v should be admitted", i+1)
		require.NoError(t, throttle.RecordFailure(ctx, "1.2.3.4"))
	}
	attempt, ok := store.attemptFor("1.2.3.4")
	require.True(t, ok)
	require.Equal(t, MaxLoginAttempts-1, attempt.Attempts)
	require.Nil(t, attempt.LockoutExpiresAt)
}

func TestThrottleLockoutAtThreshold(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	throttle := NewThrottle(store)
	now, clock := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	throttle.now = clock

	for i := 0; i < MaxLoginAttempts; i++ {
		require.NoError(t, throttle.RecordFailure(ctx, "1.2.3.4"))
	}
	admitted, err := throttle.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, admitted, "10th failure must lock the address out")

	// other addresses remain unaffected
	admitted, err = throttle.Check(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, admitted)

	// still locked just before expiry
	*now = now.Add(LockoutDuration - time.Second)
	admitted, err = throttle.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, admitted)

	// admitted again once the lockout has passed
	*now = now.Add(2 * time.Second)
	admitted, err = throttle.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, admitted)

	// one more failure past the threshold arms the lockout again
	require.NoError(t, throttle.RecordFailure(ctx, "1.2.3.4"))
	admitted, err = throttle.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, admitted)
}

func TestThrottleSuccessForgivesEverything(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	throttle := NewThrottle(store)

	for i := 0; i < MaxLoginAttempts+3; i++ {
		require.NoError(t, throttle.RecordFailure(ctx, "1.2.3.4"))
	}
	require.NoError(t, throttle.RecordSuccess(ctx, "1.2.3.4"))
	attempt, ok := store.attemptFor("1.2.3.4")
	require.True(t, ok)
	require.Zero(t, attempt.Attempts)
	require.Nil(t, attempt.LockoutExpiresAt)

	// idempotent on repeated success
	require.NoError(t, throttle.RecordSuccess(ctx, "1.2.3.4"))
	attempt, _ = store.attemptFor("1.2.3.4")
	require.Zero(t, attempt.Attempts)

	admitted, err := throttle.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, admitted)
}
