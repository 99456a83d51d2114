package auth

import (
	"context"
	"errors"
	"time"
)

type (
	// User is an admin account. Accounts are created out of band by the
	// register command; this package only ever reads them.
	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}

	// Session is a stored session row. ID is the lookup key derived
	// from the client token, never the token itself.
	Session struct {
		ID        string
		UserID    int64
		ExpiresAt time.Time
	}

	// LoginAttempt tracks failed logins per client address. A nil
	// LockoutExpiresAt means the address is not locked out.
	LoginAttempt struct {
		Address          string
		Attempts         int
		LockoutExpiresAt *time.Time
	}

	// Store is the persistence contract the auth core runs against.
	// Every call is a single-row read, upsert or delete; the store is
	// the single arbiter of concurrent updates.
	Store interface {
		FindUserByUsername(ctx context.Context, username string) (User, error)
		FindSessionByID(ctx context.Context, id string) (Session, User, error)
		CreateSession(ctx context.Context, session Session) error
		UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error
		// DeleteSessionByID is idempotent: deleting a row that is
		// already gone is a no-op success.
		DeleteSessionByID(ctx context.Context, id string) error
		FindLoginAttempt(ctx context.Context, address string) (LoginAttempt, error)
		UpsertLoginAttempt(ctx context.Context, attempt LoginAttempt) error
	}
)

// ErrNotFound is returned (possibly wrapped) by Store lookups when no
// matching row exists.
var ErrNotFound = errors.New("record not found")
