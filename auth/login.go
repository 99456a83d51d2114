package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelar/homebox/auth/passwd"
	"github.com/avelar/homebox/internal/logutil"
)

// User-facing messages. Bad format, unknown user and wrong password
// must be textually identical so probers learn nothing from the text.
const (
	GenericAuthError = "Incorrect username or password"
	RateLimitError   = "Too many attempts. Please try again later."
)

// Field bounds enforced before any credential work.
const (
	usernameMinLen = 1
	usernameMaxLen = 255
	passwordMinLen = 8
	passwordMaxLen = 255
)

var (
	// ErrInvalidCredentials covers malformed input, unknown usernames
	// and wrong passwords alike.
	ErrInvalidCredentials = errors.New(GenericAuthError)
	// ErrRateLimited means the address is locked out; no credential
	// work was performed and no retry timing is disclosed.
	ErrRateLimited = errors.New(RateLimitError)
)

type (
	// Flow runs the login and logout business logic against a Store.
	Flow struct {
		store    Store
		hasher   *passwd.Hasher
		throttle *Throttle
		sessions *Sessions
	}
)

func NewFlow(store Store, hasher *passwd.Hasher) *Flow {
	return &Flow{
		store:    store,
		hasher:   hasher,
		throttle: NewThrottle(store),
		sessions: NewSessions(store),
	}
}

// Sessions exposes the session manager the flow issues through, for
// the gate and the logout path.
func (f *Flow) Sessions() *Sessions {
	return f.sessions
}

// Login runs the full login state machine for one attempt from the
// given client address. On success it returns a freshly minted session
// token and its expiry; the caller turns those into a cookie.
//
// Order matters: the throttle gate runs before everything else so a
// locked-out address costs no hashing work, and the password is always
// verified (against a dummy digest when the user is unknown) so the
// response time does not betray whether a username exists.
func (f *Flow) Login(ctx context.Context, address, username, password string) (token string, expiresAt time.Time, err error) {
	admitted, err := f.throttle.Check(ctx, address)
	if err != nil {
		return "", time.Time{}, err
	}
	if !admitted {
		return "", time.Time{}, ErrRateLimited
	}

	if len(username) < usernameMinLen || len(username) > usernameMaxLen ||
		len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return "", time.Time{}, ErrInvalidCredentials
	}

	user, err := f.store.FindUserByUsername(ctx, username)
	known := true
	if errors.Is(err, ErrNotFound) {
		known = false
	} else if err != nil {
		return "", time.Time{}, fmt.Errorf("unable to look up user, cause %w", err)
	}
	digest := user.PasswordHash
	if !known {
		digest = f.hasher.DummyDigest()
	}
	valid, err := f.hasher.Verify(digest, password)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("unable to verify password, cause %w", err)
	}

	if !known || !valid {
		if err := f.throttle.RecordFailure(ctx, address); err != nil {
			return "", time.Time{}, err
		}
		return "", time.Time{}, ErrInvalidCredentials
	}

	if err := f.throttle.RecordSuccess(ctx, address); err != nil {
		return "", time.Time{}, err
	}
	return f.sessions.Issue(ctx, user.ID)
}

// Logout revokes the session behind the token, if any. Store failures
// are logged and swallowed: from the client's point of view logout
// always succeeds, and an unrevoked row still dies at its expiry.
func (f *Flow) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := f.sessions.Revoke(ctx, token); err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Warn().Err(err).Msg("Unable to revoke session during logout")
	}
}
