package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// CookieName carries the raw session token on the client.
	CookieName = "admin_session"
	// SessionTTL is the lifetime granted on login and on renewal.
	SessionTTL = 30 * 24 * time.Hour
	// RenewWindow is half the TTL: once the remaining lifetime drops
	// below it, the next validated request slides the expiry forward.
	// A session in continued use is therefore written roughly once per
	// half-TTL instead of on every request.
	RenewWindow = 15 * 24 * time.Hour
)

type (
	// Sessions issues, validates and revokes stored sessions.
	Sessions struct {
		store Store
		now   func() time.Time
	}

	// Identity is the minimal user attached to authenticated requests.
	Identity struct {
		UserID   int64
		Username string
	}

	// Resolution is the outcome of validating one cookie token. It
	// separates the decision from request/response mutation so the
	// gate stays testable without a network stack: Identity says who
	// the caller is (nil means unauthenticated), ClearCookie and Renew
	// say what should happen to the cookie.
	Resolution struct {
		Identity    *Identity
		ClearCookie bool
		Renew       bool
		NewExpiry   time.Time
	}
)

func NewSessions(store Store) *Sessions {
	return &Sessions{store: store, now: time.Now}
}

// Issue mints a fresh token and persists a session for it with a full
// TTL. Tokens are always minted anew on login, never reused, so a
// pre-login cookie can never be fixed onto an authenticated session.
func (s *Sessions) Issue(ctx context.Context, userID int64) (token string, expiresAt time.Time, err error) {
	token, err = NewToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt = s.now().Add(SessionTTL)
	err = s.store.CreateSession(ctx, Session{
		ID:        LookupKey(token),
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("unable to persist session, cause %w", err)
	}
	return token, expiresAt, nil
}

// Resolve validates a raw cookie token against the store.
//
// Unknown tokens just ask for cookie cleanup. Expired sessions are
// deleted on discovery; two concurrent requests may both observe the
// same expired row and both delete it, which the store treats as a
// harmless no-op. Valid sessions inside the renew window get their
// expiry slid to now+TTL and the cookie reissued to match.
func (s *Sessions) Resolve(ctx context.Context, token string) (Resolution, error) {
	id := LookupKey(token)
	session, user, err := s.store.FindSessionByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Resolution{ClearCookie: true}, nil
	} else if err != nil {
		return Resolution{}, fmt.Errorf("unable to load session, cause %w", err)
	}
	now := s.now()
	if !session.ExpiresAt.After(now) {
		if err := s.store.DeleteSessionByID(ctx, id); err != nil {
			return Resolution{}, fmt.Errorf("unable to remove expired session, cause %w", err)
		}
		return Resolution{ClearCookie: true}, nil
	}
	res := Resolution{
		Identity: &Identity{UserID: user.ID, Username: user.Username},
	}
	if session.ExpiresAt.Sub(now) <= RenewWindow {
		res.Renew = true
		res.NewExpiry = now.Add(SessionTTL)
		if err := s.store.UpdateSessionExpiry(ctx, id, res.NewExpiry); err != nil {
			return Resolution{}, fmt.Errorf("unable to renew session, cause %w", err)
		}
	}
	return res, nil
}

// Revoke deletes the session behind the given token. A token that maps
// to no stored session is already revoked, so that case succeeds.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	err := s.store.DeleteSessionByID(ctx, LookupKey(token))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("unable to revoke session, cause %w", err)
	}
	return nil
}

// SessionCookie builds the cookie that carries the raw token. Secure
// is only set in production so local development over plain HTTP keeps
// working.
func SessionCookie(token string, expires time.Time, production bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   production,
	}
}

// ClearSessionCookie builds the removal cookie for the session.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
