package auth

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"
)

func gateFixture(t *testing.T) (*Sessions, *memStore, http.Handler) {
	t.Helper()
	store := newMemStore()
	store.addUser(User{ID: 3, Username: "admin"})
	sessions := NewSessions(store)
	gate := NewGate(sessions, false)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFrom(r.Context()); ok {
			fmt.Fprintf(w, "hello %v", id.Username)
			return
		}
		fmt.Fprint(w, "hello anonymous")
	})
	return sessions, store, gate.Wrap(next)
}

func findSetCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGateHardeningHeaders(t *testing.T) {
	_, _, handler := gateFixture(t)
	apitest.Handler(handler).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Header("X-Frame-Options", "DENY").
		Header("X-Content-Type-Options", "nosniff").
		Header("Referrer-Policy", "strict-origin-when-cross-origin").
		Body("hello anonymous").
		End()
}

func TestGateProtectsAdminPrefix(t *testing.T) {
	_, _, handler := gateFixture(t)
	apitest.Handler(handler).
		Get("/admin").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", LoginPath).
		Header("X-Frame-Options", "DENY").
		End()
	apitest.Handler(handler).
		Get("/admin/anything").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", LoginPath).
		End()
}

func TestGateAttachesIdentity(t *testing.T) {
	ctx := context.Background()
	sessions, _, handler := gateFixture(t)
	token, _, err := sessions.Issue(ctx, 3)
	require.NoError(t, err)

	apitest.Handler(handler).
		Get("/admin").
		Cookies(apitest.NewCookie(CookieName).Value(token)).
		Expect(t).
		Status(http.StatusOK).
		Body("hello admin").
		End()
}

func TestGateRedirectsAuthenticatedLogin(t *testing.T) {
	ctx := context.Background()
	sessions, _, handler := gateFixture(t)
	token, _, err := sessions.Issue(ctx, 3)
	require.NoError(t, err)

	apitest.Handler(handler).
		Get(LoginPath).
		Cookies(apitest.NewCookie(CookieName).Value(token)).
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", ProtectedPrefix).
		End()
}

func TestGateClearsUnknownCookie(t *testing.T) {
	_, _, handler := gateFixture(t)
	apitest.Handler(handler).
		Get("/").
		Cookies(apitest.NewCookie(CookieName).Value("0123456789abcdef0123456789abcdef01234567")).
		Expect(t).
		Status(http.StatusOK).
		Body("hello anonymous").
		Assert(func(res *http.Response, req *http.Request) error {
			cleared := findSetCookie(res, CookieName)
			if cleared == nil {
				return fmt.Errorf("expected the stale cookie to be cleared")
			}
			if cleared.Value != "" || cleared.MaxAge >= 0 {
				return fmt.Errorf("expected a removal cookie, got %v", cleared)
			}
			return nil
		}).
		End()
}

func TestGateExpiresStaleSession(t *testing.T) {
	ctx := context.Background()
	sessions, store, handler := gateFixture(t)
	now, clock := testClock(time.Now())
	sessions.now = clock
	token, _, err := sessions.Issue(ctx, 3)
	require.NoError(t, err)

	*now = now.Add(SessionTTL + time.Minute)
	apitest.Handler(handler).
		Get("/admin").
		Cookies(apitest.NewCookie(CookieName).Value(token)).
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", LoginPath).
		End()
	require.Zero(t, store.sessionCount(), "expired session must be deleted on first use")
}

func TestGateReissuesCookieInsideRenewWindow(t *testing.T) {
	ctx := context.Background()
	sessions, _, handler := gateFixture(t)
	now, clock := testClock(time.Now())
	sessions.now = clock
	token, _, err := sessions.Issue(ctx, 3)
	require.NoError(t, err)

	*now = now.Add(SessionTTL - RenewWindow + time.Hour)
	apitest.Handler(handler).
		Get("/admin").
		Cookies(apitest.NewCookie(CookieName).Value(token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, req *http.Request) error {
			renewed := findSetCookie(res, CookieName)
			if renewed == nil {
				return fmt.Errorf("expected a reissued session cookie")
			}
			if renewed.Value != token {
				return fmt.Errorf("the reissued cookie must carry the same raw token")
			}
			return nil
		}).
		End()

	// outside the window nothing is reissued
	*now = now.Add(-2 * time.Hour)
	apitest.Handler(handler).
		Get("/admin").
		Cookies(apitest.NewCookie(CookieName).Value(token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, req *http.Request) error {
			if c := findSetCookie(res, CookieName); c != nil {
				return fmt.Errorf("no cookie should be touched outside the renew window, got %v", c)
			}
			return nil
		}).
		End()
}
