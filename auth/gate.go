package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/avelar/homebox/internal/logutil"
)

// Route anchors the gate enforces. The gate owns these so every
// redirect decision lives in one place.
const (
	ProtectedPrefix = "/admin"
	LoginPath       = "/login"
	HomePath        = "/"
)

type (
	// Gate runs in front of every request: it resolves the session
	// cookie, attaches the caller's identity to the request context,
	// enforces the protected prefix and stamps hardening headers on
	// every response.
	Gate struct {
		sessions   *Sessions
		production bool
	}

	ctxKey byte
)

var identityKey = ctxKey(1)

func NewGate(sessions *Sessions, production bool) *Gate {
	return &Gate{sessions: sessions, production: production}
}

// WithIdentity attaches an authenticated identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the identity the gate attached, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stamped up front so redirects and error paths carry them too.
		hdr := w.Header()
		hdr.Set("X-Frame-Options", "DENY")
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		ctx := r.Context()
		var identity *Identity
		if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
			res, err := g.sessions.Resolve(ctx, cookie.Value)
			if err != nil {
				log := logutil.GetOrDefault(ctx)
				log.Error().Err(err).Msg("Unable to resolve session cookie")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if res.ClearCookie {
				http.SetCookie(w, ClearSessionCookie())
			}
			if res.Renew {
				http.SetCookie(w, SessionCookie(cookie.Value, res.NewExpiry, g.production))
			}
			if res.Identity != nil {
				identity = res.Identity
				ctx = WithIdentity(ctx, *identity)
			}
		}

		if strings.HasPrefix(r.URL.Path, ProtectedPrefix) && identity == nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		if r.URL.Path == LoginPath && identity != nil {
			// no point showing a login form to a logged-in caller
			http.Redirect(w, r, ProtectedPrefix, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
