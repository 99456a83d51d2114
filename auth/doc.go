// Package auth implements the session and authentication core of the
// site: password login with per-address throttling and lockout,
// opaque-token sessions with sliding renewal, and the request gate
// that decides, for every inbound request, whether it carries a valid
// admin identity.
//
// Sessions are deliberately stateful. The client holds a random token
// in a cookie; the store holds only a one-way hash of that token, so a
// leaked database row can never be replayed as a valid cookie.
//
// All decision state (sessions, throttle counters) lives behind the
// Store interface. Nothing in this package keeps mutable state in
// process, which makes concurrent requests safe by construction: the
// store arbitrates every update, and the few races that remain (two
// requests expiring the same session, two failures bumping the same
// counter) only ever tighten access, never loosen it.
package auth
