// Package site wires the public homepage, the login surface and the
// admin panel into one http.Handler, with the auth gate in front of
// every route.
package site

import (
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/julienschmidt/httprouter"

	"github.com/avelar/homebox/auth"
	"github.com/avelar/homebox/auth/passwd"
	"github.com/avelar/homebox/sitedb"
)

type (
	Config struct {
		// Production switches Secure cookies on.
		Production bool
		// TrustProxy makes the first X-Forwarded-For hop the client
		// address for throttling. Only enable behind a proxy you own,
		// otherwise callers pick their own throttle bucket.
		TrustProxy bool
	}

	Site struct {
		db    *sitedb.DB
		flow  *auth.Flow
		gate  *auth.Gate
		cfg   Config
		tmpl  *template.Template
		cache *bigcache.BigCache
	}
)

func New(db *sitedb.DB, hasher *passwd.Hasher, cfg Config) (*Site, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("unable to parse site templates, cause %w", err)
	}
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(10 * time.Minute))
	if err != nil {
		return nil, fmt.Errorf("unable to create render cache, cause %w", err)
	}
	flow := auth.NewFlow(db, hasher)
	return &Site{
		db:    db,
		flow:  flow,
		gate:  auth.NewGate(flow.Sessions(), cfg.Production),
		cfg:   cfg,
		tmpl:  tmpl,
		cache: cache,
	}, nil
}

// Handler returns the full route table behind the auth gate.
func (s *Site) Handler() http.Handler {
	router := httprouter.New()
	router.HandlerFunc("GET", "/", s.homePage)
	router.HandlerFunc("GET", "/api/hero.json", s.heroJSON)
	router.HandlerFunc("GET", "/login", s.loginPage)
	router.HandlerFunc("POST", "/login", s.loginAction)
	router.HandlerFunc("GET", "/logout", s.logoutAction)
	router.HandlerFunc("GET", "/admin", s.adminPage)
	router.HandlerFunc("POST", "/admin", s.adminSave)
	return s.gate.Wrap(router)
}

func clientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if i := strings.IndexByte(fwd, ','); i >= 0 {
				fwd = fwd[:i]
			}
			return strings.TrimSpace(fwd)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
