package logutil

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// RequestLogger injects a request-scoped logger into the request context
// so downstream handlers can pick it up with GetOrDefault.
//
// Only the method and path are recorded here; cookie and form values
// must never become log fields.
func RequestLogger(base zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := base.With().
			Str("http.method", r.Method).
			Str("http.path", r.URL.Path).
			Logger()
		next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
	})
}
