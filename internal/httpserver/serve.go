// Package httpserver runs the site's HTTP server with sane timeouts
// and a context-driven graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avelar/homebox/internal/logutil"
)

const shutdownGrace = time.Minute

// Serve blocks until ctx is cancelled or the listener fails. On
// cancellation in-flight requests get shutdownGrace to finish.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", bind).Logger()
	server := &http.Server{
		Addr:              bind,
		Handler:           handler,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       time.Minute * 5,
	}

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info().Msg("Initiating shutdown process")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		shutdownDone <- server.Shutdown(graceCtx)
	}()

	log.Info().Msg("Starting HTTP server")
	err := server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// shutdown triggered the close, surface its outcome instead
	err = <-shutdownDone
	log.Info().Msg("Shutdown completed")
	return err
}
