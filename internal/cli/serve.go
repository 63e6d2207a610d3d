package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/draftwizard"
)

// ShutdownTimeout bounds the graceful shutdown of Serve.
const ShutdownTimeout = 5 * time.Second

// Serve runs the HTTP surface of wiz on ln until ctx is cancelled, then stops
// accepting requests and flushes every open session.
func Serve(ctx context.Context, wiz *draftwizard.Wizard, ln net.Listener, logger *slog.Logger) error {
	handler, registry := wiz.Handler()
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
		if err := srv.Close(); err != nil {
			logger.Error("failed to close http server", "err", err)
		}
	}
	if err := registry.Close(shutdownCtx); err != nil {
		logger.Error("failed to flush drafts on shutdown", "err", err)
		return err
	}
	logger.Info("http server stopped")
	return nil
}
