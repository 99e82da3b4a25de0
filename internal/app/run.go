package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/vk/girder/internal/ctxlog"
)

// Run assembles the application handler and serves it until the context is
// canceled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	handler, err := a.Handler(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctxlog.WithLogger(context.Background(), a.logger)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.Info("Server listening.", "addr", a.cfg.Addr)

	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown requested, draining connections.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
