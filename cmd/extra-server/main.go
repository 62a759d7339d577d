// Command extra-server is a minimal example binary demonstrating the
// httpserver/httpwire core wired to process environment configuration
// (spec.md §6's CLI surface). Routing, CORS, templating and the other
// out-of-scope collaborators named in spec.md §1 are deliberately absent;
// this binary exists to exercise the core, not to be a framework.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sebastien/extra/internal/envconfig"
	"github.com/sebastien/extra/pkg/extra/httpserver"
	"github.com/sebastien/extra/pkg/extra/httpwire"
)

func main() {
	cfg, err := envconfig.Load()
	if err != nil {
		panic(err)
	}

	logger := httpserver.NewLogger(cfg.LogOutput)
	defer logger.Sync()

	handler := func(w *httpwire.ResponseWriter, r *httpwire.Request) {
		switch r.Path() {
		case "/health":
			w.WriteText(200, []byte("ok"))
		default:
			w.WriteError(404, "not found")
		}
	}

	srv := httpserver.NewServer(httpserver.Config{
		Addr:    cfg.Addr(),
		Handler: handler,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("listening", zap.String("addr", cfg.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}
}
