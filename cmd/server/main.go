// Command server runs the Brain MCP adapter: MCP tools backed by the Brain
// knowledge-store API, served over stdio or streamable HTTP with the
// auto-approval OAuth surface remote clients expect.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greghughespdx/brain-mcp-server/internal/brain"
	"github.com/greghughespdx/brain-mcp-server/internal/config"
	"github.com/greghughespdx/brain-mcp-server/internal/mcp"
	"github.com/greghughespdx/brain-mcp-server/internal/oauthstub"
	"github.com/greghughespdx/brain-mcp-server/internal/obs"
	"github.com/greghughespdx/brain-mcp-server/internal/ratelimit"
)

const shutdownGrace = 10 * time.Second

func main() {
	addr, stdio := config.ParseFlags()
	cfg := config.MustLoadConfig(addr, stdio)

	obs.Init()
	logger := obs.Pkg("main")

	client := brain.NewClient(cfg.APIBase, cfg.APITimeout)
	server := mcp.NewServer(client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.PrintStartupSummary()

	if cfg.Transport == config.TransportStdio {
		if err := server.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("stdio_transport_failed", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	handler, cleanup := newRootHandler(cfg, server)
	defer cleanup()

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", cfg.ListenAddr(), "base_url", cfg.BaseURL, "oauth_enabled", cfg.OAuthEnabled)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_serve_failed", "error", err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown_incomplete", "error", err.Error())
		}
	}
}

// newRootHandler wires the HTTP surface: health check, the OAuth stub when
// enabled, and the rate-limited MCP endpoint. The returned cleanup stops the
// limiter's background goroutine.
func newRootHandler(cfg *config.Config, server *mcp.Server) (http.Handler, func()) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.OAuthEnabled {
		oauthstub.NewServer(cfg.BaseURL).RegisterRoutes(mux)
	}

	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	mux.Handle("/mcp", ratelimit.Middleware(limiter, ratelimit.ClientKey)(server))

	handler := obs.RequestContextMiddleware(obs.AccessLogMiddleware("http", mux))
	return handler, limiter.Stop
}
