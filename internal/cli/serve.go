package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/turing/internal/config"
	httpAdapter "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// NewServer builds the HTTP server from the config without starting it.
// The returned close function releases the session store.
func NewServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	eng, err := NewEngine(cfg, logger, domain.MachineHooks{})
	if err != nil {
		return nil, nil, err
	}

	var hooks domain.MachineHooks
	var opts []httpAdapter.Option
	opts = append(opts, httpAdapter.WithLogger(logger))

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector, err := metrics.New(reg)
		if err != nil {
			return nil, nil, err
		}
		hooks = collector.Hooks()
		opts = append(opts,
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithErrorRecorder(collector),
		)
	}

	mgr, closeStore, err := NewSessionManager(cfg, eng.Loader(), logger, hooks)
	if err != nil {
		return nil, nil, err
	}

	api := httpAdapter.NewServer(mgr, opts...)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not wait for hijacked connections; tell WebSocket streams to close.
	srv.RegisterOnShutdown(api.Close)
	return srv, closeStore, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, w io.Writer, cfg config.Config, logger *slog.Logger) error {
	srv, closeStore, err := NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close session store", "err", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Starting Turing Server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(w, "Turing Server stopped gracefully")
		return nil
	}
}
