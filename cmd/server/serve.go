package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/warp/naturalization-engine/api"
	"github.com/warp/naturalization-engine/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the eligibility watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}

	cmd.Flags().Int("port", 8080, "HTTP server port")
	cmd.Flags().Duration("watch-interval", api.DefaultCheckInterval, "How often the watcher re-evaluates eligibility (0 to disable)")
	cmd.Flags().StringSlice("allowed-origins", api.DefaultAllowedOrigins, "CORS allowed origins")
	return cmd
}

func (a *app) serve() error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := api.NewHandler(store, metrics.New(reg), log)
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: a.v.GetStringSlice("allowed-origins"),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	watcher := api.NewEligibilityWatcher(handler)
	if interval := a.v.GetDuration("watch-interval"); interval > 0 {
		watcher.CheckInterval = interval
	} else {
		watcher.Enabled = false
	}
	watcher.Start()

	port := a.v.GetInt("port")
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on http://localhost:%d", port)
		log.Infof("API available at http://localhost:%d/api", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		watcher.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down server...")
	watcher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
