package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reid-dashboard/internal/cleanup"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/database"
	"reid-dashboard/internal/handlers"
	"reid-dashboard/internal/proxy"
	"reid-dashboard/internal/ratelimit"
	"reid-dashboard/internal/scheduler"
	"reid-dashboard/internal/server"
	"reid-dashboard/internal/views"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a)
		},
	}
}

// newProxy wires the page fetchers; headless rendering is opt-in
func newProxy(a *app) *proxy.Handler {
	pc := a.cfg.Proxy
	fetcher := proxy.NewHTTPFetcher(pc.UserAgent, pc.GetTimeout())

	var renderer proxy.Fetcher
	if pc.RenderEnabled {
		renderer = proxy.NewBrowserFetcher(pc.ChromePath, pc.UserAgent, pc.GetRenderWait())
		log.Printf("Headless rendering enabled (chrome: %s)", pc.ChromePath)
	}
	return proxy.NewHandler(fetcher, renderer, a.cfg.Dashboard.TitleBatchSize)
}

func runServe(cmd *cobra.Command, a *app) error {
	cfg := a.cfg

	actions, err := database.Open(cfg.Database, cfg.Logging.Level == "debug")
	if err != nil {
		return err
	}
	defer actions.Close()

	api := a.backendClient()
	log.Printf("Backend API at %s", api.BaseURL())

	limiter := ratelimit.NewRateLimiter(
		cfg.RateLimit.RequestsPerMinute,
		cfg.RateLimit.RequestsPerHour,
		cfg.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RequestsPerHour, cfg.RateLimit.Enabled)

	sessions := dashboard.NewSessionStore(cfg.Dashboard.GetSessionTTL())
	chart := dashboard.NewChartCache(api)
	px := newProxy(a)

	appScheduler := scheduler.NewScheduler(cfg, scheduler.Jobs{
		Chart:    chart,
		Sessions: sessions,
		Limiter:  limiter,
		Cleanup:  cleanup.NewService(actions),
	})
	if err := appScheduler.Start(); err != nil {
		return err
	}
	defer appScheduler.Stop()

	router := server.NewRouter(cfg, server.Deps{
		Pages:    handlers.NewPageHandler(api, chart, px.Loader(), actions, views.NewRenderer()),
		Admin:    handlers.NewAdminHandler(actions, sessions, limiter, appScheduler, cfg.Dashboard.ActivityLimit),
		Proxy:    px,
		Sessions: sessions,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}
