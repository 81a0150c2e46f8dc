package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wikigame/internal/api"
	"wikigame/pkg/apisession"
	"wikigame/pkg/articleproc"
	"wikigame/pkg/cache"
	"wikigame/pkg/config"
	"wikigame/pkg/db"
	"wikigame/pkg/db/maintenance"
	"wikigame/pkg/game"
	"wikigame/pkg/logging"
	"wikigame/pkg/navigation"
	"wikigame/pkg/probe"
	"wikigame/pkg/request"
	"wikigame/pkg/session"
	"wikigame/pkg/tracker"
	"wikigame/pkg/version"
	"wikigame/pkg/wikipedia"
)

const (
	maintenanceInterval = time.Hour
	janitorInterval     = 5 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), configPath)
	},
}

func run(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("wikigame Started", "version", version.Version, "language", appCfg.Wikipedia.Language)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	maintenance.Run(ctx, dbConn, maintenance.DefaultMaxAge)
	go maintenance.Loop(ctx, dbConn, maintenanceInterval, maintenance.DefaultMaxAge)

	var cacher cache.Cacher
	if appCfg.Cache.Enabled {
		cacher = cache.NewSQLiteCache(dbConn, appCfg.Cache.TTL.Std())
	}
	tr := tracker.New()
	reqClient := newRequestClient(appCfg, cacher, tr)
	defer reqClient.Close()
	wp := newWikipediaClient(appCfg, reqClient)

	if err := probe.AnalyzeResults(probe.Run(ctx, startupProbes(dbConn, cacher, wp))); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	clicks, err := navigation.NewInterceptor(wp.BaseURL())
	if err != nil {
		return fmt.Errorf("failed to initialize click interceptor: %w", err)
	}

	sanitizer := articleproc.New(wp.BaseURL())
	gameCfg := game.Config{
		BaseURL:        wp.BaseURL(),
		CandidateLimit: appCfg.Game.CandidateLimit,
		GoalPoints:     appCfg.Game.GoalPoints,
		FetchTimeout:   appCfg.Game.FetchTimeout.Std(),
		StartAttempts:  appCfg.Game.StartAttempts,
	}
	sessions := apisession.New(appCfg.Game.SessionTTL.Std(), func(id string) *game.Session {
		slog.Info("New game session", "id", id)
		return game.NewSession(wp, sanitizer, session.NewManager(), gameCfg)
	})
	go sessions.Janitor(ctx, janitorInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(appCfg.Server.Address,
		api.NewGameHandler(sessions, clicks),
		api.NewSummaryHandler(wp, appCfg.Game.FetchTimeout.Std()),
		api.NewStatsHandler(tr, sessions),
		api.NewConfigHandler(appCfg),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

// startupProbes checks storage before serving. The encyclopedia probe is
// advisory: the game reports fetch failures per move anyway.
func startupProbes(d *db.DB, c cache.Cacher, wp *wikipedia.Client) []probe.Probe {
	probes := []probe.Probe{
		{Name: "database", Check: d.PingContext, Critical: true},
		{Name: "wikipedia", Check: func(ctx context.Context) error {
			_, err := wp.RandomArticle(ctx)
			return err
		}},
	}
	if c != nil {
		probes = append(probes, probe.Probe{Name: "cache", Critical: true, Check: func(ctx context.Context) error {
			const key = "probe:roundtrip"
			want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
			if err := c.SetCache(ctx, key, want); err != nil {
				return err
			}
			got, ok := c.GetCache(ctx, key)
			if !ok || string(got) != string(want) {
				return errors.New("cache read-back mismatch")
			}
			return nil
		}})
	}
	return probes
}

func newRequestClient(cfg *config.Config, c cache.Cacher, tr *tracker.Tracker) *request.Client {
	return request.New(c, tr, request.ClientConfig{
		Retries:   cfg.Request.Retries,
		Timeout:   cfg.Request.Timeout.Std(),
		BaseDelay: cfg.Request.Backoff.BaseDelay.Std(),
		MaxDelay:  cfg.Request.Backoff.MaxDelay.Std(),
		UserAgent: cfg.Request.UserAgent,
		Gap:       cfg.Request.Gap.Std(),
	})
}

func newWikipediaClient(cfg *config.Config, rc *request.Client) *wikipedia.Client {
	wp := wikipedia.NewClient(rc, cfg.Wikipedia.BaseURL())
	if cfg.Wikipedia.Endpoint != "" {
		wp.APIEndpoint = cfg.Wikipedia.Endpoint
	}
	return wp
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
