package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/kickhub/internal/adapters/http/api"
	"github.com/okian/kickhub/internal/adapters/http/site"
	"github.com/okian/kickhub/internal/adapters/http/swagger"
	"github.com/okian/kickhub/internal/adapters/http/ws"
	"github.com/okian/kickhub/internal/adapters/mcpserver"
	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/adapters/stadium"
	"github.com/okian/kickhub/internal/adapters/transport"
	app "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/config"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

var version = "dev"

func main() {
	// We collect our own system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	lg := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		lg.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(ctx, cfg, lg)
	if err != nil {
		lg.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		lg.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop(context.Background())

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	hub := ws.NewHub(svc, ws.WithCheckOrigin(originChecker(cfg.CORSAllowedOrigins)))
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, hub),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		lg.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("transport", cfg.Transport))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	lg.Info(ctx, "server stopped")
}

// buildService opens the configured transport, store and stadium geometry
// and wires them into a service.
func buildService(ctx context.Context, cfg *config.Config, lg logger.Logger) (*app.Service, error) {
	log, err := openLog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	stadiums := stadium.NewProvider()
	if cfg.StadiumsPath != "" {
		if stadiums, err = stadium.Load(cfg.StadiumsPath); err != nil {
			_ = log.Close()
			_ = store.Close()
			return nil, fmt.Errorf("load stadiums: %w", err)
		}
	}

	return app.New(
		app.WithLogger(lg.Named("service")),
		app.WithLog(log),
		app.WithStore(store),
		app.WithStadiums(stadiums),
		app.WithTickInterval(cfg.TickInterval()),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLegacyZeroSwallow(cfg.LegacyZeroSwallow),
		app.WithTiesAsWins(cfg.TiesCountAsWins),
		app.WithTopTeammates(cfg.TopTeammates),
		app.WithMaxNameChars(cfg.MaxNameChars),
	), nil
}

func openLog(ctx context.Context, cfg *config.Config) (transport.Log, error) {
	if cfg.Transport != config.TransportMQTT {
		return transport.NewMemoryLog(), nil
	}
	l, err := transport.DialMQTT(ctx, transport.MQTTConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	}, transport.WithTopicPrefix(cfg.MQTTTopicPrefix))
	if err != nil {
		return nil, fmt.Errorf("dial mqtt: %w", err)
	}
	return l, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.StorePath == "" {
		return repository.NewMemoryStore(), nil
	}
	st, err := repository.OpenSQLite(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newHandler mounts every HTTP surface on one mux and wraps it with CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, hub *ws.Hub) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	ws.Register(ctx, mux, hub)
	if cfg.MCPEnabled {
		mux.Handle("/mcp", mcpserver.Handler(mcpserver.NewServer(svc, version)))
	}
	site.Register(ctx, mux)

	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Mcp-Session-Id"},
	}).Handler(mux)
}

// originChecker accepts websocket upgrades from the configured CORS origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

func updateServiceMetrics(svc *app.Service) {
	// GetStats refreshes the gauges it reports on.
	stats := svc.GetStats()
	if n, ok := stats["activeSessions"].(int); ok {
		metrics.UpdateActiveSessions(n)
	}
	if n, ok := stats["comparisons"].(int); ok {
		metrics.UpdateComparisons(n)
	}
}
