package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/cupstats/internal/adapters/http/api"
	"github.com/okian/cupstats/internal/adapters/http/swagger"
	"github.com/okian/cupstats/internal/adapters/mcp"
	"github.com/okian/cupstats/internal/adapters/repository"
	app "github.com/okian/cupstats/internal/app"
	"github.com/okian/cupstats/internal/config"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/pkg/logger"
	"github.com/okian/cupstats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Switch to the configured handler format
	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "invalid dataset source", logger.Error(err))
		return
	}

	svc := app.New(
		app.WithStore(store),
		app.WithLogger(loggerInstance.Named("service")),
		app.WithPredictionYears(cfg.DefaultPredictionYear, cfg.MinPredictionYear, cfg.MaxPredictionYear),
	)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// openStore selects the dataset source named by the configuration.
func openStore(cfg *config.Config, log logger.Logger) (repository.Store, error) {
	location := cfg.DataDir
	if cfg.Source == config.SourcePostgres {
		location = cfg.PostgresDSN
	}
	return repository.Open(cfg.Source, location,
		repository.WithGoalEventsOnly(true),
		repository.WithLogger(log.Named("repository")),
	)
}

// newRouter mounts the API, the docs and, when configured, the MCP endpoint.
// Register installs the request id middleware for every route.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *mux.Router {
	r := mux.NewRouter()

	swagger.Register(ctx, r)

	if cfg.MCPPath != "" {
		server := mcp.NewServer(svc, mcp.WithLogger(log.Named("mcp")))
		r.Handle(cfg.MCPPath, mcp.Handler(server))
	}

	api.NewServer(svc, svc, app.IsInvalidRequest).Register(ctx, r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
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

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
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

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes the dataset row gauges from the service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	rows := map[string]string{
		"editions":    aggregate.DatasetEditions,
		"matches":     aggregate.DatasetMatches,
		"appearances": aggregate.DatasetAppearances,
	}
	for key, name := range rows {
		if n, ok := stats[key].(int); ok {
			metrics.UpdateDatasetRows(name, n)
		}
	}
}
