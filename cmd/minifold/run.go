package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/minifold/minifold/internal/logger"
	"github.com/minifold/minifold/internal/telemetry"
	"github.com/minifold/minifold/pkg/asset/dirstore"
	"github.com/minifold/minifold/pkg/cache"
	"github.com/minifold/minifold/pkg/config"
	"github.com/minifold/minifold/pkg/metrics"
	"github.com/minifold/minifold/pkg/minify/jsmin"
	"github.com/minifold/minifold/pkg/optimize"

	// Import prometheus metrics to register init() functions
	_ "github.com/minifold/minifold/pkg/metrics/prometheus"
)

// runtime holds everything a run needs after setup.
type runtime struct {
	cfg       *config.Config
	optimizer *optimize.Optimizer
	cache     cache.Cache
	shutdown  func(context.Context)
}

// setup loads configuration and builds the optimizer with its cache,
// metrics and telemetry. Configuration problems are fatal here, before any
// asset is touched.
func setup(configFile, rootOverride string) (*runtime, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if rootOverride != "" {
		cfg.Assets.Root = rootOverride
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       true,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = &http.Server{Addr: cfg.Metrics.Listen, Handler: metrics.Handler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", logger.Err(err))
			}
		}()
		logger.Info("Metrics enabled", "listen", cfg.Metrics.Listen)
	}

	resultCache, cacheName, err := openCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	logger.Info("Result cache selected", logger.KeyCacheName, cacheName)

	optimizer, err := optimize.New(cfg.OptimizerConfig(), jsmin.New(),
		optimize.WithCache(resultCache),
		optimize.WithMetrics(metrics.NewOptimizerMetrics()),
	)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:       cfg,
		optimizer: optimizer,
		cache:     resultCache,
		shutdown: func(ctx context.Context) {
			if metricsServer != nil {
				_ = metricsServer.Shutdown(ctx)
			}
			if err := resultCache.Close(); err != nil {
				logger.Error("Cache shutdown error", logger.Err(err))
			}
			if err := telemetryShutdown(ctx); err != nil {
				logger.Error("Telemetry shutdown error", logger.Err(err))
			}
		},
	}, nil
}

func openCache(cfg config.CacheConfig) (cache.Cache, string, error) {
	if !cfg.Enabled {
		return cache.Nop{}, "off", nil
	}
	bdg, err := cache.NewBadger(cfg.Dir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open result cache: %w", err)
	}
	return bdg, "badger", nil
}

// optimizeOnce runs one optimization pass over the configured asset root.
func optimizeOnce(ctx context.Context, rt *runtime) (*optimize.RunResult, error) {
	runID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, "minifold.run")
	defer span.End()

	store, err := dirstore.New(rt.cfg.Assets.Root)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting optimization run",
		logger.RunID(runID),
		logger.KeyPath, rt.cfg.Assets.Root)

	result, err := rt.optimizer.Run(ctx, store)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return result, err
	}

	for _, runErr := range result.Errors {
		logger.Error("Asset optimization failed", logger.RunID(runID), logger.Err(runErr))
	}
	return result, nil
}

// printSummary renders the run outcome as a table on stdout.
func printSummary(result *optimize.RunResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.Append([]string{"Optimized", fmt.Sprintf("%d", len(result.Optimized))})
	table.Append([]string{"Skipped", fmt.Sprintf("%d", len(result.Skipped))})
	table.Append([]string{"Cache hits", fmt.Sprintf("%d", result.CacheHits)})
	table.Append([]string{"Failures", fmt.Sprintf("%d", len(result.Errors))})
	table.Append([]string{"Bytes in", fmt.Sprintf("%d", result.BytesIn)})
	table.Append([]string{"Bytes out", fmt.Sprintf("%d", result.BytesOut)})
	table.Append([]string{"Duration", result.Duration.Round(time.Millisecond).String()})
	table.Render()
}

// runOnce handles the run subcommand
func runOnce() {
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	configFile := runFlags.String("config", "", "Path to config file")
	root := runFlags.String("root", "", "Asset directory, overriding the configured one")
	if err := runFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	rt, err := setup(*configFile, *root)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}

	ctx := context.Background()
	result, err := optimizeOnce(ctx, rt)
	rt.shutdown(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	printSummary(result)
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
