package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/skytagbot/skytag/internal/config"
	dbRedis "github.com/skytagbot/skytag/internal/db/redis"
	logpkg "github.com/skytagbot/skytag/internal/logger"
	"github.com/skytagbot/skytag/internal/metrics"
	"github.com/skytagbot/skytag/internal/ocr"
	"github.com/skytagbot/skytag/internal/repository/dedup"
	"github.com/skytagbot/skytag/internal/transport/flightdata"
	"github.com/skytagbot/skytag/internal/transport/ops"
	"github.com/skytagbot/skytag/internal/transport/reddit"
	healthuc "github.com/skytagbot/skytag/internal/usecase/health"
	scanuc "github.com/skytagbot/skytag/internal/usecase/scan"
	"github.com/skytagbot/skytag/internal/version"
)

// dedupStore is the common surface of both dedup backends.
type dedupStore interface {
	Load(ctx context.Context) (int, error)
	Contains(ctx context.Context, id string) (bool, error)
	Record(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting skytag bot",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("subreddit", cfg.Feed.Subreddit),
		zap.String("dedup_backend", cfg.Dedup.Backend),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx := context.Background()

	// Redis is optional: only the redis dedup backend and the enrichment
	// cache need it.
	var store *dbRedis.Store
	if cfg.Dedup.Backend == "redis" || cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
	}

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	var processed dedupStore
	switch cfg.Dedup.Backend {
	case "redis":
		processed = dedup.NewRedisStore(store)
	default:
		processed = dedup.NewFileStore(cfg.Dedup.Path)
	}
	count, err := processed.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load processed posts", zap.Error(err))
	}
	logger.Info("Loaded processed posts", zap.Int("count", count))

	// OCR pipeline
	engine := ocr.NewTesseractEngine(cfg.OCR.TessdataPrefix)
	extractor := ocr.NewExtractor(engine, &http.Client{
		Timeout: time.Duration(cfg.OCR.FetchTimeoutSec) * time.Second,
	})

	// Flight status lookup, optionally backed by the redis cache
	renderer := flightdata.NewChromeRenderer(
		time.Duration(cfg.FlightData.RenderWaitSec)*time.Second,
		time.Duration(cfg.FlightData.SettleDelaySec)*time.Second,
	)
	lookup := flightdata.NewLookup(cfg.FlightData.BaseURL, renderer, logger)
	if cfg.Cache.Enabled {
		lookup = lookup.WithCache(store, time.Duration(cfg.Cache.TTLSec)*time.Second)
	}

	// Post source and reply publisher share one authenticated client
	redditClient := reddit.NewClient(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		Username:     cfg.Reddit.Username,
		Password:     cfg.Reddit.Password,
		UserAgent:    cfg.Reddit.UserAgent,
	}, nil, logger)

	scanSvc := scanuc.New(
		scanuc.Config{
			Subreddit: cfg.Feed.Subreddit,
			Limit:     cfg.Feed.Limit,
			MaxAge:    time.Duration(cfg.Feed.MaxAgeHour) * time.Hour,
		},
		redditClient, extractor, lookup, redditClient, processed, logger,
	)

	// Health service. Pass nil interface (not typed nil pointer!) when redis
	// is not configured. Go gotcha: (*Store)(nil) wrapped in DBPinger != nil.
	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}
	healthSvc := healthuc.New(processed, dbPinger)

	// Ops HTTP server (health + metrics)
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      ops.NewServer(healthSvc, logger).Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting ops HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	scanCtx, cancelScan := context.WithCancel(ctx)
	defer cancelScan()

	done := runScanLoop(scanCtx, scanSvc, cfg.Scan, logger)

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
		cancelScan()
		<-done
	case <-done:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Bot stopped gracefully")
}

// runScanLoop runs batches until the context is cancelled. With a zero
// interval it runs a single batch and closes the returned channel.
func runScanLoop(ctx context.Context, svc *scanuc.Service, cfg config.ScanConfig, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		if err := svc.ProcessBatch(ctx); err != nil {
			logger.Error("Batch failed", zap.Error(err))
		}
		if cfg.IntervalSec <= 0 {
			return
		}

		ticker := time.NewTicker(time.Duration(cfg.IntervalSec) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := svc.ProcessBatch(ctx); err != nil {
					logger.Error("Batch failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}
