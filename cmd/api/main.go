package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/cache"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/config"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/dashboard"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/gecko"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/server"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/storage"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// newResponseCache builds the configured response cache; nil disables caching
func newResponseCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.ResponseCache, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		rclient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := rclient.Ping(ctx).Err(); err != nil {
			_ = rclient.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return cache.NewRedisCacheFromClient(rclient, logger), func() { _ = rclient.Close() }, nil
	case "memory":
		mem := cache.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
		if !cfg.CacheBroadcast {
			return mem, func() {}, nil
		}

		// Purges on one replica reach the others over Redis pub/sub
		rclient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		bc := cache.NewBroadcastCache(mem, rclient, logger)
		stop, err := bc.Listen(ctx)
		if err != nil {
			_ = rclient.Close()
			return nil, nil, err
		}
		return bc, func() {
			stop()
			_ = rclient.Close()
		}, nil
	}
	return nil, func() {}, nil
}

// main is the entry point for the dashboard API
// It wires the GeckoTerminal client, response cache and HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, staying at info")
	}

	nulls, err := table.ParseNullPolicy(cfg.RankNulls)
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	respCache, closeCache, err := newResponseCache(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize response cache")
	}
	defer closeCache()
	logger.WithField("backend", cfg.CacheBackend).Info("response cache ready")

	client := gecko.NewClient(gecko.ClientConfig{
		BaseURL:      cfg.GeckoBaseURL,
		APIKey:       cfg.GeckoAPIKey,
		APIKeyHeader: cfg.GeckoAPIKeyHeader,
		Cache:        respCache,
		CacheTTL:     cfg.CacheTTL,
		Logger:       logger,
	})

	svc, err := dashboard.NewService(dashboard.Config{
		Upstream:    client,
		Cache:       respCache,
		Nulls:       nulls,
		TopN:        cfg.TopN,
		RankColumn:  cfg.RankColumn,
		TxWindow:    cfg.TxWindow,
		ProbeImages: cfg.ProbeImages,
		Logger:      logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create dashboard service")
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Dashboard: svc,
		Nulls:     nulls,
		Timeout:   cfg.UpstreamTimeout,
		DevMode:   cfg.DevMode,
		Logger:    logger,
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:         cfg.APIAddr,
			DevMode:      cfg.DevMode,
			APIKey:       cfg.APIKey,
			WriteTimeout: cfg.UpstreamTimeout + 30*time.Second,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() != "http: Server closed" {
			logger.WithError(err).Fatal("api server failed")
		}
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
