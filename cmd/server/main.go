package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mateonav/geolayers/internal/core/config"
	"github.com/mateonav/geolayers/internal/core/health"
	"github.com/mateonav/geolayers/internal/core/observability"
	"github.com/mateonav/geolayers/internal/core/server"
	"github.com/mateonav/geolayers/internal/invalidation/kafkaconsumer"
	"github.com/mateonav/geolayers/internal/logger"
	"github.com/mateonav/geolayers/internal/memo"
	"github.com/mateonav/geolayers/internal/memo/redisstore"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		SampleN:   envInt("LOG_SAMPLE_N", 0),
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting geolayers",
		"addr", cfg.Addr,
		"version", Version,
		"memo", cfg.MemoEnabled,
		"invalidation", cfg.Invalidation.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mz *memo.Memoizer
	if cfg.MemoEnabled {
		if cfg.RedisAddr != "" {
			store, err := redisstore.New(ctx, cfg.RedisAddr)
			if err != nil {
				appLog.Error("redis memo store setup failed", "err", err)
				return 1
			}
			defer func() { _ = store.Close() }()
			mz = memo.New(store, cfg.MemoTTL)
			appLog.Info("memoization enabled", "store", "redis", "addr", cfg.RedisAddr)
		} else {
			mz = memo.New(memo.NewLRU(cfg.MemoLRUSize), cfg.MemoTTL)
			appLog.Info("memoization enabled", "store", "lru", "size", cfg.MemoLRUSize)
		}
	}

	var rr health.ReadinessReporter
	if cfg.Invalidation.Enabled {
		if mz == nil {
			appLog.Error("invalidation requires memoization (set MEMO_ENABLED=true)")
			return 1
		}
		kcfg := kafkaconsumer.FromEnv()
		consumer := kafkaconsumer.New(kcfg, appLog, mz)
		rr = consumer
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("invalidation consumer exited", "err", err)
				stop()
			}
		}()
	}

	handler := server.NewHandler(cfg, appLog, mz, rr)
	if err := server.Run(ctx, cfg, appLog, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
