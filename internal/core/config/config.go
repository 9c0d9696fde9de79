// Package config reads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	GroupID string
}

type Config struct {
	Addr     string
	LogLevel string

	// Clustering engine tuning.
	ClusterRadiusDeg float64
	CellRes          int

	// Upload limits.
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int

	// Composition memoization (optional external layer over the pure core).
	MemoEnabled bool
	MemoLRUSize int
	MemoTTL     time.Duration
	RedisAddr   string

	Invalidation InvalidationCfg
}

func FromEnv() Config {
	res := getint("CELL_RES", 6)
	if res < 0 {
		res = 0
	}
	if res > 15 {
		res = 15
	}

	return Config{
		Addr:             getenv("ADDR", ":8090"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		ClusterRadiusDeg: getfloat("CLUSTER_RADIUS_DEG", 0.05),
		CellRes:          res,
		MaxUploadBytes:   getint64("MAX_UPLOAD_BYTES", 32<<20),
		RateLimitRPS:     getfloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   getint("RATE_LIMIT_BURST", 10),
		MemoEnabled:      getbool("MEMO_ENABLED", false),
		MemoLRUSize:      getint("MEMO_LRU_SIZE", 256),
		MemoTTL:          getduration("MEMO_TTL", 10*time.Minute),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "dataset-invalidation"),
			GroupID: getenv("KAFKA_GROUP_ID", "geolayers-invalidator"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		return strings.ToLower(strings.TrimSpace(v)) == "true"
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
