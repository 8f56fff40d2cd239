package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "etf-adapter"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // service HTTP port

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	// Upstream sources. The fundamentals page is addressed per fund code
	// (base + CODE + market suffix); the realtime feed takes one batched query.
	FundamentalsBaseURL string
	RealtimeBaseURL     string
	UpstreamTimeout     time.Duration

	// Freshness window advertised on quote responses, in seconds.
	CacheMaxAge int
	CacheStale  int

	NATSURL         string // e.g. nats://localhost:4222
	SnapshotSubject string // NATS subject for watch snapshots

	RedisAddr   string // e.g. localhost:6379; empty selects the in-memory store
	RedisDB     int
	RedisPass   string
	SnapshotTTL time.Duration

	// Watchlist refresher. Empty WatchCodes disables the poller.
	WatchCodes    string // comma-separated fund codes
	WatchInterval time.Duration

	WSPingInterval time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:      GetEnv("SERVICE_NAME", "etf-adapter"),
		Env:              GetEnv("ENV", "dev"),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		Port:             GetEnvInt("ETF_PORT", 9020),
		HTTPReadTimeout:  GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: GetEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:  GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		FundamentalsBaseURL: GetEnv("FUNDAMENTALS_BASE_URL", "https://www.moneydj.com/ETF/X/Basic/Basic0004.xdjhtm?etfid="),
		RealtimeBaseURL:     GetEnv("REALTIME_BASE_URL", "https://mis.twse.com.tw/stock/api/getStockInfo.jsp"),
		UpstreamTimeout:     GetEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		CacheMaxAge: GetEnvInt("CACHE_MAX_AGE", 60),
		CacheStale:  GetEnvInt("CACHE_STALE_WINDOW", 300),

		NATSURL:         GetEnv("NATS_URL", "nats://localhost:4222"),
		SnapshotSubject: GetEnv("SNAPSHOT_SUBJECT", "evt.etf.snapshot.v1"),

		RedisAddr:   GetEnv("REDIS_ADDR", ""),
		RedisDB:     GetEnvInt("REDIS_DB", 0),
		RedisPass:   GetEnv("REDIS_PASS", ""),
		SnapshotTTL: GetEnvDuration("SNAPSHOT_TTL", 5*time.Minute),

		WatchCodes:    GetEnv("WATCH_CODES", ""),
		WatchInterval: GetEnvDuration("WATCH_INTERVAL", 1*time.Minute),

		WSPingInterval: GetEnvDuration("WS_PING_INTERVAL", 30*time.Second),
	}

	return cfg
}
