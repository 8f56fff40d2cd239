package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/fundlens/etf-adapter/internal/api"
	"github.com/fundlens/etf-adapter/internal/etf"
	"github.com/fundlens/etf-adapter/internal/publisher"
	"github.com/fundlens/etf-adapter/internal/store"
	"github.com/fundlens/etf-adapter/internal/watch"
	"github.com/fundlens/etf-adapter/internal/ws"
	"github.com/fundlens/etf-adapter/pkg/config"
	"github.com/fundlens/etf-adapter/pkg/eventbus"
	"github.com/fundlens/etf-adapter/pkg/logger"
	"github.com/fundlens/etf-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()
	cfg.ServiceName = "etf-adapter"

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [etf-adapter]...")

	// --- Snapshot store (Redis when configured, in-memory otherwise) ---
	var st store.Store
	if cfg.RedisAddr != "" {
		redisStore, err := store.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.SnapshotTTL, logger.L())
		if err != nil {
			logg.Fatalw("failed to init store", "error", err)
		}
		st = redisStore
	} else {
		st = store.NewMemory(cfg.SnapshotTTL)
		logg.Warn("REDIS_ADDR not configured; using in-memory snapshot store")
	}

	// --- Connect to NATS (optional; snapshot events are best effort) ---
	var nc *nats.Conn
	var pub *publisher.Publisher
	if cfg.NATSURL != "" {
		logg.Info("connecting to NATS: ", utils.MaskDSN(cfg.NATSURL))
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Warnw("failed to connect to NATS; snapshot events disabled",
				"url", utils.MaskDSN(cfg.NATSURL),
				"error", err)
		} else {
			nc = conn
			pub, err = publisher.New(nc, cfg.SnapshotSubject, cfg.ServiceName)
			if err != nil {
				logg.Warnw("failed to init publisher; snapshot events disabled", "error", err)
			}
		}
	} else {
		logg.Warn("NATS_URL not configured; snapshot events disabled")
	}

	// --- Upstream clients + quote service ---
	fundamentals := etf.NewFundamentalsClient(logger.L(), cfg.FundamentalsBaseURL, cfg.UpstreamTimeout)
	realtime := etf.NewRealtimeClient(logger.L(), cfg.RealtimeBaseURL, cfg.UpstreamTimeout)
	quoteSvc := etf.NewService(logger.L(), fundamentals, realtime)

	// --- WebSocket hub ---
	hub := ws.NewHub(logger.L(), cfg.WSPingInterval)
	go hub.Run(ctx)

	// --- Event bus: fan refreshed snapshots out to store, hub and NATS ---
	bus := eventbus.New()
	bus.SubscribeFunc(func(ev watch.SnapshotRefreshedEvent) {
		hub.Broadcast(ev.Snapshot)
	})
	bus.SubscribeFunc(func(ev watch.SnapshotRefreshedEvent) {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.SaveSnapshot(saveCtx, ev.Snapshot); err != nil {
			logg.Warnw("failed to persist watch snapshot", "error", err)
		}
	})
	if pub != nil {
		bus.SubscribeFunc(func(ev watch.SnapshotRefreshedEvent) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = pub.PublishSnapshot(pubCtx, ev.Snapshot)
		})
	}

	// --- Watchlist poller ---
	var poller *watch.Poller
	if cfg.WatchCodes != "" {
		codes := etf.ParseCodes(cfg.WatchCodes)
		poller = watch.NewPoller(logger.L(), quoteSvc, bus, codes, cfg.WatchInterval)
		go poller.Start(ctx)
	} else {
		logg.Warn("WATCH_CODES not configured; watchlist polling disabled")
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	quoteHandler := api.NewQuoteHandler(logger.L(), quoteSvc, st, cfg.CacheMaxAge, cfg.CacheStale)
	api.RegisterRoutes(app, nc, st, quoteHandler, hub, cfg.ServiceName)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Main process stays alive until interrupted ---
	logg.Infow("[etf-adapter] running",
		"env", cfg.Env,
		"watch_codes", cfg.WatchCodes,
		"watch_interval", cfg.WatchInterval)

	<-ctx.Done()
	logg.Info("shutting down [etf-adapter]...")

	if poller != nil {
		poller.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
