package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fundlens/etf-adapter/internal/store"
	"github.com/fundlens/etf-adapter/internal/ws"
)

func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store,
	quoteHandler *QuoteHandler,
	hub *ws.Hub,
	serviceName string,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check. A nil NATS connection means eventing is disabled by
	// configuration, which is healthy; a configured-but-lost connection is
	// degraded.
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "ok",
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc == nil {
			checks["nats"] = "disabled"
		} else if !nc.IsConnected() {
			checks["nats"] = "disconnected"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
			checks["nats"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":  status,
			"service": serviceName,
			"time":    time.Now().UTC(),
			"checks":  checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")
	v1.Get("/quotes", quoteHandler.GetQuotesHandler)
	v1.Get("/watchlist/latest", quoteHandler.LatestWatchlistHandler)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/watch", hub.Handler())
}
