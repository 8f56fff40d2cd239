package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/internal/metrics"
	"github.com/fundlens/etf-adapter/pkg/model"
)

// writeWait bounds how long a single frame write may take before the client
// is considered dead.
const writeWait = 10 * time.Second

// conn is the subset of *websocket.Conn the hub needs.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub fans watchlist snapshots out to connected websocket subscribers.
// The client set is owned by the Run loop; everything else talks to it
// through channels.
type Hub struct {
	logger    *zap.Logger
	pingEvery time.Duration

	register   chan conn
	unregister chan conn
	broadcast  chan []byte
	done       chan struct{}

	clients map[conn]bool
	count   int64
}

func NewHub(logger *zap.Logger, pingEvery time.Duration) *Hub {
	if pingEvery <= 0 {
		pingEvery = 30 * time.Second
	}
	return &Hub{
		logger:     logger,
		pingEvery:  pingEvery,
		register:   make(chan conn),
		unregister: make(chan conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		clients:    make(map[conn]bool),
	}
}

// Run serves the hub until ctx is canceled. Must run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			metrics.AddWSClient()
			atomic.StoreInt64(&h.count, int64(len(h.clients)))
			h.logger.Info("ws.client_connected", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			h.drop(c)
			atomic.StoreInt64(&h.count, int64(len(h.clients)))

		case data := <-h.broadcast:
			for c := range h.clients {
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
					h.logger.Warn("ws.write_failed", zap.Error(err))
					h.drop(c)
				}
			}
			atomic.StoreInt64(&h.count, int64(len(h.clients)))

		case <-ticker.C:
			for c := range h.clients {
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					h.drop(c)
				}
			}
			atomic.StoreInt64(&h.count, int64(len(h.clients)))

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			atomic.StoreInt64(&h.count, 0)
			close(h.done)
			h.logger.Info("ws.hub_stopped")
			return
		}
	}
}

// drop removes a client from the set. Loop goroutine only.
func (h *Hub) drop(c conn) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	_ = c.Close()
	metrics.RemoveWSClient()
	h.logger.Info("ws.client_disconnected", zap.Int("clients", len(h.clients)))
}

// Broadcast queues a snapshot for delivery to every connected client. The
// update is dropped if the queue is full rather than blocking the caller;
// a fresher snapshot follows on the next cycle anyway.
func (h *Hub) Broadcast(snap *model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("ws.marshal_failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("ws.broadcast_dropped")
	}
}

// ClientCount reports the current number of connected subscribers.
func (h *Hub) ClientCount() int {
	return int(atomic.LoadInt64(&h.count))
}

// Handler returns the fiber handler that upgrades and parks subscriber
// connections. The read side only watches for the client going away.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		select {
		case h.register <- c:
		case <-h.done:
			_ = c.Close()
			return
		}

		defer func() {
			select {
			case h.unregister <- c:
			case <-h.done:
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
