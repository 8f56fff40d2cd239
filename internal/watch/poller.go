package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/internal/metrics"
	"github.com/fundlens/etf-adapter/pkg/eventbus"
	"github.com/fundlens/etf-adapter/pkg/model"
)

// SnapshotRefreshedEvent is emitted on the in-process bus after every
// successful watchlist refresh.
type SnapshotRefreshedEvent struct {
	Snapshot *model.Snapshot
}

type quoteSource interface {
	GetQuotes(ctx context.Context, codes []string) (*model.Snapshot, error)
}

// Poller periodically rebuilds the snapshot for the configured watchlist and
// emits it on the event bus. A failed cycle is skipped entirely; whatever
// subscribers hold from the previous cycle stays current.
type Poller struct {
	logger   *zap.Logger
	service  quoteSource
	bus      *eventbus.EventBus
	codes    []string
	interval time.Duration
	stopCh   chan struct{}
}

// NewPoller constructs a watchlist poller. It does nothing until Start.
func NewPoller(logger *zap.Logger, service quoteSource, bus *eventbus.EventBus, codes []string, interval time.Duration) *Poller {
	return &Poller{
		logger:   logger,
		service:  service,
		bus:      bus,
		codes:    codes,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the refresh loop until Stop is called or ctx is canceled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("watch.poller_started",
		zap.Strings("codes", p.codes),
		zap.Duration("interval", p.interval))

	// First cycle immediately so subscribers have data before the first tick.
	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runOnce(ctx)
		case <-p.stopCh:
			p.logger.Info("watch.poller_stopped (manual stop)")
			return
		case <-ctx.Done():
			p.logger.Info("watch.poller_stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the poller.
func (p *Poller) Stop() {
	close(p.stopCh)
}

// runOnce executes one refresh cycle.
func (p *Poller) runOnce(ctx context.Context) {
	start := time.Now()

	snap, err := p.service.GetQuotes(ctx, p.codes)
	if err != nil {
		metrics.IncError("watch", "refresh_failed")
		p.logger.Warn("watch.refresh_failed", zap.Error(err))
		return
	}

	metrics.SetLastRefresh("watch", snap.UpdatedAt)
	p.bus.Publish(SnapshotRefreshedEvent{Snapshot: snap})

	p.logger.Info("watch.refresh_complete",
		zap.Int("codes", len(p.codes)),
		zap.Duration("duration", time.Since(start)))
}
