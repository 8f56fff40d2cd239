package etf

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/internal/metrics"
	"github.com/fundlens/etf-adapter/pkg/model"
)

//
// ──────────────────────────────────────────────────────────────
//   Service – fan-out over fundamentals, realtime overlay
// ──────────────────────────────────────────────────────────────
//

type fundamentalsSource interface {
	FetchRecord(ctx context.Context, code string) (*model.FundRecord, error)
}

type realtimeSource interface {
	FetchPrices(ctx context.Context, codes []string) (map[string]float64, error)
}

// Service assembles complete fund snapshots: one fundamentals fetch per
// code, concurrently, then a single best-effort realtime overlay across
// the whole batch.
type Service struct {
	logger       *zap.Logger
	fundamentals fundamentalsSource
	realtime     realtimeSource
}

func NewService(logger *zap.Logger, fundamentals fundamentalsSource, realtime realtimeSource) *Service {
	return &Service{
		logger:       logger,
		fundamentals: fundamentals,
		realtime:     realtime,
	}
}

// GetQuotes builds a snapshot for the given codes. Fundamentals are
// all-or-nothing: any failed fetch fails the whole call. The realtime
// overlay runs only once every extraction is known, and its failure
// degrades the snapshot instead of failing it.
func (s *Service) GetQuotes(ctx context.Context, codes []string) (*model.Snapshot, error) {
	start := time.Now()

	records := make([]*model.FundRecord, len(codes))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()

			fetchStart := time.Now()
			rec, err := s.fundamentals.FetchRecord(ctx, code)
			metrics.ObserveDuration(metrics.UpstreamFetchDuration, fetchStart, "fundamentals")
			if err != nil {
				metrics.IncUpstreamFetch("fundamentals", "error")
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch %s: %w", code, err)
				}
				mu.Unlock()
				return
			}
			metrics.IncUpstreamFetch("fundamentals", "ok")
			records[i] = rec
		}(i, code)
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Error("etf.fundamentals_failed", zap.Error(firstErr))
		return nil, firstErr
	}

	s.applyOverlay(ctx, codes, records)

	snap := &model.Snapshot{
		UpdatedAt: time.Now().UTC(),
		Items:     records,
		ByCode:    make(map[string]*model.FundRecord, len(records)),
		Source:    model.SourceDescription,
	}
	for _, rec := range records {
		snap.ByCode[rec.Code] = rec
	}

	s.logger.Info("etf.quotes_complete",
		zap.Int("codes", len(codes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// applyOverlay runs the one batched realtime fetch and folds its prices
// into the records. The batch is atomic: if the fetch fails, no record is
// overridden and every record is annotated instead.
func (s *Service) applyOverlay(ctx context.Context, codes []string, records []*model.FundRecord) {
	fetchStart := time.Now()
	prices, err := s.realtime.FetchPrices(ctx, codes)
	metrics.ObserveDuration(metrics.UpstreamFetchDuration, fetchStart, "realtime")
	if err != nil {
		metrics.IncUpstreamFetch("realtime", "error")
		metrics.IncOverlayFailure()
		s.logger.Warn("etf.realtime_overlay_failed", zap.Error(err))
		for _, rec := range records {
			note := model.NoteRealtimeUnavailable
			rec.Note = &note
			if rec.Price != nil && rec.PriceFrom == nil {
				from := model.PriceFromFundamentals
				rec.PriceFrom = &from
			}
		}
		return
	}
	metrics.IncUpstreamFetch("realtime", "ok")

	for _, rec := range records {
		if price, ok := prices[rec.Code]; ok {
			OverlayPrice(rec, price)
		}
	}
}

// ParseCodes splits a comma-separated code list, upper-casing and deduping
// while preserving first-occurrence order.
func ParseCodes(raw string) []string {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
