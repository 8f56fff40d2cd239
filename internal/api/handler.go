package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/internal/etf"
	"github.com/fundlens/etf-adapter/internal/metrics"
	"github.com/fundlens/etf-adapter/internal/store"
	"github.com/fundlens/etf-adapter/pkg/model"
)

// QuoteService defines the snapshot assembly operation needed by the handler.
type QuoteService interface {
	GetQuotes(ctx context.Context, codes []string) (*model.Snapshot, error)
}

// QuoteHandler handles HTTP API requests for fund quotes.
type QuoteHandler struct {
	logger       *zap.Logger
	service      QuoteService
	store        store.Store
	cacheControl string
}

// NewQuoteHandler creates a QuoteHandler. maxAge and staleWindow are the
// Cache-Control seconds attached to successful quote responses.
func NewQuoteHandler(logger *zap.Logger, service QuoteService, st store.Store, maxAge, staleWindow int) *QuoteHandler {
	return &QuoteHandler{
		logger:       logger,
		service:      service,
		store:        st,
		cacheControl: fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, staleWindow),
	}
}

// GetQuotesHandler handles GET /api/v1/quotes?codes=0050,0056.
func (h *QuoteHandler) GetQuotesHandler(c *fiber.Ctx) error {
	codes := etf.ParseCodes(c.Query("codes"))
	if len(codes) == 0 {
		metrics.IncAPIRequest("/api/v1/quotes", fiber.MethodGet, "400")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   ErrCodeInvalidRequest,
			Message: "codes query parameter is required",
		})
	}

	snap, err := h.service.GetQuotes(c.Context(), codes)
	if err != nil {
		h.logger.Error("api.quotes_failed",
			zap.Strings("codes", codes),
			zap.Error(err))
		metrics.IncAPIRequest("/api/v1/quotes", fiber.MethodGet, "502")
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:   ErrCodeUpstream,
			Message: err.Error(),
		})
	}

	metrics.IncAPIRequest("/api/v1/quotes", fiber.MethodGet, "200")
	c.Set(fiber.HeaderCacheControl, h.cacheControl)
	return c.Status(fiber.StatusOK).JSON(QuotesResponse{
		OK:        true,
		UpdatedAt: snap.UpdatedAt,
		Items:     snap.Items,
		ByCode:    snap.ByCode,
		Source:    snap.Source,
	})
}

// LatestWatchlistHandler handles GET /api/v1/watchlist/latest, serving the
// most recent snapshot taken by the watch poller.
func (h *QuoteHandler) LatestWatchlistHandler(c *fiber.Ctx) error {
	snap, err := h.store.LatestSnapshot(c.Context())
	if err != nil {
		h.logger.Error("api.watchlist_read_failed", zap.Error(err))
		metrics.IncAPIRequest("/api/v1/watchlist/latest", fiber.MethodGet, "500")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   ErrCodeStore,
			Message: err.Error(),
		})
	}
	if snap == nil {
		metrics.IncAPIRequest("/api/v1/watchlist/latest", fiber.MethodGet, "404")
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   ErrCodeNotFound,
			Message: "no watchlist snapshot taken yet",
		})
	}

	metrics.IncAPIRequest("/api/v1/watchlist/latest", fiber.MethodGet, "200")
	return c.Status(fiber.StatusOK).JSON(QuotesResponse{
		OK:        true,
		UpdatedAt: snap.UpdatedAt,
		Items:     snap.Items,
		ByCode:    snap.ByCode,
		Source:    snap.Source,
	})
}
