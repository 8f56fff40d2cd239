package etf

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/internal/httpclient"
	"github.com/fundlens/etf-adapter/pkg/model"
)

// marketSuffix is appended to bare fund codes when building the page URL.
const marketSuffix = ".TW"

// The page serves a stripped-down document to unknown agents, so we present
// a browser UA.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// FundamentalsClient fetches the per-fund basics page and turns it into a
// provisional record: extracted fields plus a reconciled premium.
type FundamentalsClient struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

func NewFundamentalsClient(logger *zap.Logger, baseURL string, timeout time.Duration) *FundamentalsClient {
	hc := &http.Client{Timeout: timeout}
	errorHandler := func(status int, body []byte) error {
		return &FetchError{Source: "fundamentals page", Status: status, StatusText: http.StatusText(status)}
	}
	return &FundamentalsClient{
		logger:  logger,
		exec:    httpclient.New(logger, hc, "fundamentals", errorHandler),
		baseURL: baseURL,
	}
}

// FetchRecord retrieves and parses the fundamentals page for one fund code.
// Fields the page does not carry come back nil; only transport-level
// problems surface as errors.
func (c *FundamentalsClient) FetchRecord(ctx context.Context, code string) (*model.FundRecord, error) {
	url := c.baseURL + code + marketSuffix

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fundamentals request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	page, err := c.exec.DoText(ctx, req)
	if err != nil {
		return nil, err
	}

	rec := ExtractFields(code, NormalizeHTML(page))
	ReconcilePremium(rec)
	return rec, nil
}
