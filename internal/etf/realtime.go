package etf

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/internal/httpclient"
)

// RealtimeClient fetches last-trade prices for a batch of fund codes in a
// single request against the exchange quote endpoint.
type RealtimeClient struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

func NewRealtimeClient(logger *zap.Logger, baseURL string, timeout time.Duration) *RealtimeClient {
	hc := &http.Client{Timeout: timeout}
	errorHandler := func(status int, body []byte) error {
		return &FetchError{Source: "realtime feed", Status: status, StatusText: http.StatusText(status)}
	}
	return &RealtimeClient{
		logger:  logger,
		exec:    httpclient.New(logger, hc, "realtime", errorHandler),
		baseURL: baseURL,
	}
}

// FetchPrices resolves realtime prices for the given codes, keyed by bare
// fund code. Codes absent from the feed are simply missing from the map;
// only a failure of the batch request itself is an error.
func (c *RealtimeClient) FetchPrices(ctx context.Context, codes []string) (map[string]float64, error) {
	tokens := make([]string, len(codes))
	for i, code := range codes {
		tokens[i] = "tse_" + strings.ToLower(code) + ".tw"
	}
	url := fmt.Sprintf("%s?ex_ch=%s&json=1&delay=0", c.baseURL, strings.Join(tokens, "|"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build realtime request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var envelope QuoteEnvelope
	if err := c.exec.DoJSON(ctx, req, &envelope); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(envelope.MsgArray))
	for _, q := range envelope.MsgArray {
		code := normalizeSymbol(q.C)
		if code == "" {
			continue
		}
		if v := parseFloat(q.Z); v != nil {
			prices[code] = *v
		} else if v := parseFloat(q.PZ); v != nil {
			prices[code] = *v
		}
	}

	c.logger.Debug("realtime.batch_fetched",
		zap.Int("requested", len(codes)),
		zap.Int("priced", len(prices)),
	)
	return prices, nil
}

// normalizeSymbol maps a feed symbol token like "tse_0050.tw" back to the
// bare upper-case fund code.
func normalizeSymbol(sym string) string {
	s := strings.ToLower(strings.TrimSpace(sym))
	s = strings.TrimPrefix(s, "tse_")
	s = strings.TrimSuffix(s, ".tw")
	return strings.ToUpper(s)
}
