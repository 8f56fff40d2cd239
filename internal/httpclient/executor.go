package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Executor handles tagged, zap-logged HTTP execution with response decoding.
// Every request is issued exactly once: upstream failures surface immediately
// so the caller decides whether they are fatal or best-effort.
type Executor struct {
	logger       *zap.Logger
	http         *http.Client
	sourceTag    string
	errorHandler func(status int, body []byte) error
}

// New creates an Executor. errorHandler is called on non-2xx responses to
// produce a source-specific error. If nil, a default error is returned.
func New(
	logger *zap.Logger,
	httpClient *http.Client,
	sourceTag string,
	errorHandler func(status int, body []byte) error,
) *Executor {
	return &Executor{
		logger:       logger,
		http:         httpClient,
		sourceTag:    sourceTag,
		errorHandler: errorHandler,
	}
}

// Do executes req once and returns the raw response body on success.
func (e *Executor) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := e.http.Do(req.WithContext(ctx))
	if err != nil {
		e.logger.Warn(e.sourceTag+".http_failed",
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%s request failed: %w", e.sourceTag, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn(e.sourceTag+".http_error",
			zap.Int("status", resp.StatusCode),
			zap.String("url", req.URL.String()),
			zap.Duration("latency", elapsed))
		if e.errorHandler != nil {
			return nil, e.errorHandler(resp.StatusCode, body)
		}
		return nil, fmt.Errorf("%s returned %d", e.sourceTag, resp.StatusCode)
	}

	e.logger.Debug(e.sourceTag+".http_success",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return body, nil
}

// DoJSON executes req and JSON-decodes the response body into out.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, out any) error {
	body, err := e.Do(ctx, req)
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			e.logger.Warn(e.sourceTag+".decode_failed",
				zap.Error(err),
				zap.String("url", req.URL.String()),
				zap.String("body", string(body)))
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

// DoText executes req and returns the response body as a string.
func (e *Executor) DoText(ctx context.Context, req *http.Request) (string, error) {
	body, err := e.Do(ctx, req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
