package api

import (
	"time"

	"github.com/fundlens/etf-adapter/pkg/model"
)

// QuotesResponse is the success document for quote reads, both on-demand and
// from the watchlist snapshot.
type QuotesResponse struct {
	OK        bool                         `json:"ok"`
	UpdatedAt time.Time                    `json:"updatedAt"`
	Items     []*model.FundRecord          `json:"items"`
	ByCode    map[string]*model.FundRecord `json:"byCode"`
	Source    string                       `json:"source"`
}

// ErrorResponse is the error document shared by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes carried in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeUpstream       = "upstream_error"
	ErrCodeStore          = "store_error"
	ErrCodeNotFound       = "not_found"
)
