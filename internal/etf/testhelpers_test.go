package etf

import (
	"context"
	"sync"

	"github.com/fundlens/etf-adapter/pkg/model"
)

// fptr returns a pointer to a float literal.
func fptr(v float64) *float64 { return &v }

// sptr returns a pointer to a string literal.
func sptr(s string) *string { return &s }

// fakeFundamentals serves canned records keyed by code.
type fakeFundamentals struct {
	mu      sync.Mutex
	records map[string]*model.FundRecord
	errs    map[string]error
	calls   []string
}

func (f *fakeFundamentals) FetchRecord(_ context.Context, code string) (*model.FundRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.mu.Unlock()

	if err, ok := f.errs[code]; ok {
		return nil, err
	}
	if rec, ok := f.records[code]; ok {
		// Copy so tests can call the service twice without aliasing.
		c := *rec
		return &c, nil
	}
	return &model.FundRecord{Code: code}, nil
}

// fakeRealtime serves a canned price map or a canned error.
type fakeRealtime struct {
	mu       sync.Mutex
	prices   map[string]float64
	err      error
	gotCodes []string
}

func (f *fakeRealtime) FetchPrices(_ context.Context, codes []string) (map[string]float64, error) {
	f.mu.Lock()
	f.gotCodes = append([]string(nil), codes...)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}
