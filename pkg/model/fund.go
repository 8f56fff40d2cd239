package model

import "time"

// Provenance labels recorded per field so callers can tell which source,
// or which derivation, produced the final value.
const (
	PriceFromFundamentals = "fundamentals"
	PriceFromRealtime     = "realtime"

	PremiumFromComputed = "computed from price & NAV"
	PremiumFromParsed   = "parsed from fundamentals"
	PremiumFromRealtime = "realtime price vs fundamentals NAV"
)

// NoteRealtimeUnavailable annotates every record of a batch whose realtime
// overlay fetch failed. Prices then fall back to the fundamentals page.
const NoteRealtimeUnavailable = "realtime quote feed unavailable"

// SourceDescription is the fixed descriptive string attached to responses.
const SourceDescription = "fundamentals page + realtime quote feed (best effort)"

// FundRecord is the reconciled valuation of one fund code. Nil means the
// field could not be parsed from either source; it is serialized as null
// rather than omitted so callers can distinguish "missing" from "absent".
type FundRecord struct {
	Code        string   `json:"code"`
	NAV         *float64 `json:"nav"`
	NAVDate     *string  `json:"navDate"`
	Price       *float64 `json:"price"`
	PriceFrom   *string  `json:"priceFrom"`
	PremiumPct  *float64 `json:"premiumPct"`
	PremiumFrom *string  `json:"premiumFrom"`
	Note        *string  `json:"note,omitempty"`
}

// Snapshot is one full reconciliation result for a list of fund codes.
// Items preserves request order; ByCode is a duplicate view for O(1) lookup.
type Snapshot struct {
	UpdatedAt time.Time              `json:"updatedAt"`
	Items     []*FundRecord          `json:"items"`
	ByCode    map[string]*FundRecord `json:"byCode"`
	Source    string                 `json:"source"`
}
