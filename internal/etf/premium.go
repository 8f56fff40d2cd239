package etf

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fundlens/etf-adapter/pkg/model"
)

// divergenceThreshold is the tolerated gap, in percentage points, between
// the page-reported premium and the locally recomputed one. Beyond it the
// reported value is assumed to be a parse error or stale and is replaced.
const divergenceThreshold = 1.0

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ComputedPremium derives the premium/discount percentage of price over NAV.
// Nil unless both inputs are present and NAV is nonzero.
func ComputedPremium(price, nav *float64) *float64 {
	if price == nil || nav == nil || *nav == 0 {
		return nil
	}
	v := Round2((*price - *nav) / *nav * 100)
	return &v
}

// ReconcilePremium finalizes a provisional record's premium fields. The
// page-reported value survives only when it exists and stays within
// divergenceThreshold of the recomputed one.
func ReconcilePremium(rec *model.FundRecord) {
	parsed := rec.PremiumPct
	computed := ComputedPremium(rec.Price, rec.NAV)

	switch {
	case parsed == nil && computed == nil:
		rec.PremiumPct = nil
		rec.PremiumFrom = nil
	case parsed == nil:
		rec.PremiumPct = computed
		from := model.PremiumFromComputed
		rec.PremiumFrom = &from
	case computed != nil && math.Abs(*parsed-*computed) > divergenceThreshold:
		rec.PremiumPct = computed
		from := model.PremiumFromComputed
		rec.PremiumFrom = &from
	default:
		v := Round2(*parsed)
		rec.PremiumPct = &v
		from := model.PremiumFromParsed
		rec.PremiumFrom = &from
	}
}

// OverlayPrice replaces a record's price with the fresher realtime price and
// re-derives the premium against the fundamentals NAV. The re-derivation
// always wins over the reconciled value: the overlay price is fresher by
// construction. Without a usable NAV the reconciled premium stays.
func OverlayPrice(rec *model.FundRecord, price float64) {
	rec.Price = &price
	from := model.PriceFromRealtime
	rec.PriceFrom = &from

	if p := ComputedPremium(rec.Price, rec.NAV); p != nil {
		rec.PremiumPct = p
		pf := model.PremiumFromRealtime
		rec.PremiumFrom = &pf
	}
}
