package etf

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fundlens/etf-adapter/pkg/model"
)

//
// ────────────────────────────────────────────────
//   Extractor – Field rules over normalized text
// ────────────────────────────────────────────────
//

// The fundamentals page renders labels through nested spans, so label text
// can reach us with whitespace injected between characters ("淨 值") and an
// optional parenthetical annotation ("市價(元)"). Every rule tolerates both.
// A rule that finds nothing yields a nil field; the first match wins.
const (
	annot  = `(?:\s*(?:\([^)]*\)|（[^）]*）))?`
	sep    = `\s*[:：]?\s*`
	number = `([+-]?[0-9]+(?:\.[0-9]+)?)`
	ymd    = `([0-9]{4}[./\-][0-9]{1,2}[./\-][0-9]{1,2})`
)

var (
	rePrice   = regexp.MustCompile(spaced("市價") + annot + sep + number)
	reNAV     = regexp.MustCompile(spaced("淨值") + annot + sep + number)
	reNAVDate = regexp.MustCompile(spaced("淨值日期") + annot + sep + ymd)
	rePremium = regexp.MustCompile(spaced("折溢價") + `(?:\s*率)?` + annot + sep + number + `\s*%?`)
)

// spaced rebuilds a label as a pattern allowing whitespace between every
// character.
func spaced(label string) string {
	runes := []rune(label)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = regexp.QuoteMeta(string(r))
	}
	return strings.Join(parts, `\s*`)
}

// ExtractFields pulls price, NAV, NAV date and the page-reported premium for
// one fund code out of normalized page text. No field is invented when
// absent. The returned record is provisional: ReconcilePremium finalizes its
// premium fields.
func ExtractFields(code, text string) *model.FundRecord {
	rec := &model.FundRecord{Code: code}

	if m := rePrice.FindStringSubmatch(text); m != nil {
		rec.Price = parseFloat(m[1])
	}
	if rec.Price != nil {
		from := model.PriceFromFundamentals
		rec.PriceFrom = &from
	}
	if m := reNAV.FindStringSubmatch(text); m != nil {
		rec.NAV = parseFloat(m[1])
	}
	if m := reNAVDate.FindStringSubmatch(text); m != nil {
		d := m[1]
		rec.NAVDate = &d
	}
	if m := rePremium.FindStringSubmatch(text); m != nil {
		rec.PremiumPct = parseFloat(m[1])
	}

	return rec
}

// parseFloat converts a matched numeric substring. Values that do not parse
// to a finite float are treated as absent.
func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
