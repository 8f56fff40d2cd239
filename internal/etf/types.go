package etf

import "fmt"

// FetchError reports a non-success HTTP status from an upstream source.
type FetchError struct {
	Source     string
	Status     int
	StatusText string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.Source, e.Status, e.StatusText)
}

// QuoteEnvelope is the realtime feed's batched response document.
type QuoteEnvelope struct {
	MsgArray []QuoteMsg `json:"msgArray"`
}

// QuoteMsg is one per-symbol quote object. Prices arrive as strings; the
// feed marks fields it has no value for with "-".
type QuoteMsg struct {
	C  string `json:"c"`  // symbol token, e.g. "0050" or "tse_0050.tw"
	Z  string `json:"z"`  // last traded price
	PZ string `json:"pz"` // previous close
}
