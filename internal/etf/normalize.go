package etf

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NormalizeHTML flattens raw markup into a single line of visible text.
// Script and style blocks are dropped, entities are decoded during parsing,
// remaining tags are stripped, and all whitespace runs (non-breaking spaces
// included) collapse to single spaces. Always returns a string, possibly
// empty; there is no error condition.
func NormalizeHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
