package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PlainText strips tag markup from s and decodes entities.
func PlainText(s string) string {
	if s == "" || !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// FormatViews renders a view count with English digit grouping, e.g. "12,403 views".
// Negative counts render as zero.
func FormatViews(n int64) string {
	if n < 0 {
		n = 0
	}
	return message.NewPrinter(language.English).Sprintf("%d views", n)
}
