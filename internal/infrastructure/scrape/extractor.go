package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one attempt at pulling a field out of a document. Strategies
// for a field are tried in order until one yields a non-empty result, so a
// new site layout is supported by appending a descriptor, not by nesting
// conditionals.
type Strategy struct {
	// Selector locates candidate nodes.
	Selector string
	// Attr reads an attribute of the first match instead of its text.
	Attr string
	// Paragraphs concatenates the text of every <p> under the first
	// match, one blank line between paragraphs.
	Paragraphs bool
}

// extractField applies strategies in order and returns the first
// non-empty result, or "" when every strategy misses.
func extractField(doc *goquery.Document, strategies []Strategy) string {
	for _, st := range strategies {
		if value := applyStrategy(doc, st); value != "" {
			return value
		}
	}
	return ""
}

func applyStrategy(doc *goquery.Document, st Strategy) string {
	sel := doc.Find(st.Selector)
	if sel.Length() == 0 {
		return ""
	}

	if st.Attr != "" {
		value, _ := sel.First().Attr(st.Attr)
		return strings.TrimSpace(value)
	}

	if st.Paragraphs {
		var b strings.Builder
		sel.First().Find("p").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if text == "" {
				return
			}
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(text)
		})
		return b.String()
	}

	// first non-empty text among the matches
	var value string
	sel.EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if text := strings.TrimSpace(node.Text()); text != "" {
			value = text
			return false
		}
		return true
	})
	return value
}

// Default field strategies for the essay site. The primary selectors
// mirror the site's generated class names; each field falls back to a
// generic selector when the primary misses.
var (
	titleStrategies = []Strategy{
		{Selector: `p.font-bold.font-serif`},
		{Selector: "h1"},
	}

	categoryStrategies = []Strategy{
		{Selector: `p.font-mono`},
	}

	contentStrategies = []Strategy{
		{Selector: `div[class*="lclXep"]`, Paragraphs: true},
		{Selector: "div.has-dropcap", Paragraphs: true},
		{Selector: "article", Paragraphs: true},
	}

	dateStrategies = []Strategy{
		{Selector: "time", Attr: "datetime"},
	}
)
