package titles

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// NoTitle is shown when a page has neither a <title> nor an og:title
const NoTitle = "No title found"

var (
	titlePattern = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	strictPolicy = bluemonday.StrictPolicy()
)

// Extract returns the page title of an HTML document.
// The first <title> element wins; og:title is the fallback for pages that
// only set the title from script.
func Extract(document string) string {
	if m := titlePattern.FindStringSubmatch(document); m != nil {
		if t := clean(m[1]); t != "" {
			return t
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return NoTitle
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := clean(og); t != "" {
			return t
		}
	}
	return NoTitle
}

// clean strips markup, unescapes entities and trims whitespace
func clean(raw string) string {
	s := strictPolicy.Sanitize(raw)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
