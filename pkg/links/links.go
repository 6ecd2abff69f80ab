// Package links extracts anchor records from raw HTML.
package links

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is one raw (href, visible text) pair pulled from the markup.
type Anchor struct {
	Href string
	Text string
}

// Extract returns every anchor element with a non-empty href. No filtering
// happens at this stage. Malformed markup degrades to whatever anchors the
// lenient parser recovers; a total parse failure yields an empty slice,
// never an error the caller has to abort on.
func Extract(html []byte) []Anchor {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var anchors []Anchor
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		anchors = append(anchors, Anchor{
			Href: href,
			Text: strings.TrimSpace(s.Text()),
		})
	})
	return anchors
}
