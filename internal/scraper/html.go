package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleFromHTML recovers a page title from raw HTML when the provider
// metadata carries none.
func titleFromHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// descriptionFromHTML recovers a meta description from raw HTML.
func descriptionFromHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(desc)
}
