// Package search provides HTML fragment cleaning for result text.
package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanHTML strips tags and decodes entities from a captured fragment.
func cleanHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
