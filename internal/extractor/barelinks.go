package extractor

import (
	"net/url"
	"strings"

	"github.com/mmcdole/multiki/internal/domain"
	"golang.org/x/net/html"
)

// BareLinks is the last resort: every href or src attribute anywhere in the
// token stream that points at a media file becomes a record titled from its
// file name. Tokenizing instead of parsing a tree keeps it working on markup
// too broken for the other strategies.
func BareLinks(text string, base *url.URL) []domain.Record {
	var records []domain.Record
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return records
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			for _, attr := range tok.Attr {
				if attr.Key != "href" && attr.Key != "src" {
					continue
				}
				abs, ok := resolveURL(base, attr.Val)
				if !ok || !domain.IsMediaURL(abs) {
					continue
				}
				records = append(records, domain.Record{
					Title:    TitleFromFilename(attr.Val),
					MediaURL: abs,
				})
			}
		}
	}
}
