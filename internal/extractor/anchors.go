package extractor

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/multiki/internal/domain"
)

type companion struct {
	url   string
	names []string // decoded path segment and query values the link refers to
	text  string
}

// AnchorPairs pairs every media anchor with a detail-page anchor that refers
// to the same file and takes the title from that anchor's text. Without a
// companion the media anchor's own text is used when descriptive, otherwise
// the title is decoded from the file name.
func AnchorPairs(text string, base *url.URL) []domain.Record {
	doc, ok := parseDocument(text)
	if !ok {
		return nil
	}

	anchors := doc.Find("a[href]")

	var companions []companion
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := resolveURL(base, href)
		if !ok || domain.IsMediaURL(abs) {
			return
		}
		label := cleanText(a.Text())
		if label == "" || isGenericLabel(label) {
			return
		}
		companions = append(companions, companion{url: abs, names: referencedNames(abs), text: label})
	})

	var records []domain.Record
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := resolveURL(base, href)
		if !ok || !domain.IsMediaURL(abs) {
			return
		}

		rec := domain.Record{MediaURL: abs}
		file := fileName(abs)
		if c, ok := findCompanion(companions, file); ok {
			rec.Title = c.text
			rec.DetailURL = c.url
		}
		if rec.Title == "" {
			if label := cleanText(a.Text()); label != "" && !isGenericLabel(label) && label != file {
				rec.Title = label
			}
		}
		if rec.Title == "" {
			rec.Title = TitleFromFilename(href)
		}
		records = append(records, rec)
	})
	return records
}

// referencedNames lists the file names a detail link can point at:
// its last path segment without a page extension, and its query values.
func referencedNames(link string) []string {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	seg := unescapeName(path.Base(u.EscapedPath()))
	names := []string{seg}
	switch strings.ToLower(path.Ext(seg)) {
	case ".html", ".htm", ".php", ".shtml":
		names = append(names, stem(seg))
	}
	for _, values := range u.Query() {
		for _, v := range values {
			names = append(names, path.Base(v))
		}
	}
	return names
}

func findCompanion(companions []companion, file string) (companion, bool) {
	for _, c := range companions {
		for _, name := range c.names {
			if name == file || (name == stem(file) && name != "") {
				return c, true
			}
		}
	}
	return companion{}, false
}
