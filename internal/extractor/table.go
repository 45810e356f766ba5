package extractor

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/multiki/internal/domain"
)

// TableRows reads listings laid out as alternating "o"/"e" styled table rows,
// one item per row. Title and media link are paired only within a row; a row
// without a media link is skipped.
func TableRows(text string, base *url.URL) []domain.Record {
	doc, ok := parseDocument(text)
	if !ok {
		return nil
	}

	var records []domain.Record
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !row.HasClass("o") && !row.HasClass("e") {
			return
		}
		if rec, ok := parseRow(row, base); ok {
			records = append(records, rec)
		}
	})
	return records
}

func parseRow(row *goquery.Selection, base *url.URL) (domain.Record, bool) {
	var rec domain.Record
	var mediaHref string

	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if abs, ok := resolveURL(base, href); ok && domain.IsMediaURL(abs) {
			rec.MediaURL = abs
			mediaHref = href
			return false
		}
		return true
	})
	if rec.MediaURL == "" {
		return rec, false
	}

	titleLink := row.Find("td.l a[href]").First()
	if titleLink.Length() == 0 {
		titleLink = row.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			abs, ok := resolveURL(base, href)
			return ok && !domain.IsMediaURL(abs)
		}).First()
	}
	if titleLink.Length() > 0 {
		rec.Title = cleanText(titleLink.Text())
		href, _ := titleLink.Attr("href")
		if abs, ok := resolveURL(base, href); ok && !domain.IsMediaURL(abs) {
			rec.DetailURL = abs
		}
	}
	if rec.Title == "" || isGenericLabel(rec.Title) {
		rec.Title = TitleFromFilename(mediaHref)
	}

	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		value := cleanText(cell.Text())
		switch {
		case value == "":
		case rec.Size == "" && cell.HasClass("r") && digitsRe.MatchString(value):
			rec.Size = value
		case rec.Duration == "" && NormalizeDuration(value) != "":
			rec.Duration = NormalizeDuration(value)
		case rec.Resolution == "" && findResolution(value) == value:
			rec.Resolution = value
		}
	})

	row.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if abs, ok := resolveURL(base, src); ok && isImageURL(abs) {
			rec.ThumbnailURL = abs
			return false
		}
		return true
	})

	return rec, true
}
