package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/multiki/internal/domain"
	"golang.org/x/net/html"
)

// detailField identifies which DetailRecord field a label feeds.
type detailField int

const (
	fieldNone detailField = iota
	fieldDuration
	fieldSize
	fieldResolution
	fieldVideo
	fieldAudio
	fieldPlot
)

// detailLabels maps label keywords (lower case) to fields, checked in order.
var detailLabels = []struct {
	keyword string
	field   detailField
}{
	{"длительность", fieldDuration},
	{"продолжительность", fieldDuration},
	{"время", fieldDuration},
	{"duration", fieldDuration},
	{"размер файла", fieldSize},
	{"размер", fieldSize},
	{"size", fieldSize},
	{"разрешение", fieldResolution},
	{"resolution", fieldResolution},
	{"видео", fieldVideo},
	{"video", fieldVideo},
	{"аудио", fieldAudio},
	{"звук", fieldAudio},
	{"audio", fieldAudio},
	{"описание", fieldPlot},
	{"сюжет", fieldPlot},
	{"description", fieldPlot},
}

// DetailFetcher enriches a record from its detail page.
type DetailFetcher struct {
	fetcher domain.Fetcher
	decoder domain.Decoder
	logger  *slog.Logger
}

// NewDetailFetcher creates a detail fetcher sharing the listing's transport and decoder.
func NewDetailFetcher(fetcher domain.Fetcher, decoder domain.Decoder, logger *slog.Logger) *DetailFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailFetcher{fetcher: fetcher, decoder: decoder, logger: logger}
}

// FetchDetails never fails: any problem yields an empty DetailRecord.
func (d *DetailFetcher) FetchDetails(ctx context.Context, detailURL string) domain.DetailRecord {
	base, err := url.Parse(detailURL)
	if detailURL == "" || err != nil || !base.IsAbs() {
		return domain.DetailRecord{}
	}

	raw, err := d.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		d.logger.Debug("detail fetch failed", "url", detailURL, "error", err)
		return domain.DetailRecord{}
	}

	text, _ := d.decoder.Decode(raw)
	details := ParseDetails(text, base)
	d.logger.Debug("fetched details", "url", detailURL, "empty", details.IsEmpty())
	return details
}

// ParseDetails reads "label: value" pairs from table rows, definition lists
// and bold-label lines of a detail page.
func ParseDetails(text string, base *url.URL) domain.DetailRecord {
	doc, ok := parseDocument(text)
	if !ok {
		return domain.DetailRecord{}
	}

	var d domain.DetailRecord
	for _, kv := range labelValues(doc) {
		value := cleanText(kv[1])
		if value == "" {
			continue
		}
		switch classifyLabel(kv[0]) {
		case fieldDuration:
			if d.Duration == "" {
				d.Duration = findDuration(value)
			}
		case fieldSize:
			if d.Size == "" {
				d.Size = value
			}
		case fieldResolution:
			if d.Resolution == "" {
				d.Resolution = findResolution(value)
			}
		case fieldVideo:
			if d.VideoCodec == "" {
				d.VideoCodec = value
			}
			if d.Resolution == "" {
				d.Resolution = findResolution(value)
			}
		case fieldAudio:
			if d.AudioCodec == "" {
				d.AudioCodec = value
			}
		case fieldPlot:
			if d.Plot == "" {
				d.Plot = value
			}
		}
	}

	if d.Duration == "" {
		d.Duration = findDuration(doc.Find("body").Text())
	}
	if d.Plot == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			d.Plot = cleanText(desc)
		}
	}
	d.Thumbnail = detailThumbnail(doc, base)
	return d
}

func classifyLabel(label string) detailField {
	label = strings.ToLower(strings.Trim(cleanText(label), " :"))
	if label == "" {
		return fieldNone
	}
	for _, l := range detailLabels {
		if strings.Contains(label, l.keyword) {
			return l.field
		}
	}
	return fieldNone
}

// labelValues collects candidate (label, value) pairs in document order.
func labelValues(doc *goquery.Document) [][2]string {
	var pairs [][2]string

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Children().Filter("th, td")
		if cells.Length() >= 2 {
			pairs = append(pairs, [2]string{cells.Eq(0).Text(), cells.Eq(1).Text()})
		}
	})

	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		pairs = append(pairs, [2]string{dt.Text(), dt.NextFiltered("dd").Text()})
	})

	// <b>Label:</b> value<br>
	doc.Find("b, strong").Each(func(_ int, b *goquery.Selection) {
		var value strings.Builder
		for n := b.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
			if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "b" || n.Data == "strong" || n.Data == "p") {
				break
			}
			value.WriteString(goquery.NewDocumentFromNode(n).Text())
		}
		pairs = append(pairs, [2]string{b.Text(), value.String()})
	})

	// Plain "Label: value" lines
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if label, value, ok := strings.Cut(line, ":"); ok {
			pairs = append(pairs, [2]string{label, value})
		}
	}

	return pairs
}

func detailThumbnail(doc *goquery.Document, base *url.URL) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		if abs, ok := resolveURL(base, og); ok {
			return abs
		}
	}
	var thumb string
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if abs, ok := resolveURL(base, src); ok && isImageURL(abs) {
			thumb = abs
			return false
		}
		return true
	})
	return thumb
}
