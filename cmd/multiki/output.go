package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/multiki/internal/catalog"
	"github.com/mmcdole/multiki/internal/domain"
)

// recordJSON is the --json shape of a record
type recordJSON struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Extension  string `json:"extension"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	DetailURL  string `json:"detail_url,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Size       string `json:"size,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

type detailJSON struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Duration   string `json:"duration,omitempty"`
	Size       string `json:"size,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	VideoCodec string `json:"video_codec,omitempty"`
	AudioCodec string `json:"audio_codec,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Plot       string `json:"plot,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	if records, ok := v.([]domain.Record); ok {
		out := make([]recordJSON, len(records))
		for i, r := range records {
			out[i] = toRecordJSON(i+1, r)
		}
		v = out
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func toRecordJSON(n int, r domain.Record) recordJSON {
	return recordJSON{
		Number:     n,
		Title:      r.Title,
		URL:        r.MediaURL,
		Extension:  r.Extension(),
		Thumbnail:  r.ThumbnailURL,
		DetailURL:  r.DetailURL,
		Duration:   r.Duration,
		Plot:       r.Plot,
		Size:       r.Size,
		Resolution: r.Resolution,
	}
}

// detailsJSON merges listing data with detail page data, the page winning.
func detailsJSON(r domain.Record, d domain.DetailRecord) detailJSON {
	pick := func(page, listing string) string {
		if page != "" {
			return page
		}
		return listing
	}
	return detailJSON{
		Title:      r.Title,
		URL:        r.MediaURL,
		Duration:   pick(d.Duration, r.Duration),
		Size:       pick(d.Size, r.Size),
		Resolution: pick(d.Resolution, r.Resolution),
		VideoCodec: d.VideoCodec,
		AudioCodec: d.AudioCodec,
		Thumbnail:  pick(d.Thumbnail, r.ThumbnailURL),
		Plot:       pick(d.Plot, r.Plot),
	}
}

// writeNumbered prints shown records numbered by their position in all.
func writeNumbered(w io.Writer, all, shown []domain.Record) {
	position := make(map[string]int, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		position[all[i].MediaURL] = i + 1 // first occurrence wins
	}
	width := len(fmt.Sprint(len(all)))

	for _, r := range shown {
		duration := r.Duration
		if duration == "" {
			duration = "--:--:--"
		}
		fmt.Fprintf(w, "%*d  %s  %s\n", width, position[r.MediaURL], duration, r.Title)
	}
}

func writeRefreshSummary(w io.Writer, source string, res catalog.Result) {
	strategy := res.Strategy
	if strategy == "" {
		strategy = "none"
	}
	fmt.Fprintf(w, "fetched %d records from %s (strategy: %s", len(res.Records), source, strategy)
	if res.Degraded {
		fmt.Fprint(w, ", lossy decoding")
	}
	fmt.Fprintln(w, ")")
}

func writeDetails(w io.Writer, r domain.Record, d domain.DetailRecord) {
	dj := detailsJSON(r, d)
	fields := []struct{ label, value string }{
		{"Title", dj.Title},
		{"URL", dj.URL},
		{"Duration", dj.Duration},
		{"Size", dj.Size},
		{"Resolution", dj.Resolution},
		{"Video", dj.VideoCodec},
		{"Audio", dj.AudioCodec},
		{"Thumbnail", dj.Thumbnail},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(w, "%-11s %s\n", f.label+":", f.value)
		}
	}
	if dj.Plot != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(dj.Plot))
	}
	if d.IsEmpty() {
		fmt.Fprintln(w, "\n(no detail page information)")
	}
}
