package domain

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// Record is one playable catalog item.
type Record struct {
	Title        string // Display title, never blank
	MediaURL     string // Absolute URL of the media file
	ThumbnailURL string // Absolute image URL, empty when unknown
	DetailURL    string // Absolute URL of the per-item info page, empty when unknown
	Duration     string // HH:MM:SS or empty
	Plot         string // Synopsis assembled from duration/size/resolution

	// Listing metadata used to build Plot
	Size       string // File size in bytes as listed, empty when unknown
	Resolution string // e.g. "640x480"
}

// Extension returns the lower-cased extension of MediaURL, including the dot.
func (r Record) Extension() string {
	return MediaExtension(r.MediaURL)
}

// Valid reports whether the record satisfies the catalog invariants:
// non-blank title and an absolute media URL with an allowed extension.
func (r Record) Valid() bool {
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	u, err := url.Parse(r.MediaURL)
	if err != nil || !u.IsAbs() {
		return false
	}
	return IsMediaURL(r.MediaURL)
}

// DetailRecord is best-effort enrichment scraped from a detail page.
// The zero value means nothing is known.
type DetailRecord struct {
	Duration   string
	Size       string
	Resolution string
	VideoCodec string
	AudioCodec string
	Thumbnail  string
	Plot       string
}

// IsEmpty reports whether no field was recovered.
func (d DetailRecord) IsEmpty() bool {
	return d == DetailRecord{}
}

// Snapshot is one persisted catalog state.
type Snapshot struct {
	Timestamp time.Time
	Records   []Record
}

// Age returns how old the snapshot is relative to now.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Timestamp)
}

// MediaExtensions is the allow-list of container formats.
var MediaExtensions = []string{
	".avi", ".mp4", ".mkv", ".flv", ".mpg", ".mpeg", ".wmv", ".mov", ".m4v", ".3gp",
}

// ImageExtensions are tried, in order, when searching for a thumbnail.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// MediaExtension returns the lower-cased extension of rawURL's path when it is
// in the allow-list, otherwise "".
func MediaExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	for _, allowed := range MediaExtensions {
		if ext == allowed {
			return ext
		}
	}
	return ""
}

// IsMediaURL reports whether rawURL ends in an allowed media extension.
// Query strings and fragments disqualify a link.
func IsMediaURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range MediaExtensions {
		if strings.HasSuffix(lower, ext) {
			return MediaExtension(rawURL) == ext
		}
	}
	return false
}
