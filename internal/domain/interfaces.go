package domain

import "context"

// Fetcher retrieves raw bytes for a URL. Failures are *UnreachableError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Decoder turns raw page bytes into text. degraded is true when no candidate
// encoding decoded cleanly and a lossy fallback was used.
type Decoder interface {
	Decode(raw []byte) (text string, degraded bool)
}

// CatalogStore persists catalog snapshots with expiry semantics.
type CatalogStore interface {
	// Load returns the stored records if a fresh, well-formed snapshot exists.
	Load() ([]Record, bool)
	// Save replaces the snapshot with records stamped with the current time.
	Save(records []Record) error
	// Clear removes the snapshot. A missing snapshot is not an error.
	Clear() error
}

// DetailSource fetches best-effort enrichment for one record.
type DetailSource interface {
	FetchDetails(ctx context.Context, detailURL string) DetailRecord
}

// Extractor recovers records from a decoded listing page. strategy names the
// extraction strategy that produced them, "" when the page was not recognized.
type Extractor interface {
	ExtractWithStrategy(text, baseURL string) (records []Record, strategy string)
}
