package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/multiki/internal/domain"
)

const (
	// DefaultTTL is how long a snapshot stays fresh
	DefaultTTL = 24 * time.Hour

	// maxClockSkew tolerates snapshots stamped slightly in the future
	maxClockSkew = 5 * time.Minute
)

var (
	// ErrStale indicates the snapshot is older than the TTL
	ErrStale = errors.New("catalog snapshot expired")

	// ErrCorrupt indicates the stored document is not a valid snapshot
	ErrCorrupt = errors.New("catalog snapshot corrupt")
)

// legacyTimeLayouts accept timestamps written without a zone offset;
// they are read as local time.
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// snapshotDoc is the persisted document.
type snapshotDoc struct {
	Timestamp string       `json:"timestamp"`
	Records   *[]recordDoc `json:"records,omitempty"`
	Cartoons  *[]recordDoc `json:"cartoons,omitempty"` // pre-rename key
}

type recordDoc struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Extension  string `json:"extension"`
	Thumbnail  string `json:"thumbnail"`
	DetailURL  string `json:"detail_url,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Size       string `json:"size,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// Option configures a Catalog
type Option func(*Catalog)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// Catalog implements domain.CatalogStore over a Backend. It is the only code
// that reads or writes the snapshot document.
type Catalog struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewCatalog creates a catalog store on top of backend.
func NewCatalog(backend Backend, logger *slog.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{backend: backend, ttl: DefaultTTL, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the stored records when a fresh, well-formed snapshot exists.
// Every failure mode reports false. A corrupt snapshot is removed; a stale
// one is kept until the next save replaces it.
func (c *Catalog) Load() ([]domain.Record, bool) {
	snap, err := c.LoadSnapshot()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSnapshot):
			c.logger.Debug("no catalog snapshot")
		case errors.Is(err, ErrStale):
			c.logger.Debug("catalog snapshot stale", "error", err)
		case errors.Is(err, ErrCorrupt):
			c.logger.Warn("removing corrupt catalog snapshot", "error", err)
			if rmErr := c.backend.Remove(); rmErr != nil {
				c.logger.Error("failed to remove corrupt catalog snapshot", "error", rmErr)
			}
		default:
			c.logger.Warn("catalog snapshot unusable", "error", err)
		}
		return nil, false
	}
	return snap.Records, true
}

// LoadSnapshot is Load with the reason for a miss: domain.ErrNoSnapshot,
// ErrStale, ErrCorrupt, or a backend read error.
func (c *Catalog) LoadSnapshot() (domain.Snapshot, error) {
	data, err := c.backend.Read()
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, err
	}

	age := snap.Age(c.now())
	if age < -maxClockSkew {
		return domain.Snapshot{}, fmt.Errorf("%w: timestamp %s is in the future", ErrCorrupt, snap.Timestamp)
	}
	if age >= c.ttl {
		return domain.Snapshot{}, fmt.Errorf("%w: age %s", ErrStale, age.Round(time.Second))
	}
	return snap, nil
}

// Save replaces the snapshot with records stamped with the current time.
// The previous snapshot stays intact if encoding or writing fails.
func (c *Catalog) Save(records []domain.Record) error {
	data, err := encodeSnapshot(c.now(), records)
	if err != nil {
		return err
	}
	if err := c.backend.Write(data); err != nil {
		return fmt.Errorf("write catalog snapshot: %w", err)
	}
	c.logger.Debug("saved catalog snapshot", "records", len(records), "bytes", len(data))
	return nil
}

// Clear removes the snapshot. A missing snapshot is not an error.
func (c *Catalog) Clear() error {
	if err := c.backend.Remove(); err != nil {
		return fmt.Errorf("remove catalog snapshot: %w", err)
	}
	return nil
}

// Close releases the backend if it holds resources.
func (c *Catalog) Close() error {
	if closer, ok := c.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func encodeSnapshot(now time.Time, records []domain.Record) ([]byte, error) {
	docs := make([]recordDoc, len(records))
	for i, r := range records {
		if !r.Valid() {
			return nil, fmt.Errorf("record %d (%q) violates catalog invariants", i, r.MediaURL)
		}
		docs[i] = recordDoc{
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
	return json.MarshalIndent(snapshotDoc{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Records:   &docs,
	}, "", "  ")
}

func decodeSnapshot(data []byte) (domain.Snapshot, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	ts, err := parseTimestamp(doc.Timestamp)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	docs := doc.Records
	if docs == nil {
		docs = doc.Cartoons
	}
	if docs == nil {
		return domain.Snapshot{}, fmt.Errorf("%w: no records", ErrCorrupt)
	}

	records := make([]domain.Record, len(*docs))
	for i, d := range *docs {
		r := domain.Record{
			Title:        d.Title,
			MediaURL:     d.URL,
			ThumbnailURL: d.Thumbnail,
			DetailURL:    d.DetailURL,
			Duration:     d.Duration,
			Plot:         d.Plot,
			Size:         d.Size,
			Resolution:   d.Resolution,
		}
		if !r.Valid() || !strings.EqualFold(d.Extension, r.Extension()) {
			return domain.Snapshot{}, fmt.Errorf("%w: record %d is invalid", ErrCorrupt, i)
		}
		records[i] = r
	}

	return domain.Snapshot{Timestamp: ts, Records: records}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range legacyTimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
