package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/multiki/internal/domain"
	"github.com/mmcdole/multiki/internal/log"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCatalog(t *testing.T, backend Backend) (*Catalog, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: baseTime}
	return NewCatalog(backend, log.NullLogger(), WithClock(clock.Now)), clock
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{
			Title:        "13 рейс",
			MediaURL:     "http://multiki.arjlover.net/multiki/13.reis.avi",
			ThumbnailURL: "http://multiki.arjlover.net/thumbs/13.reis.jpg",
			DetailURL:    "http://multiki.arjlover.net/info/13.reis.avi.html",
			Duration:     "00:09:44",
			Plot:         "Длительность: 00:09:44 · Размер: 107 MB · 640x480",
			Size:         "106639360",
			Resolution:   "640x480",
		},
		{
			Title:    "Ёжик в тумане",
			MediaURL: "http://multiki.arjlover.net/multiki/ezhik.mp4",
		},
	}
}

func TestCatalog_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.Record
	}{
		{"empty", []domain.Record{}},
		{"unicode and metadata", sampleRecords()},
		{"empty thumbnail", []domain.Record{{Title: "x", MediaURL: "https://s/x.mkv"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCatalog(t, NewMemoryBackend())
			require.NoError(t, c.Save(tt.records))

			got, ok := c.Load()
			require.True(t, ok)
			if diff := cmp.Diff(tt.records, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalog_TTLBoundary(t *testing.T) {
	c, clock := newTestCatalog(t, NewMemoryBackend())
	require.NoError(t, c.Save(sampleRecords()))

	clock.now = baseTime.Add(24*time.Hour - time.Second)
	_, ok := c.Load()
	assert.True(t, ok, "23h59m59s old snapshot should be fresh")

	clock.now = baseTime.Add(24*time.Hour + time.Second)
	_, ok = c.Load()
	assert.False(t, ok, "24h00m01s old snapshot should be stale")

	_, err := c.LoadSnapshot()
	assert.ErrorIs(t, err, ErrStale, "stale snapshot is kept")
}

func TestCatalog_CustomTTL(t *testing.T) {
	clock := &fakeClock{now: baseTime}
	c := NewCatalog(NewMemoryBackend(), log.NullLogger(), WithClock(clock.Now), WithTTL(time.Hour))
	require.NoError(t, c.Save(sampleRecords()))

	clock.now = baseTime.Add(61 * time.Minute)
	_, ok := c.Load()
	assert.False(t, ok)
}

func TestCatalog_LoadMissing(t *testing.T) {
	c, _ := newTestCatalog(t, NewMemoryBackend())

	got, ok := c.Load()
	assert.False(t, ok)
	assert.Nil(t, got)

	_, err := c.LoadSnapshot()
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
}

func TestCatalog_CorruptDocuments(t *testing.T) {
	ts := baseTime.Format(time.RFC3339Nano)
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "{{{ definitely not json"},
		{"truncated", `{"timestamp": "` + ts + `", "records": [`},
		{"missing timestamp", `{"records": []}`},
		{"bad timestamp", `{"timestamp": "yesterday", "records": []}`},
		{"missing records", `{"timestamp": "` + ts + `"}`},
		{"records wrong type", `{"timestamp": "` + ts + `", "records": {"a": 1}}`},
		{"blank title", `{"timestamp": "` + ts + `", "records": [{"title": " ", "url": "http://s/a.avi", "extension": ".avi", "thumbnail": ""}]}`},
		{"relative url", `{"timestamp": "` + ts + `", "records": [{"title": "a", "url": "/a.avi", "extension": ".avi", "thumbnail": ""}]}`},
		{"disallowed extension", `{"timestamp": "` + ts + `", "records": [{"title": "a", "url": "http://s/a.txt", "extension": ".txt", "thumbnail": ""}]}`},
		{"extension mismatch", `{"timestamp": "` + ts + `", "records": [{"title": "a", "url": "http://s/a.avi", "extension": ".mp4", "thumbnail": ""}]}`},
		{"future timestamp", `{"timestamp": "` + baseTime.Add(time.Hour).Format(time.RFC3339Nano) + `", "records": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			require.NoError(t, backend.Write([]byte(tt.doc)))
			c, _ := newTestCatalog(t, backend)

			_, err := c.LoadSnapshot()
			assert.ErrorIs(t, err, ErrCorrupt)

			got, ok := c.Load()
			assert.False(t, ok)
			assert.Nil(t, got)

			_, err = backend.Read()
			assert.ErrorIs(t, err, domain.ErrNoSnapshot, "corrupt snapshot is deleted on load")
		})
	}
}

func TestCatalog_SmallClockSkewTolerated(t *testing.T) {
	backend := NewMemoryBackend()
	doc := fmt.Sprintf(`{"timestamp": %q, "records": []}`, baseTime.Add(time.Minute).Format(time.RFC3339Nano))
	require.NoError(t, backend.Write([]byte(doc)))
	c, _ := newTestCatalog(t, backend)

	got, ok := c.Load()
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCatalog_LegacyDocument(t *testing.T) {
	backend := NewMemoryBackend()
	local := baseTime.Add(-time.Hour).In(time.Local)
	doc := fmt.Sprintf(`{
  "timestamp": %q,
  "cartoons": [
    {"title": "Ну, погоди!", "url": "http://s/nu.pogodi.avi", "extension": ".avi", "thumbnail": ""}
  ]
}`, local.Format("2006-01-02T15:04:05.000000"))
	require.NoError(t, backend.Write([]byte(doc)))
	c, _ := newTestCatalog(t, backend)

	got, ok := c.Load()
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Ну, погоди!", got[0].Title)
	assert.Equal(t, ".avi", got[0].Extension())
}

func TestCatalog_SaveRejectsInvalidRecord(t *testing.T) {
	c, _ := newTestCatalog(t, NewMemoryBackend())
	require.NoError(t, c.Save(sampleRecords()))

	err := c.Save([]domain.Record{{Title: "bad", MediaURL: "/relative.avi"}})
	require.Error(t, err)

	got, ok := c.Load()
	require.True(t, ok, "previous snapshot must survive a failed save")
	assert.Len(t, got, 2)
}

func TestCatalog_SaveReplaces(t *testing.T) {
	c, clock := newTestCatalog(t, NewMemoryBackend())
	require.NoError(t, c.Save(sampleRecords()))

	clock.now = baseTime.Add(time.Hour)
	require.NoError(t, c.Save(sampleRecords()[:1]))

	snap, err := c.LoadSnapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
	assert.True(t, snap.Timestamp.Equal(clock.now))
}

func TestCatalog_Clear(t *testing.T) {
	c, _ := newTestCatalog(t, NewMemoryBackend())

	require.NoError(t, c.Clear(), "clearing a missing snapshot succeeds")

	require.NoError(t, c.Save(sampleRecords()))
	require.NoError(t, c.Clear())
	_, ok := c.Load()
	assert.False(t, ok)
}

func TestCatalog_ImplementsCatalogStore(t *testing.T) {
	var _ domain.CatalogStore = (*Catalog)(nil)
}
