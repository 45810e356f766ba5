package player

import (
	"strconv"
	"strings"

	"github.com/mmcdole/multiki/internal/domain"
)

// Find locates a record by its 1-based position in records or by its media URL.
func Find(records []domain.Record, key string) (domain.Record, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Record{}, false
	}

	if n, err := strconv.Atoi(key); err == nil {
		if n < 1 || n > len(records) {
			return domain.Record{}, false
		}
		return records[n-1], true
	}

	for _, r := range records {
		if r.MediaURL == key {
			return r, true
		}
	}
	return domain.Record{}, false
}

// Resolve returns the media URL to hand to the player for key; ok reports
// whether key named a catalog record.
func Resolve(records []domain.Record, key string) (url string, ok bool) {
	r, ok := Find(records, key)
	if !ok {
		return "", false
	}
	return r.MediaURL, true
}
