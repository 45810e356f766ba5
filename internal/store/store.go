package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/multiki/internal/config"
	"github.com/mmcdole/multiki/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bolt layout
var (
	bucketCatalog = []byte("catalog")
	keySnapshot   = []byte("snapshot")
)

// BoltDBFileName is the database file the bolt backend owns.
const BoltDBFileName = "multiki.db"

// BoltBackend stores the snapshot document in a BoltDB file.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBoltBackend opens or creates the database at path.
func OpenBoltBackend(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCatalog)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Read() ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCatalog)
		if bucket == nil {
			return nil
		}
		if v := bucket.Get(keySnapshot); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, domain.ErrNoSnapshot
	}
	return data, nil
}

func (b *BoltBackend) Write(data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketCatalog)
		if err != nil {
			return err
		}
		return bucket.Put(keySnapshot, data)
	})
}

func (b *BoltBackend) Remove() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCatalog)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(keySnapshot)
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}

// Open builds the catalog store described by cfg. Each source URL gets its
// own directory under cfg.Dir so switching sources never mixes snapshots.
func Open(cfg config.CacheConfig, sourceURL string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []Option{WithTTL(cfg.TTL)}

	if cfg.Backend == config.CacheBackendMemory || cfg.Dir == "" {
		logger.Debug("using memory catalog store")
		return NewCatalog(NewMemoryBackend(), logger, opts...), nil
	}

	dir := cfg.Dir
	if sourceURL != "" {
		dir = filepath.Join(cfg.Dir, hashSourceURL(sourceURL))
	}

	switch cfg.Backend {
	case config.CacheBackendBolt:
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		backend, err := OpenBoltBackend(filepath.Join(dir, BoltDBFileName))
		if err != nil {
			return nil, err
		}
		// A JSON snapshot left by the file backend would never be read again
		cleanupFileSnapshot(dir)
		logger.Debug("using bolt catalog store", "dir", dir)
		return NewCatalog(backend, logger, opts...), nil
	case config.CacheBackendFile, "":
		logger.Debug("using file catalog store", "dir", dir)
		return NewCatalog(NewFileBackend(DirLocation(dir)), logger, opts...), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func hashSourceURL(sourceURL string) string {
	normalized := strings.TrimRight(strings.ToLower(sourceURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func cleanupFileSnapshot(dir string) {
	os.Remove(filepath.Join(dir, SnapshotFileName)) // Ignore errors
}
