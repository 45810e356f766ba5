package store

import (
	"sync"

	"github.com/mmcdole/multiki/internal/domain"
)

// Backend stores one opaque snapshot document. Write must replace the
// document atomically: readers see either the old or the new document.
type Backend interface {
	// Read returns the document, or an error matching domain.ErrNoSnapshot.
	Read() ([]byte, error)
	Write(data []byte) error
	// Remove deletes the document; a missing document is not an error.
	Remove() error
}

// MemoryBackend keeps the document in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Read() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, domain.ErrNoSnapshot
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemoryBackend) Write(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	m.data = buf
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Remove() error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
