// Package history keeps an in-memory record of recent detection runs.
package history

import (
	"sync"

	"github.com/marinelab/underwater-detect/models"
)

// DefaultCapacity matches the original retention of 50 runs.
const DefaultCapacity = 50

// Buffer is a bounded FIFO of history entries. Once full, appending evicts
// the oldest entry. Safe for concurrent use; nothing survives a restart.
type Buffer struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
	cap     int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{cap: capacity}
}

// Append records a run, evicting the oldest entry when the buffer is full.
func (b *Buffer) Append(entry models.HistoryEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry)
	if len(b.entries) > b.cap {
		b.entries = b.entries[len(b.entries)-b.cap:]
	}
}

// Snapshot returns the entries oldest-first.
func (b *Buffer) Snapshot() []models.HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.HistoryEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
