// Package dedupe tracks identity keys so a record is accepted at most once.
package dedupe

import (
	"context"
	"strconv"
	"sync"
)

// Deduper records seen identity keys.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool
}

// Key builds the (Player, Year) identity of a season record.
func Key(player string, year int) string {
	return player + "|" + strconv.Itoa(year)
}

// inMemoryDeduper remembers every key it is given; nothing is ever evicted, so
// a duplicate is always reported.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{seen: make(map[string]struct{})}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}
