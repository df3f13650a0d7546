// Package dedupe tracks record fingerprints so repeated imports of the same
// client row are processed at most once.
package dedupe

import (
	"context"
	"sync"
)

// Default bound on remembered fingerprints.
const defaultMaxSize = 50_000

// Deduper records seen fingerprints for at-most-once intake.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so the record can be retried, e.g. after
	// the queue rejected it.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of remembered fingerprints.
	Size() int64
}

// ringDeduper implements Deduper with a map for membership and a fixed-size
// ring of insertion order for eviction. When the bound is reached the
// oldest fingerprint is forgotten first. The map value is the id's ring
// slot, so Unrecord can clear its slot without scanning; a non-empty slot
// therefore always names a live id. A bound of zero or less means
// unbounded, with -1 stored as the slot.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]int
	ring    []string
	next    int
	maxSize int
}

// New creates a deduper with configuration options.
func New(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	slot := -1
	if d.maxSize > 0 {
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
		}
		d.ring[d.next] = id
		slot = d.next
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[id] = slot
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.ring[slot] = ""
	}
}

func (d *ringDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
