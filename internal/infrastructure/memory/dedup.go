package memory

import (
	"context"
	"sync"
)

const DefaultDedupCapacity = 1000

// DedupSet is a bounded set of fingerprints. When an insert would exceed
// the capacity, the oldest half is evicted first, so recent entries always
// survive. It is a best-effort window, not a durable record.
type DedupSet struct {
	mu    sync.Mutex
	cap   int
	keys  map[string]struct{}
	order []string
}

func NewDedupSet(capacity int) *DedupSet {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &DedupSet{
		cap:   capacity,
		keys:  make(map[string]struct{}, capacity),
		order: make([]string, 0, capacity),
	}
}

func (d *DedupSet) Has(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.keys[key]
	return ok, nil
}

func (d *DedupSet) Add(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.keys[key]; ok {
		return nil
	}
	if len(d.order) >= d.cap {
		d.evictOldestHalf()
	}
	d.keys[key] = struct{}{}
	d.order = append(d.order, key)
	return nil
}

func (d *DedupSet) evictOldestHalf() {
	drop := (len(d.order) + 1) / 2
	for _, k := range d.order[:drop] {
		delete(d.keys, k)
	}
	kept := make([]string, len(d.order)-drop, d.cap)
	copy(kept, d.order[drop:])
	d.order = kept
}

func (d *DedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

func (d *DedupSet) Cap() int { return d.cap }
