package webhook

import "sync"

// Deduper collapses repeated deliveries of the same user id. It keeps a
// bounded FIFO window of recently seen ids, so non-adjacent duplicates are
// caught as long as they land within the window. Best-effort only; Slack
// does not guarantee exactly-once delivery and neither does this.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
}

// NewDeduper creates a deduper remembering up to size ids. Size must be
// positive.
func NewDeduper(size int) *Deduper {
	if size <= 0 {
		size = 1
	}
	return &Deduper{
		seen: make(map[string]struct{}, size),
		ring: make([]string, 0, size),
	}
}

// Seen reports whether id was already recorded, recording it if not.
func (d *Deduper) Seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if len(d.ring) < cap(d.ring) {
		d.ring = append(d.ring, id)
	} else {
		delete(d.seen, d.ring[d.next])
		d.ring[d.next] = id
		d.next = (d.next + 1) % cap(d.ring)
	}
	d.seen[id] = struct{}{}
	return false
}
