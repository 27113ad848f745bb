package asset

// Queue collects references in first-seen order, dropping repeats.
type Queue struct {
	items []string
	seen  map[string]bool
	idx   int // current read position
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Add enqueues each ref that hasn't been seen before. Empty refs are ignored.
func (q *Queue) Add(refs ...string) {
	for _, ref := range refs {
		if ref == "" || q.seen[ref] {
			continue
		}
		q.seen[ref] = true
		q.items = append(q.items, ref)
	}
}

// HasNext returns true if there are unprocessed references.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed reference and advances the pointer.
func (q *Queue) Next() string {
	ref := q.items[q.idx]
	q.idx++
	return ref
}

// Len returns the number of unique references seen.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns every unique reference in first-seen order.
func (q *Queue) All() []string {
	return q.items
}
