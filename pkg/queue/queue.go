// Package queue implements the pending queue: an ordered sequence of package
// URLs awaiting (re)installation.
//
// Duplicates are permitted. Repeated enqueues cause repeated add attempts,
// and each successful add removes one occurrence.
package queue

// Queue is a FIFO of URLs. It is not safe for concurrent use.
type Queue struct {
	urls []string
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends url.
func (q *Queue) Enqueue(url string) {
	q.urls = append(q.urls, url)
}

// Front returns the earliest URL without removing it.
func (q *Queue) Front() (string, bool) {
	if len(q.urls) == 0 {
		return "", false
	}
	return q.urls[0], true
}

// DequeueFront removes and returns the earliest URL.
func (q *Queue) DequeueFront() (string, bool) {
	url, ok := q.Front()
	if ok {
		q.urls = q.urls[1:]
	}
	return url, ok
}

// Contains reports whether url is queued.
func (q *Queue) Contains(url string) bool {
	return q.index(url) >= 0
}

// Remove deletes the first occurrence of url and reports whether one existed.
func (q *Queue) Remove(url string) bool {
	i := q.index(url)
	if i < 0 {
		return false
	}
	q.urls = append(q.urls[:i], q.urls[i+1:]...)
	return true
}

// RemoveAll deletes every occurrence of url and returns how many were removed.
func (q *Queue) RemoveAll(url string) int {
	kept := q.urls[:0]
	for _, u := range q.urls {
		if u != url {
			kept = append(kept, u)
		}
	}
	n := len(q.urls) - len(kept)
	q.urls = kept
	return n
}

// IsEmpty reports whether the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return len(q.urls) == 0
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return len(q.urls)
}

// Items returns a copy of the queued URLs, front first.
func (q *Queue) Items() []string {
	out := make([]string, len(q.urls))
	copy(out, q.urls)
	return out
}

func (q *Queue) index(url string) int {
	for i, u := range q.urls {
		if u == url {
			return i
		}
	}
	return -1
}
