// Copyright 2025 James Ross
package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// defaultWakeInterval is used when New is given a non-positive interval.
const defaultWakeInterval = 500 * time.Millisecond

// ErrEmpty is returned by Get when ctx is done before an eligible item
// becomes available.
var ErrEmpty = errors.New("queue: empty")

// Stat is a snapshot of queue occupancy, used for metrics and tests.
type Stat struct {
	Total   int
	Waiting int // items eligible for Get now (never attempted, or backoff expired)
}

// Queue is a priority retry queue. Items are popped in order of (kind,
// attempts, last attempt): head sentinels first, then normal items least-
// retried and longest-waiting first, then tail sentinels. Get blocks until
// an eligible item exists or ctx is done.
type Queue struct {
	mu           sync.Mutex
	cond         *sync.Cond
	items        []*Item
	closed       bool
	wakeInterval time.Duration
}

// New returns an empty queue. wakeInterval bounds how long Get may block
// without any Put/Close/ctx-cancel activity before it re-scans for an item
// whose backoff has since expired; a non-positive value falls back to
// defaultWakeInterval. This mirrors spec's requirement that a worker
// blocking on the queue wakes periodically even without traffic, so a
// requeued item becomes reachable again as soon as its backoff elapses.
func New(wakeInterval time.Duration) *Queue {
	if wakeInterval <= 0 {
		wakeInterval = defaultWakeInterval
	}
	q := &Queue{wakeInterval: wakeInterval}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put enqueues an item and wakes any blocked Get.
func (q *Queue) Put(item *Item) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// PutHead enqueues a head sentinel payload, sorting ahead of everything.
func (q *Queue) PutHead(payload []byte) { q.Put(HeadItem(payload)) }

// PutTail enqueues a tail sentinel payload, sorting behind everything.
func (q *Queue) PutTail(payload []byte) { q.Put(TailItem(payload)) }

// Get blocks until an eligible item (attempts==0 or Expired()) is found, ctx
// is done, or the queue is closed with nothing eligible left. Unlike a plain FIFO
// pop, Get scans for the earliest-eligible item rather than only looking at
// the head, since items can be mid-backoff while a later item is ready.
func (q *Queue) Get(ctx context.Context) (*Item, error) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(q.wakeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				q.cond.Broadcast()
				return
			case <-ticker.C:
				// No Put/Close/cancel may ever happen again if the only
				// item left is backing off; re-check periodically so its
				// expiry is noticed without relying on new traffic.
				q.cond.Broadcast()
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if item, ok := q.popEligibleLocked(); ok {
			return item, nil
		}
		if q.closed {
			return nil, ErrEmpty
		}
		if ctx.Err() != nil {
			return nil, ErrEmpty
		}
		q.cond.Wait()
	}
}

// popEligibleLocked removes and returns the first eligible item, if any.
// Callers must hold q.mu.
func (q *Queue) popEligibleLocked() (*Item, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	sort.SliceStable(q.items, func(i, j int) bool { return less(q.items[i], q.items[j]) })
	for i, it := range q.items {
		if it.Attempts() == 0 || it.Expired() {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return it, true
		}
	}
	return nil, false
}

// Requeue puts a failed item back, having already recorded its attempt.
func (q *Queue) Requeue(item *Item) { q.Put(item) }

// Stat reports a point-in-time occupancy snapshot.
func (q *Queue) Stat() Stat {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := Stat{Total: len(q.items)}
	for _, it := range q.items {
		if it.Attempts() == 0 || it.Expired() {
			s.Waiting++
		}
	}
	return s
}

// Clear discards every queued item outright. Used when a drain deadline is
// exceeded and the remaining backlog must simply be dropped.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// Reset zeroes the attempts/last-attempt tracker on every queued item,
// making all of them immediately eligible again, without discarding any of
// them. Sentinels are untouched since they carry no tracker.
func (q *Queue) Reset() {
	q.mu.Lock()
	for _, it := range q.items {
		it.resetTracker()
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Close marks the queue closed: a blocked Get returns ErrEmpty once no
// eligible item remains rather than blocking forever.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
