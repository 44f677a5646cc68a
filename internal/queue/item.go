// Copyright 2025 James Ross
// Package queue implements the priority retry queue that sits between the
// emitter and the worker: a serialized payload waits here, backing off
// between delivery attempts, until an adapter accepts it or gives up on it.
package queue

import (
	"time"

	"github.com/flyingrobots/go-emit/internal/backoff"
)

// Item wraps one serialized event payload with its own retry tracker. Items
// are retained across failed emits (requeued) and discarded on success or
// on a permanent-failure classification.
type Item struct {
	Payload []byte
	tracker *backoff.Tracker
	kind    kind
}

type kind int

const (
	kindHead kind = iota
	kindNormal
	kindTail
)

// NewItem wraps payload with a fresh tracker on the given schedule.
func NewItem(payload []byte, schedule backoff.Schedule) *Item {
	return &Item{Payload: payload, tracker: backoff.NewTracker(schedule), kind: kindNormal}
}

// HeadItem builds a sentinel that always sorts before every normal item,
// regardless of its own backoff state. Used to deliver the halt control
// message to the front of the queue.
func HeadItem(payload []byte) *Item {
	return &Item{Payload: payload, kind: kindHead}
}

// TailItem builds a sentinel that always sorts after every normal item.
// Used for the stop and flush control messages, which must drain behind
// everything already queued.
func TailItem(payload []byte) *Item {
	return &Item{Payload: payload, kind: kindTail}
}

// Attempts returns the retry count recorded so far; sentinels report 0.
func (i *Item) Attempts() int {
	if i.tracker == nil {
		return 0
	}
	return i.tracker.Attempts()
}

// LastAttempt returns the last attempt time; sentinels report the zero time.
func (i *Item) LastAttempt() time.Time {
	if i.tracker == nil {
		return time.Time{}
	}
	return i.tracker.LastAttempt()
}

// Expired reports whether the item has waited long enough to be retried.
// Sentinels are always expired: they never wait.
func (i *Item) Expired() bool {
	if i.tracker == nil {
		return true
	}
	return i.tracker.Expired()
}

// Attempt records a delivery attempt against this item's tracker.
func (i *Item) Attempt() {
	if i.tracker != nil {
		i.tracker.Attempt()
	}
}

// resetTracker clears this item's attempts/last-attempt state, making it
// immediately eligible again. Sentinels have no tracker and are unaffected.
func (i *Item) resetTracker() {
	if i.tracker != nil {
		i.tracker.Reset()
	}
}

// less orders items for the queue's internal sort: head sentinels first,
// tail sentinels last, normal items by (attempts, last attempt).
func less(a, b *Item) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if a.kind != kindNormal {
		return false
	}
	if a.Attempts() != b.Attempts() {
		return a.Attempts() < b.Attempts()
	}
	return a.LastAttempt().Before(b.LastAttempt())
}
