// Copyright 2025 James Ross
package transport

import (
	"github.com/flyingrobots/go-emit/internal/backoff"
	"github.com/flyingrobots/go-emit/internal/queue"
)

var schedule = backoff.Default()

func queueItemFor(payload []byte) *queue.Item {
	return queue.NewItem(payload, schedule)
}
