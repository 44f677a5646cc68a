// Copyright 2025 James Ross
package worker

import (
	"context"
	"testing"
	"time"

	"github.com/flyingrobots/go-emit/internal/adapter"
	"github.com/flyingrobots/go-emit/internal/backoff"
	"github.com/flyingrobots/go-emit/internal/queue"
	"go.uber.org/zap"
)

func TestRunDeliversToListAdapter(t *testing.T) {
	q := queue.New(time.Second)
	q.Put(queue.NewItem([]byte(`{"n":1}`), backoff.Default()))
	list := adapter.NewList()

	cfg := DefaultConfig()
	cfg.Count = 1
	w := New(cfg, q, list, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		q.PutHead(StopPayload())
	}()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("worker did not stop after Stop control message")
	}
	cancel()
	if list.Len() != 1 {
		t.Fatalf("expected 1 delivered payload, got %d", list.Len())
	}
}

func TestRunRequeuesOnTransientFailure(t *testing.T) {
	q := queue.New(time.Second)
	q.Put(queue.NewItem([]byte(`{"n":1}`), backoff.Default()))
	faulty := adapter.NewFault(adapter.FaultEmit)

	cfg := DefaultConfig()
	w := New(cfg, q, faulty, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	stat := q.Stat()
	if stat.Total == 0 {
		t.Fatal("expected the failed item to remain queued for retry")
	}
}

func TestProcessOneCooperativeMode(t *testing.T) {
	q := queue.New(time.Second)
	q.Put(queue.NewItem([]byte(`{"n":1}`), backoff.Default()))
	list := adapter.NewList()

	cfg := DefaultConfig()
	cfg.Mode = ModeCooperative
	w := New(cfg, q, list, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.ProcessOne(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("expected 1 delivered payload, got %d", list.Len())
	}
}
