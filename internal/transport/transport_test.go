// Copyright 2025 James Ross
package transport

import (
	"testing"
	"time"

	"github.com/flyingrobots/go-emit/internal/adapter"
	"github.com/flyingrobots/go-emit/internal/worker"
	"go.uber.org/zap"
)

func TestEmitBeforeStartReturnsStopped(t *testing.T) {
	list := adapter.NewList()
	tr := New(Config{MaxFlushTime: time.Second, MaxStoppingTime: time.Second, Worker: worker.DefaultConfig()}, list, zap.NewNop())
	if err := tr.Emit([]byte(`{"a":1}`)); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestStartEmitStopDeliversThreaded(t *testing.T) {
	list := adapter.NewList()
	cfg := worker.DefaultConfig()
	tr := New(Config{MaxFlushTime: time.Second, MaxStoppingTime: time.Second, Worker: cfg}, list, zap.NewNop())
	tr.Start()
	if err := tr.Emit([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.Stop(time.Second)
	if list.Len() != 1 {
		t.Fatalf("expected 1 delivered payload after stop, got %d", list.Len())
	}
}

func TestHaltLeavesQueueContentsInPlace(t *testing.T) {
	faulty := adapter.NewFault(adapter.FaultEmit)
	cfg := worker.DefaultConfig()
	tr := New(Config{MaxFlushTime: time.Second, MaxStoppingTime: time.Second, MaxWorkTime: 20 * time.Millisecond, Worker: cfg}, faulty, zap.NewNop())
	tr.Start()
	for i := 0; i < 10; i++ {
		if err := tr.Emit([]byte(`{"n":1}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	tr.Halt()
	time.Sleep(50 * time.Millisecond)
	if stat := tr.q.Stat(); stat.Total == 0 {
		t.Fatalf("expected items to remain queued after halt, got 0")
	}
}

func TestCooperativeModeDeliversSynchronously(t *testing.T) {
	list := adapter.NewList()
	cfg := worker.DefaultConfig()
	cfg.Mode = worker.ModeCooperative
	tr := New(Config{MaxFlushTime: time.Second, MaxStoppingTime: time.Second, Worker: cfg}, list, zap.NewNop())
	tr.Start()
	if err := tr.Emit([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("expected synchronous delivery under cooperative mode, got %d", list.Len())
	}
}
