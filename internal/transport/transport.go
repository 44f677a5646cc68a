// Copyright 2025 James Ross
// Package transport wires a queue, an adapter factory and a worker into the
// single object an emitter talks to: Transport.Emit hands a serialized
// event to the queue and returns immediately; delivery happens on the
// worker's own schedule.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flyingrobots/go-emit/internal/adapter"
	"github.com/flyingrobots/go-emit/internal/queue"
	"github.com/flyingrobots/go-emit/internal/worker"
	"go.uber.org/zap"
)

// ErrStopped is returned by Emit when the transport has not been started,
// or was stopped/halted and not since restarted.
var ErrStopped = fmt.Errorf("transport: worker is not running")

// Config mirrors the timing knobs from the external configuration surface.
type Config struct {
	MaxFlushTime    time.Duration
	MaxStoppingTime time.Duration
	MaxWorkTime     time.Duration
	Worker          worker.Config
}

// Transport exclusively owns its Queue, Adapter factory and Worker. A
// recursive-feeling lock (sync.Mutex; Go goroutines are not reentrant the
// way Python threads are, so callers must not call back into Transport
// methods from within a held lock) serializes start/stop/halt/flush state
// transitions. Emit does not hold this lock while putting onto the queue,
// so producers are never serialized against each other.
type Transport struct {
	mu      sync.Mutex
	cfg     Config
	q       *queue.Queue
	factory adapter.Adapter
	w       *worker.Worker
	log     *zap.Logger

	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New builds a Transport around the given adapter factory.
func New(cfg Config, factory adapter.Adapter, log *zap.Logger) *Transport {
	q := queue.New(cfg.MaxWorkTime)
	return &Transport{
		cfg:     cfg,
		q:       q,
		factory: factory,
		w:       worker.New(cfg.Worker, q, factory, log),
		log:     log,
	}
}

// Worker exposes the underlying worker for health/metrics wiring.
func (t *Transport) Worker() *worker.Worker { return t.w }

// Start launches the worker in a background goroutine (ModeThreaded) or
// marks the transport ready for synchronous ProcessOne calls
// (ModeCooperative). It is idempotent: starting an already-running
// transport is a no-op.
func (t *Transport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.running = true

	if t.cfg.Worker.Mode != worker.ModeThreaded {
		return
	}
	t.done = make(chan struct{})
	go func() {
		defer close(t.done)
		if err := t.w.Run(ctx); err != nil {
			t.log.Warn("transport: worker stopped with error", zap.Error(err))
		}
	}()
}

// Stop requests a graceful drain: every already-queued item has its backoff
// state reset (made eligible again) before a Stop control message is pushed
// to the queue's tail, so nothing mid-backoff is skipped on the way out.
// Stop then waits up to timeout (or cfg.MaxStoppingTime if timeout is zero)
// for the worker to exit. If the queue is still non-empty at timeout, the
// remaining backlog is dropped outright and a warning is logged.
func (t *Transport) Stop(timeout time.Duration) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	if timeout <= 0 {
		timeout = t.cfg.MaxStoppingTime
	}
	q, done, cancel := t.q, t.done, t.cancel
	t.running = false
	t.mu.Unlock()

	q.Reset()
	q.PutTail(worker.StopPayload())
	if done == nil {
		cancel()
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
		stat := q.Stat()
		if stat.Total > 0 {
			t.log.Warn("transport: graceful stop timed out, dropping queued items", zap.Int("dropped", stat.Total))
		}
		cancel()
		q.Clear()
	}
}

// Halt stops immediately: no drain, no flush, and the queue's contents are
// left exactly as they are (any items still present remain present; a
// caller inspecting the queue right after Halt returns should still see
// them there).
func (t *Transport) Halt() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	q, cancel := t.q, t.cancel
	t.running = false
	t.mu.Unlock()

	q.PutHead(worker.HaltPayload())
	cancel()
}

// Flush pushes a flush marker to the tail of the queue so everything
// already queued drains first, then sleeps for the full timeout. It does
// not wait for the worker to confirm that the flush happened.
func (t *Transport) Flush(timeout time.Duration) {
	if timeout <= 0 {
		timeout = t.cfg.MaxFlushTime
	}
	t.q.PutTail(worker.FlushPayload())
	time.Sleep(timeout)
}

// Emit enqueues a serialized event payload without holding the transport
// lock, so producers emitting concurrently never serialize against each
// other here.
func (t *Transport) Emit(payload []byte) error {
	t.mu.Lock()
	running := t.running
	mode := t.cfg.Worker.Mode
	t.mu.Unlock()
	if !running {
		return ErrStopped
	}
	t.q.Put(queueItemFor(payload))
	if mode == worker.ModeCooperative {
		return t.w.ProcessOne(context.Background())
	}
	return nil
}
