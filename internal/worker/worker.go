// Copyright 2025 James Ross
// Package worker drains a queue.Queue through an adapter.Adapter. A single
// Worker type covers both scheduling styles the original library expressed
// as separate classes: Mode selects whether the worker runs its own
// goroutine loop (ModeThreaded) or is driven one item at a time by a caller
// that already owns a goroutine (ModeCooperative).
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flyingrobots/go-emit/internal/adapter"
	"github.com/flyingrobots/go-emit/internal/backoff"
	"github.com/flyingrobots/go-emit/internal/health"
	"github.com/flyingrobots/go-emit/internal/obs"
	"github.com/flyingrobots/go-emit/internal/queue"
	"go.uber.org/zap"
)

// Mode selects the worker's scheduling strategy.
type Mode int

const (
	// ModeThreaded runs Count goroutines that pull from the queue in a
	// loop, stopping only on a Stop/Halt control message or context
	// cancellation. This is the usual production mode.
	ModeThreaded Mode = iota
	// ModeCooperative processes exactly one item per call to ProcessOne,
	// driven by a caller's own goroutine (e.g. a test harness, or a
	// single-threaded embedder that wants synchronous delivery).
	ModeCooperative
)

// ErrHalted is returned from Run when the worker received a Halt control
// message: unlike Stop, Halt means the worker should not be restarted
// without operator intervention.
var ErrHalted = errors.New("worker: halted")

// Config bundles the tunables a Worker needs beyond its queue and adapter.
type Config struct {
	Mode       Mode
	Count      int // goroutines to spawn in ModeThreaded; ignored otherwise
	HealthWindow, HealthCooldown time.Duration
	HealthFailureThreshold       float64
	HealthMinSamples             int
}

// DefaultConfig returns sane single-threaded defaults.
func DefaultConfig() Config {
	return Config{
		Mode: ModeThreaded, Count: 1,
		HealthWindow: 30 * time.Second, HealthCooldown: 5 * time.Second,
		HealthFailureThreshold: 0.5, HealthMinSamples: 5,
	}
}

// Worker drains a queue through one adapter instance per goroutine. It
// holds a back reference to the queue it was built against but never owns
// it; the Transport that constructs a Worker owns the queue's lifecycle.
type Worker struct {
	cfg             Config
	q               *queue.Queue
	factory         adapter.Adapter
	log             *zap.Logger
	health          *health.Monitor
	mu              sync.Mutex
	adapterInstance adapter.Adapter
	adapterTracker  *backoff.Tracker
}

// New builds a Worker that will open fresh copies of factory (via its New
// method) to deliver items popped from q.
func New(cfg Config, q *queue.Queue, factory adapter.Adapter, log *zap.Logger) *Worker {
	return &Worker{
		cfg:     cfg,
		q:       q,
		factory: factory,
		log:     log,
		health:  health.NewMonitor(cfg.HealthWindow, cfg.HealthCooldown, cfg.HealthFailureThreshold, cfg.HealthMinSamples),
	}
}

// Health exposes the adapter health monitor for observability wiring.
func (w *Worker) Health() *health.Monitor { return w.health }

// Run starts the worker. In ModeThreaded it blocks until ctx is canceled or
// a Stop/Halt control message is processed, running cfg.Count goroutines
// against the shared queue. In ModeCooperative it is a programmer error to
// call Run; use ProcessOne instead.
func (w *Worker) Run(ctx context.Context) error {
	if w.cfg.Mode != ModeThreaded {
		return errors.New("worker: Run is only valid in ModeThreaded; use ProcessOne in ModeCooperative")
	}
	count := w.cfg.Count
	if count < 1 {
		count = 1
	}

	errCh := make(chan error, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.WorkersActive.Inc()
			defer obs.WorkersActive.Dec()
			errCh <- w.loop(ctx)
		}()
	}

	healthTicker := time.NewTicker(2 * time.Second)
	defer healthTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-healthTicker.C:
				obs.AdapterHealth.WithLabelValues(w.factory.Name()).Set(float64(w.health.State()))
			}
		}
	}()

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// loop is the threaded-mode goroutine body: open an adapter, drain items
// until a control sentinel or cancellation stops it, then close the
// adapter.
func (w *Worker) loop(ctx context.Context) error {
	inst := w.factory.New()
	tracker := backoff.NewTracker(backoff.Default())
	if err := inst.Open(); err != nil {
		w.log.Warn("worker: initial adapter open failed", obs.Err(err))
		tracker.Attempt()
	}
	defer inst.Close()

	for {
		item, err := w.q.Get(ctx)
		if err != nil {
			return nil
		}
		if ctrl, ok := parseControl(item.Payload); ok {
			switch ctrl {
			case controlStop:
				return nil
			case controlHalt:
				return ErrHalted
			case controlFlush:
				if err := inst.Flush(); err != nil {
					w.log.Warn("worker: flush failed", obs.Err(err))
				}
			}
			continue
		}
		w.deliver(inst, tracker, item)
	}
}

// ProcessOne delivers exactly one item using a lazily-opened shared adapter
// instance. It is the ModeCooperative entry point: a caller with its own
// scheduling loop (or a single synchronous emit call) drains the queue
// itself and invokes ProcessOne per item.
func (w *Worker) ProcessOne(ctx context.Context) error {
	w.mu.Lock()
	if w.adapterInstance == nil {
		w.adapterInstance = w.factory.New()
		w.adapterTracker = backoff.NewTracker(backoff.Default())
		if err := w.adapterInstance.Open(); err != nil {
			w.adapterTracker.Attempt()
			w.mu.Unlock()
			return err
		}
	}
	inst, tracker := w.adapterInstance, w.adapterTracker
	w.mu.Unlock()

	item, err := w.q.Get(ctx)
	if err != nil {
		return err
	}
	if ctrl, ok := parseControl(item.Payload); ok {
		switch ctrl {
		case controlStop, controlHalt:
			return ErrHalted
		case controlFlush:
			return inst.Flush()
		}
		return nil
	}
	w.deliver(inst, tracker, item)
	return nil
}

// checkAdapter is the gate a delivery must clear before deliver calls
// Emit: an adapter that reports itself closed, or whose tracker still has
// outstanding reopen attempts, is only reopened once its tracker has
// expired. A successful open resets the tracker; a failed one leaves it
// armed so the next call backs off further.
func (w *Worker) checkAdapter(inst adapter.Adapter, tracker *backoff.Tracker, name string) error {
	if !inst.Closed() && tracker.Attempts() == 0 {
		return nil
	}
	if !tracker.Expired() {
		return &adapter.ClosedErr{}
	}
	tracker.Attempt()
	if err := inst.Open(); err != nil {
		w.log.Warn("worker: adapter reopen failed", obs.Err(err))
		return &adapter.ClosedErr{Cause: err}
	}
	tracker.Reset()
	obs.AdapterReopens.WithLabelValues(name).Inc()
	return nil
}

// deliver attempts one emit and classifies the result per the adapter error
// taxonomy: success and permanent failure both retire the item; a closed or
// transient error requeues it with its attempt counter advanced. The
// adapter itself is never opened here except through checkAdapter, which
// paces reopen attempts against tracker's own backoff schedule.
func (w *Worker) deliver(inst adapter.Adapter, tracker *backoff.Tracker, item *queue.Item) {
	name := inst.Name()
	if err := w.checkAdapter(inst, tracker, name); err != nil {
		w.health.Record(false)
		w.q.Requeue(item)
		obs.EventsRequeued.WithLabelValues(name).Inc()
		return
	}

	start := time.Now()
	err := inst.Emit(item.Payload)
	obs.DeliveryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		w.health.Record(true)
		obs.EventsDelivered.WithLabelValues(name).Inc()
	case adapter.IsEmitPermanentErr(err):
		w.health.Record(true)
		obs.EventsDropped.WithLabelValues(name, "permanent").Inc()
		w.log.Warn("worker: dropping event after permanent adapter error", obs.Err(err))
	case adapter.IsClosedErr(err):
		w.health.Record(false)
		item.Attempt()
		w.q.Requeue(item)
		obs.EventsRequeued.WithLabelValues(name).Inc()
	default:
		w.health.Record(false)
		item.Attempt()
		w.q.Requeue(item)
		obs.EventsRequeued.WithLabelValues(name).Inc()
	}
}
