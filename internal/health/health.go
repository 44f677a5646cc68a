// Copyright 2025 James Ross
package health

import (
	"encoding/json"
	"sync"
	"time"
)

// State describes how an adapter has been behaving over the sliding window.
// Unlike a classic circuit breaker, State never gates whether a worker may
// attempt delivery: that decision belongs to the tracker's own backoff
// schedule. State only drives health telemetry and log noise reduction.
type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case HalfOpen:
		return "half_open"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// MarshalJSON renders State as its String() form rather than the underlying
// int, so a Summary serialized to a /readyz response is self-explanatory.
func (s State) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

type result struct {
	t  time.Time
	ok bool
}

// Monitor observes a rolling window of adapter emit outcomes and classifies
// the adapter's health as Closed, HalfOpen or Open, purely for telemetry and
// log-rate decisions. Nothing in the worker ever asks a Monitor for
// permission to attempt delivery — that decision belongs entirely to the
// per-adapter backoff.Tracker (see worker.checkAdapter). Because nothing
// gates on it, there is no separate "probe" call: an Open monitor whose
// cooldown has elapsed lazily transitions to HalfOpen the next time Record
// is called, using that outcome itself as the decisive sample.
type Monitor struct {
	mu             sync.Mutex
	state          State
	window         time.Duration
	cooldown       time.Duration
	failureThresh  float64
	minSamples     int
	lastTransition time.Time
	results        []result
}

// NewMonitor builds a health monitor. window bounds how far back outcomes
// are considered; cooldown is how long an Open monitor waits before the
// next Record call is treated as a fresh trial; failureThresh is the
// failure rate (0..1) that trips Open; minSamples is the minimum number of
// outcomes needed before the failure rate is trusted.
func NewMonitor(window, cooldown time.Duration, failureThresh float64, minSamples int) *Monitor {
	return &Monitor{state: Closed, window: window, cooldown: cooldown, failureThresh: failureThresh, minSamples: minSamples, lastTransition: time.Now()}
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Summary is a point-in-time snapshot of the monitor's advisory state,
// cheap enough to call from an HTTP readiness handler or a periodic log
// line without the caller juggling State/rate/sample-count separately.
type Summary struct {
	State       State
	FailureRate float64
	Samples     int
	Since       time.Time
}

// Summary reports the monitor's full advisory state under a single lock
// acquisition.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := len(m.results)
	fails := 0
	for _, r := range m.results {
		if !r.ok {
			fails++
		}
	}
	var rate float64
	if total > 0 {
		rate = float64(fails) / float64(total)
	}
	return Summary{State: m.state, FailureRate: rate, Samples: total, Since: m.lastTransition}
}

// Record feeds the outcome of one emit attempt into the sliding window and
// advances the state machine.
func (m *Monitor) Record(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if m.state == Open && now.Sub(m.lastTransition) >= m.cooldown {
		m.state = HalfOpen
		m.lastTransition = now
	}

	cutoff := now.Add(-m.window)
	filtered := m.results[:0]
	for _, r := range m.results {
		if r.t.After(cutoff) {
			filtered = append(filtered, r)
		}
	}
	m.results = append(filtered, result{t: now, ok: ok})

	total := len(m.results)
	if total < m.minSamples {
		if m.state == HalfOpen {
			if ok {
				m.state = Closed
			} else {
				m.state = Open
			}
			m.lastTransition = now
		}
		return
	}
	fails := 0
	for _, r := range m.results {
		if !r.ok {
			fails++
		}
	}
	rate := float64(fails) / float64(total)
	switch m.state {
	case Closed:
		if rate >= m.failureThresh {
			m.state = Open
			m.lastTransition = now
		}
	case HalfOpen:
		if ok {
			m.state = Closed
		} else {
			m.state = Open
		}
		m.lastTransition = now
	case Open:
	}
}
