// Copyright 2025 James Ross
package adapter

import "sync"

// MultiAdapter fans a payload out to several adapters. It is meant for
// testing and low-stakes duplication, not for guaranteed multi-destination
// delivery: Open rolls back and fails closed if any child fails to open, and
// Emit tries every child but only the last error is surfaced.
type MultiAdapter struct {
	mu       sync.Mutex
	Adapters []Adapter
	closed   bool
}

func NewMulti(adapters ...Adapter) *MultiAdapter {
	return &MultiAdapter{Adapters: adapters, closed: true}
}

func (a *MultiAdapter) New() Adapter {
	fresh := make([]Adapter, len(a.Adapters))
	for i, sub := range a.Adapters {
		fresh[i] = sub.New()
	}
	return NewMulti(fresh...)
}

func (a *MultiAdapter) Name() string { return "multi" }

func (a *MultiAdapter) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	opened := make([]Adapter, 0, len(a.Adapters))
	for _, sub := range a.Adapters {
		if err := sub.Open(); err != nil {
			continue
		}
		opened = append(opened, sub)
	}
	if len(opened) != len(a.Adapters) {
		for _, sub := range opened {
			_ = sub.Close()
		}
		return &ClosedErr{}
	}
	a.closed = false
	return nil
}

func (a *MultiAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for _, sub := range a.Adapters {
		_ = sub.Close()
	}
	return nil
}

func (a *MultiAdapter) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return &ClosedErr{}
	}
	for _, sub := range a.Adapters {
		if err := sub.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (a *MultiAdapter) Emit(payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return &ClosedErr{}
	}
	if len(a.Adapters) == 0 {
		return &EmitErr{}
	}
	var last error
	for _, sub := range a.Adapters {
		if err := sub.Emit(payload); err != nil {
			last = err
		}
	}
	return last
}

func (a *MultiAdapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return true
	}
	for _, sub := range a.Adapters {
		if sub.Closed() {
			return true
		}
	}
	return false
}
