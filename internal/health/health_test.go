// Copyright 2025 James Ross
package health

import (
	"testing"
	"time"
)

func TestMonitorTransitions(t *testing.T) {
	m := NewMonitor(2*time.Second, 200*time.Millisecond, 0.5, 2)
	if m.State() != Closed {
		t.Fatal("expected closed")
	}
	m.Record(false)
	m.Record(false)
	if m.State() != Open {
		t.Fatal("expected open")
	}
	m.Record(false)
	if m.State() != Open {
		t.Fatal("expected still open before cooldown elapses")
	}
	time.Sleep(250 * time.Millisecond)
	m.Record(true)
	if m.State() != Closed {
		t.Fatal("expected closed: cooldown elapsed and the next outcome succeeded")
	}
	if sum := m.Summary(); sum.State != Closed || sum.Samples == 0 {
		t.Fatalf("expected a non-empty closed summary, got %+v", sum)
	}
}

func TestMonitorStaysClosedUnderThreshold(t *testing.T) {
	m := NewMonitor(time.Second, time.Second, 0.75, 4)
	m.Record(true)
	m.Record(true)
	m.Record(false)
	if m.State() != Closed {
		t.Fatal("expected closed, failure rate below threshold")
	}
}
