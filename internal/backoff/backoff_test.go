// Copyright 2025 James Ross
package backoff

import (
	"testing"
	"time"
)

func TestScheduleGrowsExponentially(t *testing.T) {
	s := Default()
	if got := s.Delta(0); got != 0 {
		t.Fatalf("expected zero delay at attempt 0, got %v", got)
	}
	if got := s.Delta(1); got != 2*time.Second {
		t.Fatalf("expected 2s at attempt 1, got %v", got)
	}
	if got := s.Delta(3); got != 8*time.Second {
		t.Fatalf("expected 8s at attempt 3, got %v", got)
	}
}

func TestScheduleClampsAtMaxAttempts(t *testing.T) {
	s := Default()
	capped := s.Delta(MaxAttempts)
	if got := s.Delta(MaxAttempts + 50); got != capped {
		t.Fatalf("expected delay to clamp at max attempts, got %v want %v", got, capped)
	}
}

func TestTrackerExpiredBeforeFirstAttempt(t *testing.T) {
	tr := NewTracker(Default())
	if !tr.Expired() {
		t.Fatal("a tracker with no attempts should be immediately expired")
	}
}

func TestTrackerNotExpiredImmediatelyAfterAttempt(t *testing.T) {
	tr := NewTracker(Default())
	tr.Attempt()
	if tr.Expired() {
		t.Fatal("tracker should not be expired right after its first retry attempt")
	}
	if tr.Remaining() <= 0 {
		t.Fatal("expected positive remaining wait after first attempt")
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(Default())
	tr.Attempt()
	tr.Attempt()
	tr.Reset()
	if tr.Attempts() != 0 {
		t.Fatalf("expected 0 attempts after reset, got %d", tr.Attempts())
	}
	if !tr.Expired() {
		t.Fatal("expected expired after reset")
	}
}
