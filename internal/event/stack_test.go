// Copyright 2025 James Ross
package event

import "testing"

func TestStackToEventRollsUpFrames(t *testing.T) {
	s := NewStack()
	s.Push(&Event{System: "sys", Component: "comp", Name: "base"})
	s.Push(&Event{Name: "one"})
	s.Push(&Event{Name: "two"})

	rolled := s.ToEvent()
	if rolled.System != "sys" || rolled.Component != "comp" {
		t.Fatalf("expected bottom-frame defaults to survive roll-up, got %+v", rolled)
	}
	if rolled.Name != "base.one.two" {
		t.Fatalf("expected canonicalized name, got %q", rolled.Name)
	}
}

func TestStackEnterPushesAndExitPopsExactlyOneFrame(t *testing.T) {
	s := NewStack()
	s.Push(&Event{Name: "base"})

	pushed, exit := s.Enter(&Event{Name: "nested"})
	if pushed.Name != "nested" {
		t.Fatalf("expected Enter to return the pushed frame, got %+v", pushed)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 frames after Enter, got %d", s.Len())
	}

	_, innerExit := s.Enter(&Event{Name: "inner"})
	if s.Len() != 3 {
		t.Fatalf("expected 3 frames after reentering, got %d", s.Len())
	}
	innerExit()
	if s.Len() != 2 {
		t.Fatalf("expected 2 frames after inner exit, got %d", s.Len())
	}

	exit()
	if s.Len() != 1 {
		t.Fatalf("expected 1 frame after outer exit, got %d", s.Len())
	}
	if s.Top().Name != "base" {
		t.Fatalf("expected base frame remaining on top, got %+v", s.Top())
	}
}

func TestStackGetQueriesRolledUpEvent(t *testing.T) {
	s := NewStack()
	s.Push(&Event{System: "sys", Name: "base"})
	s.Push(&Event{Name: "child"})

	if got := s.Get("system"); got != "sys" {
		t.Fatalf("expected rolled-up system, got %v", got)
	}
	if got := s.Get("name"); got != "base.child" {
		t.Fatalf("expected rolled-up name, got %v", got)
	}
}
