// Copyright 2025 James Ross
package adapter

import (
	"path/filepath"
	"testing"
)

func TestFromURLDispatch(t *testing.T) {
	cases := map[string]string{
		"list://":        "list",
		"std://out":      "std://out",
		"std://err":      "std://err",
		"noop://":        "noop",
		"default://":     "noop",
		"":                "noop",
		"file:///tmp/x":  "file:/tmp/x",
		"amqp://guest@h": "amqp:emit.events",
	}
	for url, wantPrefix := range cases {
		a, err := FromURL(url)
		if err != nil {
			t.Fatalf("FromURL(%q): unexpected error %v", url, err)
		}
		if got := a.Name(); got != wantPrefix {
			t.Fatalf("FromURL(%q).Name() = %q, want %q", url, got, wantPrefix)
		}
	}
}

func TestFromURLUnknownScheme(t *testing.T) {
	if _, err := FromURL("carrier-pigeon://nest"); err == nil {
		t.Fatal("expected error for unknown adapter URL")
	}
}

func TestListAdapterRecordsPayloads(t *testing.T) {
	a := NewList()
	if err := a.Open(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Emit([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 1 {
		t.Fatalf("expected 1 recorded payload, got %d", a.Len())
	}
}

func TestListAdapterClosedRejectsEmit(t *testing.T) {
	a := NewList()
	if err := a.Emit([]byte("x")); !IsClosedErr(err) {
		t.Fatalf("expected ClosedErr before Open, got %v", err)
	}
}

func TestMultiAdapterOpenRollsBackOnPartialFailure(t *testing.T) {
	good := NewList()
	// bad can never open: its file lives in a directory that does not exist.
	bad := NewFile(filepath.Join(t.TempDir(), "missing-dir", "events.log"))
	m := NewMulti(good, bad)
	if err := m.Open(); !IsClosedErr(err) {
		t.Fatalf("expected ClosedErr when one child fails to open, got %v", err)
	}
	if !good.Closed() {
		t.Fatalf("expected the child that did open to be closed again")
	}
	if !m.Closed() {
		t.Fatalf("expected the multi adapter to stay closed")
	}
}

func TestFaultAdapterReturnsConfiguredError(t *testing.T) {
	a := NewFault(FaultPermanent)
	_ = a.Open()
	err := a.Emit([]byte("x"))
	if !IsEmitPermanentErr(err) {
		t.Fatalf("expected permanent emit error, got %v", err)
	}
}
