// Copyright 2025 James Ross
package event

import "testing"

func TestCanonicalizeSuppressesTailStutter(t *testing.T) {
	if got := Canonicalize("one.two.three", "foo"); got != "one.two.three.foo" {
		t.Fatalf("got %q", got)
	}
	if got := Canonicalize("one.two.three", "three"); got != "one.two.three" {
		t.Fatalf("expected tail stutter suppressed, got %q", got)
	}
	if got := Canonicalize("", "a"); got != "a" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	b, n := "one.two", "three"
	once := Canonicalize(b, n)
	twice := Canonicalize(once, n)
	if once != twice {
		t.Fatalf("expected idempotent, got %q then %q", once, twice)
	}
}

func TestUpdateMergeReplacesName(t *testing.T) {
	left := New()
	left.Name = "base"
	left.System = "svc"
	right := New()
	right.Name = "override"
	merged := left.Update(right)
	if merged.Name != "override" {
		t.Fatalf("update-merge should replace name, got %q", merged.Name)
	}
	if merged.System != "svc" {
		t.Fatalf("update-merge should keep left's non-overridden fields")
	}
}

func TestOrMergeComposesName(t *testing.T) {
	left := New()
	left.Name = "base"
	right := New()
	right.Name = "child"
	merged := left.Or(right)
	if merged.Name != "base.child" {
		t.Fatalf("expected composed name, got %q", merged.Name)
	}
}

func TestValidateRequiresSystemComponentOperationName(t *testing.T) {
	e := New()
	if _, err := e.Validate(); err == nil {
		t.Fatal("expected validation error on empty event")
	}
	e.System = "svc"
	e.Component = "c"
	e.Name = "hello"
	f, err := e.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Operation != "c" {
		t.Fatalf("expected operation to default to component, got %q", f.Operation)
	}
}

func TestValidateFieldsTypedSuffix(t *testing.T) {
	e := New()
	e.System, e.Component, e.Name = "svc", "c", "n"
	e.Fields["count_long"] = 5
	if _, err := e.Validate(); err != nil {
		t.Fatalf("expected long field to validate, got %v", err)
	}
	e.Fields["count_long"] = "not a number"
	if _, err := e.Validate(); err == nil {
		t.Fatal("expected typed suffix validation to reject a string for a long field")
	}
}

func TestValidateArrayFields(t *testing.T) {
	e := New()
	e.System, e.Component, e.Name = "svc", "c", "n"
	e.Fields["tags_array_string"] = []string{"a", "b"}
	if _, err := e.Validate(); err != nil {
		t.Fatalf("expected array_string field to validate, got %v", err)
	}
	e.Fields["tags_array_string"] = []int{1, 2}
	if _, err := e.Validate(); err == nil {
		t.Fatal("expected array element type mismatch to fail validation")
	}
}

func TestFromArgsPositionalStringAbsorption(t *testing.T) {
	e, err := FromArgs([]Arg{Str("hello"), Str("op"), Str("comp"), Str("sys"), Str("trace")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Name != "hello" || e.Operation != "op" || e.Component != "comp" || e.System != "sys" || e.TID != "trace" {
		t.Fatalf("positional absorption mismatch: %+v", e)
	}
}

func TestFromArgsRejectsSixthString(t *testing.T) {
	args := []Arg{Str("a"), Str("b"), Str("c"), Str("d"), Str("e"), Str("f")}
	if _, err := FromArgs(args, nil); err == nil {
		t.Fatal("expected error on 6th positional string")
	}
}

func TestFromArgsMapMergeOverridesWithNonEmptyValue(t *testing.T) {
	e, err := FromArgs([]Arg{Str("name1"), Map(map[string]interface{}{"name": "name2", "system": "svc"})}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Name != "name2" {
		t.Fatalf("a non-empty map value should win over the existing value, got %q", e.Name)
	}
	if e.System != "svc" {
		t.Fatalf("expected system filled in from map, got %q", e.System)
	}
}
