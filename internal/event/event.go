// Copyright 2025 James Ross
// Package event implements the structured, validated observation that flows
// from an application through the emitter, queue, and adapter to a sink.
package event

import (
	"fmt"
	"strings"
	"time"
)

// Event is a single structured observation. Required keys are tracked as
// plain struct fields; Fields, Data and Tags hold the optional, freer-form
// content. An Event is mutable until it is validated at emission time.
type Event struct {
	TID       string
	Time      time.Time
	System    string
	Component string
	Operation string
	Name      string
	Tags      map[string]struct{}
	Replay    string
	Fields    map[string]interface{}
	Data      map[string]interface{}
}

// New returns an empty event stamped with the current time.
func New() *Event {
	return &Event{Time: time.Now(), Tags: map[string]struct{}{}, Fields: map[string]interface{}{}, Data: map[string]interface{}{}}
}

// TagList returns Tags as a sorted-free, insertion-order-free slice; callers
// that need determinism should sort the result themselves.
func (e *Event) TagList() []string {
	out := make([]string, 0, len(e.Tags))
	for t := range e.Tags {
		out = append(out, t)
	}
	return out
}

// AddTags merges non-empty, non-duplicate tag strings into the event.
func (e *Event) AddTags(tags ...string) {
	if e.Tags == nil {
		e.Tags = map[string]struct{}{}
	}
	for _, t := range tags {
		if t == "" {
			continue
		}
		e.Tags[t] = struct{}{}
	}
}

// Clone returns a deep-enough copy so that mutating the copy never affects
// the receiver's maps.
func (e *Event) Clone() *Event {
	c := &Event{
		TID: e.TID, Time: e.Time, System: e.System, Component: e.Component,
		Operation: e.Operation, Name: e.Name, Replay: e.Replay,
		Tags:   make(map[string]struct{}, len(e.Tags)),
		Fields: make(map[string]interface{}, len(e.Fields)),
		Data:   make(map[string]interface{}, len(e.Data)),
	}
	for k := range e.Tags {
		c.Tags[k] = struct{}{}
	}
	for k, v := range e.Fields {
		c.Fields[k] = v
	}
	for k, v := range e.Data {
		c.Data[k] = v
	}
	return c
}

func nonEmpty(s string) bool { return s != "" }

// mergeFrom applies the merge semantics shared by Update and Or: non-empty
// values in other overwrite the receiver's; name handling is supplied by the
// caller via nameFn.
func (e *Event) mergeFrom(other *Event, nameFn func(base, incoming string) string) *Event {
	out := e.Clone()
	if nonEmpty(other.TID) {
		out.TID = other.TID
	}
	if !other.Time.IsZero() {
		out.Time = other.Time
	}
	if nonEmpty(other.System) {
		out.System = other.System
	}
	if nonEmpty(other.Component) {
		out.Component = other.Component
	}
	if nonEmpty(other.Operation) {
		out.Operation = other.Operation
	}
	out.Name = nameFn(out.Name, other.Name)
	if nonEmpty(other.Replay) {
		out.Replay = other.Replay
	}
	for _, t := range other.TagList() {
		out.AddTags(t)
	}
	for k, v := range other.Fields {
		out.Fields[k] = v
	}
	for k, v := range other.Data {
		out.Data[k] = v
	}
	return out
}

// Update performs an update-merge ("+"): name is replaced, not composed.
func (e *Event) Update(other *Event) *Event {
	return e.mergeFrom(other, func(base, incoming string) string {
		if nonEmpty(incoming) {
			return incoming
		}
		return base
	})
}

// Or performs a name-canonicalizing merge ("|"), used to roll up a stack.
func (e *Event) Or(other *Event) *Event {
	return e.mergeFrom(other, Canonicalize)
}

// Canonicalize composes a base name with an incoming one, suppressing tail
// stutter: canonicalize("one.two.three", "three") == "one.two.three".
func Canonicalize(base, incoming string) string {
	if incoming == "" || base == incoming || strings.HasSuffix(base, "."+incoming) {
		return base
	}
	if base == "" || strings.HasPrefix(incoming, base) {
		return incoming
	}
	return base + "." + incoming
}

// finalize applies the pre-serialization defaulting rule: operation falls
// back to component when blank.
func (e *Event) finalize() *Event {
	c := e.Clone()
	if c.Operation == "" && c.Component != "" {
		c.Operation = c.Component
	}
	return c
}

// ValidationError describes one failure found during Validate.
type ValidationError struct {
	Kind    string
	Key     string
	Message string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("event validation: %s %s: %s", v.Kind, v.Key, v.Message)
}

func fail(kind, key, msg string) error {
	return &ValidationError{Kind: kind, Key: key, Message: msg}
}

// Validate checks the required-key and typed-field invariants. It returns
// the finalized event (operation defaulted) alongside any error so callers
// can still inspect what would have been sent.
func (e *Event) Validate() (*Event, error) {
	f := e.finalize()
	if f.TID == "" {
		// tid is allowed to be empty at emission time (callers frequently
		// omit it); it is required only in the sense that the key always
		// exists on the struct. No error here mirrors the original's
		// tolerance of an unset trace id.
	}
	if f.System == "" {
		return f, fail("missing", "system", "required key is empty")
	}
	if f.Component == "" {
		return f, fail("missing", "component", "required key is empty")
	}
	if f.Operation == "" {
		return f, fail("missing", "operation", "required key is empty (component was also empty)")
	}
	if f.Name == "" {
		return f, fail("missing", "name", "required key is empty")
	}
	for t := range f.Tags {
		if t == "" {
			return f, fail("invalid", "tags", "tag must be a non-empty string")
		}
	}
	if err := validateFields(f.Fields); err != nil {
		return f, err
	}
	return f, nil
}
