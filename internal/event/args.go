// Copyright 2025 James Ross
package event

import (
	"fmt"
	"time"
)

// Arg is a tagged-union constructor argument, reimplementing the dynamic
// positional-argument absorption of the original library as an explicit,
// statically-typed sum type instead of runtime type switching on interface{}.
type Arg struct {
	str   *string
	mapv  map[string]interface{}
	ev    *Event
	tm    *time.Time
	tags  []string
	isTag bool
}

// Str wraps a positional string argument.
func Str(s string) Arg { return Arg{str: &s} }

// Map wraps a positional mapping argument.
func Map(m map[string]interface{}) Arg { return Arg{mapv: m} }

// Ev wraps a positional Event argument.
func Ev(e *Event) Arg { return Arg{ev: e} }

// At wraps a positional timestamp argument.
func At(t time.Time) Arg { return Arg{tm: &t} }

// TagsArg wraps a positional iterable-of-strings argument, appended to Tags.
func TagsArg(tags ...string) Arg { return Arg{tags: tags, isTag: true} }

// positionalStringKeys is the exact absorption order from the original
// library: the first bare string becomes Name, the second Operation, and so
// on. A sixth positional string is an error. This ordering is surprising
// but load-bearing for compatibility and must not be "fixed".
var positionalStringKeys = []string{"name", "operation", "component", "system", "tid"}

// FromArgs builds an Event by absorbing positional Args left to right per
// the rule above, then merging kwargs (only non-empty values win).
func FromArgs(args []Arg, kwargs map[string]interface{}) (*Event, error) {
	e := New()
	keys := append([]string(nil), positionalStringKeys...)

	for _, a := range args {
		switch {
		case a.str != nil:
			if len(keys) == 0 {
				return nil, fmt.Errorf("event: too many positional string arguments, a 6th is not allowed")
			}
			key := keys[0]
			keys = keys[1:]
			assignStringField(e, key, *a.str)
		case a.ev != nil:
			e = e.Update(a.ev)
		case a.mapv != nil:
			e = e.Update(mapToEvent(a.mapv))
		case a.tm != nil:
			e.Time = *a.tm
		case a.isTag:
			e.AddTags(a.tags...)
		default:
			return nil, fmt.Errorf("event: unrecognized positional argument")
		}
	}

	for k, v := range kwargs {
		applyKwarg(e, k, v)
	}
	return e, nil
}

func assignStringField(e *Event, key, value string) {
	switch key {
	case "name":
		e.Name = value
	case "operation":
		e.Operation = value
	case "component":
		e.Component = value
	case "system":
		e.System = value
	case "tid":
		e.TID = value
	}
}

func mapToEvent(m map[string]interface{}) *Event {
	e := New()
	for k, v := range m {
		applyKwarg(e, k, v)
	}
	return e
}

func applyKwarg(e *Event, key string, v interface{}) {
	switch key {
	case "tid":
		if s, ok := v.(string); ok && s != "" {
			e.TID = s
		}
	case "system":
		if s, ok := v.(string); ok && s != "" {
			e.System = s
		}
	case "component":
		if s, ok := v.(string); ok && s != "" {
			e.Component = s
		}
	case "operation":
		if s, ok := v.(string); ok && s != "" {
			e.Operation = s
		}
	case "name":
		if s, ok := v.(string); ok && s != "" {
			e.Name = s
		}
	case "replay":
		if s, ok := v.(string); ok && s != "" {
			e.Replay = s
		}
	case "time":
		if t, ok := v.(time.Time); ok && !t.IsZero() {
			e.Time = t
		}
	case "tags":
		if ss, ok := v.([]string); ok {
			e.AddTags(ss...)
		}
	case "fields":
		if m, ok := v.(map[string]interface{}); ok {
			for fk, fv := range m {
				e.Fields[fk] = fv
			}
		}
	case "data":
		if m, ok := v.(map[string]interface{}); ok {
			for dk, dv := range m {
				e.Data[dk] = dv
			}
		}
	}
}
