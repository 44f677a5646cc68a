// Copyright 2025 James Ross
package event

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes the event to the canonical wire format: timestamps as
// ISO-8601 with a trailing Z, tag sets as arrays. MarshalJSON itself has no
// fallback: a value in Data that cannot be encoded makes it return an error.
// ToJSON catches that error and encodes an error record instead.
func (e *Event) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"tid":       e.TID,
		"time":      e.Time.UTC().Format("2006-01-02T15:04:05.000Z"),
		"system":    e.System,
		"component": e.Component,
		"operation": e.Operation,
		"name":      e.Name,
		"tags":      e.TagList(),
	}
	if e.Replay != "" {
		out["replay"] = e.Replay
	}
	if len(e.Fields) > 0 {
		out["fields"] = e.Fields
	}
	if len(e.Data) > 0 {
		out["data"] = e.Data
	}
	return json.Marshal(out)
}

// ToJSON finalizes and serializes the event. pretty enables two-space
// indentation, matching the debug/pretty configuration switch.
func (e *Event) ToJSON(pretty bool) ([]byte, error) {
	f := e.finalize()
	b, err := json.Marshal(f)
	if err != nil {
		return errorRecord(err, pretty)
	}
	if !pretty {
		return b, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return b, nil
	}
	return buf.Bytes(), nil
}

func errorRecord(cause error, pretty bool) ([]byte, error) {
	rec := map[string]string{"error": "encode_error", "message": cause.Error()}
	if pretty {
		b, err := json.MarshalIndent(rec, "", "  ")
		return b, err
	}
	b, err := json.Marshal(rec)
	return b, err
}
