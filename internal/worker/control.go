// Copyright 2025 James Ross
package worker

import "bytes"

// Control messages are sentinel payloads pushed to the queue's head (Halt)
// or tail (Stop, Flush) so a worker goroutine sees them without any
// out-of-band signaling channel. A worker loop recognizes the exact byte
// sequence and never mistakes it for a real event payload, since real
// payloads are always JSON objects and never start with this marker.
var controlPrefix = []byte("\x00emit-control:")

type controlKind int

const (
	controlStop controlKind = iota
	controlHalt
	controlFlush
)

var controlNames = map[controlKind][]byte{
	controlStop:  append(append([]byte(nil), controlPrefix...), "stop"...),
	controlHalt:  append(append([]byte(nil), controlPrefix...), "halt"...),
	controlFlush: append(append([]byte(nil), controlPrefix...), "flush"...),
}

func controlPayload(kind controlKind) []byte {
	return controlNames[kind]
}

func parseControl(payload []byte) (controlKind, bool) {
	if !bytes.HasPrefix(payload, controlPrefix) {
		return 0, false
	}
	for kind, marker := range controlNames {
		if bytes.Equal(payload, marker) {
			return kind, true
		}
	}
	return 0, false
}

// StopPayload, HaltPayload and FlushPayload are exported so a Transport can
// push them onto its queue without reaching into this package's internals.
func StopPayload() []byte  { return controlPayload(controlStop) }
func HaltPayload() []byte  { return controlPayload(controlHalt) }
func FlushPayload() []byte { return controlPayload(controlFlush) }
