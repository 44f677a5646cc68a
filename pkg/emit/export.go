// Copyright 2025 James Ross
// Package emit is the public, stable surface of the library: it re-exports
// the pieces an embedding application needs (Emitter, Event, Arg
// constructors, adapter/transport wiring) without exposing internal/ package
// paths that are free to change shape between releases.
package emit

import (
	"github.com/flyingrobots/go-emit/internal/adapter"
	"github.com/flyingrobots/go-emit/internal/config"
	"github.com/flyingrobots/go-emit/internal/emitter"
	"github.com/flyingrobots/go-emit/internal/event"
	"github.com/flyingrobots/go-emit/internal/transport"
	"github.com/flyingrobots/go-emit/internal/worker"
	"go.uber.org/zap"
)

type (
	// Event is a single structured observation.
	Event = event.Event
	// Arg is a tagged-union constructor argument accepted by Emit.
	Arg = event.Arg
	// Emitter is the application-facing facade over a Transport.
	Emitter = emitter.Emitter
	// Option configures an Emitter at construction time.
	Option = emitter.Option
	// Adapter is a pluggable event sink.
	Adapter = adapter.Adapter
	// Transport owns the queue/adapter/worker pipeline an Emitter talks to.
	Transport = transport.Transport
	// Config is the full set of recognized EMIT_-prefixed settings.
	Config = config.Config
)

var (
	// Str wraps a positional string argument.
	Str = event.Str
	// Map wraps a positional mapping argument.
	Map = event.Map
	// Ev wraps a positional Event argument.
	Ev = event.Ev
	// At wraps a positional timestamp argument.
	At = event.At
	// Tags wraps a positional iterable-of-strings argument.
	Tags = event.TagsArg

	// WithDebug propagates Emit errors instead of swallowing them.
	WithDebug = emitter.WithDebug
	// WithPretty pretty-prints outgoing JSON.
	WithPretty = emitter.WithPretty
	// WithCallback registers a callback invoked on every emitted event.
	WithCallback = emitter.WithCallback

	// FromURL dispatches an adapter_url string to a concrete Adapter.
	FromURL = adapter.FromURL

	// LoadConfig reads configuration from an optional YAML file plus
	// EMIT_-prefixed environment overrides.
	LoadConfig = config.Load
)

// NewTransport builds a Transport from cfg against the given adapter
// factory. The caller owns Start/Stop.
func NewTransport(cfg *Config, factory Adapter, log *zap.Logger) *Transport {
	mode := worker.ModeThreaded
	if cfg.Worker.Class == "cooperative" {
		mode = worker.ModeCooperative
	}
	return transport.New(transport.Config{
		MaxFlushTime:    cfg.MaxFlushTime,
		MaxStoppingTime: cfg.MaxStoppingTime,
		MaxWorkTime:     cfg.MaxWorkTime,
		Worker: worker.Config{
			Mode:                   mode,
			Count:                  cfg.Worker.Count,
			HealthWindow:           cfg.Health.Window,
			HealthCooldown:         cfg.Health.CooldownPeriod,
			HealthFailureThreshold: cfg.Health.FailureThreshold,
			HealthMinSamples:       cfg.Health.MinSamples,
		},
	}, factory, log)
}

// NewEmitter builds an Emitter over tr, seeding its bottom stack frame with
// defaults built from args.
func NewEmitter(tr *Transport, log *zap.Logger, defaults []Arg, opts ...Option) (*Emitter, error) {
	return emitter.New(tr, log, defaults, opts...)
}
