// Copyright 2025 James Ross
// Package emitter is the application-facing facade: it owns an event stack
// and a transport, builds events from flexible positional arguments, rolls
// them up against the current scope, and hands the serialized result to the
// transport.
package emitter

import (
	"github.com/flyingrobots/go-emit/internal/event"
	"github.com/flyingrobots/go-emit/internal/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Callback is invoked with the final, validated event before it is
// serialized. A callback may be used for side-channel logging or mirroring
// to another system. Callbacks run synchronously on the emitting goroutine
// before the payload reaches the transport, so a slow callback delays it.
type Callback func(*event.Event)

// Emitter exclusively owns its EventStack. The Transport it talks to is
// supplied externally and its lifecycle (Start/Stop) remains the caller's
// responsibility.
type Emitter struct {
	stack     *event.Stack
	transport *transport.Transport
	callbacks []Callback
	log       *zap.Logger
	debug     bool
	pretty    bool
}

// Option configures an Emitter at construction time.
type Option func(*Emitter)

// WithDebug propagates errors from Emit instead of swallowing them, and
// pretty-prints JSON.
func WithDebug(debug bool) Option { return func(e *Emitter) { e.debug = debug } }

// WithPretty pretty-prints JSON unconditionally.
func WithPretty(pretty bool) Option { return func(e *Emitter) { e.pretty = pretty } }

// WithCallback registers a callback invoked on every emitted event.
func WithCallback(cb Callback) Option {
	return func(e *Emitter) { e.callbacks = append(e.callbacks, cb) }
}

// New builds an Emitter over tr (which the emitter does NOT own: the
// caller remains responsible for Start/Stop), seeding the stack's bottom
// frame with defaults built from args.
func New(tr *transport.Transport, log *zap.Logger, defaults []event.Arg, opts ...Option) (*Emitter, error) {
	e := &Emitter{stack: event.NewStack(), transport: tr, log: log}
	for _, opt := range opts {
		opt(e)
	}
	defaultEvent, err := event.FromArgs(defaults, nil)
	if err != nil {
		return nil, err
	}
	e.stack.Push(defaultEvent)
	return e, nil
}

// Scope is the handle Emit, Enter and Open return: a nested-context entry
// that starts out closed. Enter pushes a frame built from the originating
// call's own args/kwargs and emits the paired opening event rolled up
// against it; Exit emits the paired closing event and pops that frame. A
// Scope that Enter never opens (the common case for a plain, non-nested
// emit whose returned Scope the caller simply discards) has no further
// effect and its frame is never pushed.
type Scope struct {
	e                   *Emitter
	args                []event.Arg
	kwargs              map[string]interface{}
	enterName, exitName string
	entered             bool
}

func (e *Emitter) newScope(args []event.Arg, kwargs map[string]interface{}, enterName, exitName string) *Scope {
	return &Scope{e: e, args: args, kwargs: kwargs, enterName: enterName, exitName: exitName}
}

// Enter opens the scope: it pushes a frame built from the args/kwargs the
// scope was created with, then emits the paired opening event rolled up
// against that frame (so the frame's own name prefixes it). Calling Enter
// on an already-entered or nil Scope is a no-op.
func (s *Scope) Enter() error {
	if s == nil || s.entered {
		return nil
	}
	frame, err := event.FromArgs(s.args, s.kwargs)
	if err != nil {
		return s.e.handle(err)
	}
	s.e.stack.Push(frame)
	s.entered = true
	return s.e.emitOnce([]event.Arg{event.Str(s.enterName)}, nil)
}

// Exit emits the paired closing event and pops the frame Enter pushed. It
// is a no-op on a Scope that was never entered, so discarding a plain
// Emit's returned Scope without calling Enter first is always safe.
func (s *Scope) Exit() error {
	if s == nil || !s.entered {
		return nil
	}
	s.entered = false
	err := s.e.emitOnce([]event.Arg{event.Str(s.exitName)}, nil)
	s.e.stack.Pop()
	return err
}

// Enter opens a nested scope directly: it pushes a frame built from
// args/kwargs and immediately emits the paired "enter" event, rolled up
// against the new frame's own name. The returned Scope's Exit emits the
// matching "exit" event and pops the frame.
func (e *Emitter) Enter(args []event.Arg, kwargs map[string]interface{}) (*Scope, error) {
	s := e.newScope(args, kwargs, "enter", "exit")
	if err := s.Enter(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open behaves like Enter but names the paired events "open"/"close"
// instead of "enter"/"exit", matching the alternate naming convention the
// original library offered alongside Enter.
func (e *Emitter) Open(args []event.Arg, kwargs map[string]interface{}) (*Scope, error) {
	s := e.newScope(args, kwargs, "open", "close")
	if err := s.Enter(); err != nil {
		return nil, err
	}
	return s, nil
}

// Emit builds an event from args/kwargs, rolls it up against the current
// stack via OR-merge, validates, invokes callbacks, serializes to JSON and
// hands the payload to the transport. Validation, serialization and
// callback errors are swallowed and logged unless debug is set, in which
// case they propagate. It returns a scoped-entry handle for nested
// context: the Scope starts out closed, and entering it (Scope.Enter) pushes
// a frame built from this same call's args/kwargs and emits a paired
// "enter" event namespaced under it, so a nested Emit inside the open
// scope is automatically rolled up under this call's name.
func (e *Emitter) Emit(args []event.Arg, kwargs map[string]interface{}) (*Scope, error) {
	if err := e.emitOnce(args, kwargs); err != nil {
		return nil, err
	}
	return e.newScope(args, kwargs, "enter", "exit"), nil
}

// emitOnce performs the roll-up/validate/callback/serialize/deliver sequence
// for a single event, with no scope side effects. Emit, Ping and Scope all
// build on this.
func (e *Emitter) emitOnce(args []event.Arg, kwargs map[string]interface{}) error {
	built, err := event.FromArgs(args, kwargs)
	if err != nil {
		return e.handle(err)
	}
	rolled := e.stack.ToEvent().Or(built)
	validated, err := rolled.Validate()
	if err != nil {
		return e.handle(err)
	}
	for _, cb := range e.callbacks {
		cb(validated)
	}
	payload, err := validated.ToJSON(e.debug || e.pretty)
	if err != nil {
		return e.handle(err)
	}
	if err := e.transport.Emit(payload); err != nil {
		return e.handle(err)
	}
	return nil
}

func (e *Emitter) handle(err error) error {
	if e.debug {
		return err
	}
	if e.log != nil {
		e.log.Debug("emitter: swallowed error", zap.Error(err))
	}
	return nil
}

// Ping emits three events (open, ping, close) under a fixed system/component
// used to smoke-test a transport end to end, returning the trace id used.
// It delivers directly via emitOnce rather than Emit: a ping is never a
// nested scope, so there is no enter/exit pair to open.
func (e *Emitter) Ping() (string, error) {
	tid := uuid.NewString()
	kwargs := map[string]interface{}{"system": "test.emit", "component": "emitter", "operation": "ping", "tid": tid}
	if err := e.emitOnce([]event.Arg{event.Str("open")}, kwargs); err != nil {
		return tid, err
	}
	if err := e.emitOnce([]event.Arg{event.Str("ping")}, kwargs); err != nil {
		return tid, err
	}
	if err := e.emitOnce([]event.Arg{event.Str("close")}, kwargs); err != nil {
		return tid, err
	}
	return tid, nil
}
