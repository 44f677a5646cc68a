// Copyright 2025 James Ross
package obs

import (
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// NewLogger builds the logger go-emit uses for its own operational
// diagnostics (adapter reopens, dropped events, worker exits) — never for
// the events an embedding application emits, which travel through the
// adapter pipeline instead. Every line carries subsystem="emit" so it is
// easy for an embedder to separate library diagnostics from its own logs.
func NewLogger(level string) (*zap.Logger, error) {
    lvl := zapcore.InfoLevel
    switch strings.ToLower(level) {
    case "debug":
        lvl = zapcore.DebugLevel
    case "warn":
        lvl = zapcore.WarnLevel
    case "error":
        lvl = zapcore.ErrorLevel
    }
    cfg := zap.NewProductionConfig()
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    cfg.Encoding = "json"
    cfg.InitialFields = map[string]interface{}{"subsystem": "emit"}
    // A worker thrashing open/close against a dead adapter logs at a rate
    // tied to event volume, not wall-clock time; sample past the first
    // burst so a sink outage can't also flood stderr.
    cfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
    return cfg.Build()
}

// Convenience typed fields
func String(k, v string) zap.Field { return zap.String(k, v) }
func Int(k string, v int) zap.Field { return zap.Int(k, v) }
func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }
func Err(err error) zap.Field { return zap.Error(err) }
