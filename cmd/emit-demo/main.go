// Copyright 2025 James Ross
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flyingrobots/go-emit/internal/adapter"
	"github.com/flyingrobots/go-emit/internal/config"
	"github.com/flyingrobots/go-emit/internal/emitter"
	"github.com/flyingrobots/go-emit/internal/event"
	"github.com/flyingrobots/go-emit/internal/health"
	"github.com/flyingrobots/go-emit/internal/obs"
	"github.com/flyingrobots/go-emit/internal/transport"
	"github.com/flyingrobots/go-emit/internal/worker"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	var cmd string
	var configPath string
	var adapterURL string
	var system, component string
	var showVersion bool
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&cmd, "cmd", "serve", "Command to run: serve|ping")
	fs.StringVar(&configPath, "config", "config/config.yaml", "Path to YAML config")
	fs.StringVar(&adapterURL, "adapter-url", "", "Override adapter_url from config")
	fs.StringVar(&system, "system", "demo", "Default system name stamped on every event")
	fs.StringVar(&component, "component", "emit-demo", "Default component name stamped on every event")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	_ = fs.Parse(os.Args[1:])

	if showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if adapterURL != "" {
		cfg.AdapterURL = adapterURL
	}

	logger, err := obs.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	factory, err := adapter.FromURL(cfg.AdapterURL)
	if err != nil {
		logger.Fatal("unrecognized adapter_url", obs.Err(err))
	}

	mode := worker.ModeThreaded
	if cfg.Worker.Class == "cooperative" {
		mode = worker.ModeCooperative
	}
	tr := transport.New(transport.Config{
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
	}, factory, logger)

	readiness := func(context.Context) error {
		if tr.Worker().Health().State() == health.Open {
			return fmt.Errorf("adapter health is open")
		}
		return nil
	}
	httpSrv := obs.StartHTTPServer(cfg, readiness, tr.Worker().Health())
	defer func() { _ = httpSrv.Shutdown(context.Background()) }()

	tr.Start()

	em, err := emitter.New(tr, logger, []event.Arg{event.Str(""), event.Str(""), event.Str(component), event.Str(system)},
		emitter.WithDebug(cfg.Debug), emitter.WithPretty(cfg.Pretty))
	if err != nil {
		logger.Fatal("failed to build emitter", obs.Err(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", obs.String("signal", sig.String()))
		cancel()
		select {
		case sig2 := <-sigCh:
			logger.Warn("second signal received, exiting immediately", obs.String("signal", sig2.String()))
			os.Exit(1)
		case <-time.After(5 * time.Second):
		}
	}()

	switch cmd {
	case "ping":
		tid, err := em.Ping()
		if err != nil {
			logger.Fatal("ping failed", obs.Err(err))
		}
		tr.Flush(cfg.MaxFlushTime)
		tr.Stop(cfg.MaxStoppingTime)
		fmt.Println(tid)
	case "serve":
		<-ctx.Done()
		tr.Stop(cfg.MaxStoppingTime)
	default:
		logger.Fatal("unknown cmd", obs.String("cmd", cmd))
	}
}
