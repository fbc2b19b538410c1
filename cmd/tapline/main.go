package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/silverpine/tapline/internal/capture"
	"github.com/silverpine/tapline/internal/config"
	"github.com/silverpine/tapline/internal/logging"
	"github.com/silverpine/tapline/internal/model"
	"github.com/silverpine/tapline/internal/relay"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	handler := relay.NewHandler(cfg)
	defer handler.Close()

	dispatcher := relay.NewDispatcher(handler,
		relay.WithBatchSize(cfg.BatchSize),
		relay.WithBatchTimeout(cfg.BatchTimeout),
		relay.WithQueueCapacity(cfg.QueueCapacity),
	)

	factory := model.NewFactory(cfg.SessionID, cfg.DeviceID)

	ctor, err := capture.Get(cfg.Source)
	if err != nil {
		log.Fatalf("failed to resolve capture source: %v (available: %v)", err, capture.Sources())
	}
	source := ctor(factory)
	var filter capture.Filter
	if probe, ok := source.(capture.AppReporter); ok {
		filter = capture.ExcludeApps(cfg.ExcludedApps, probe.ActiveApp)
	}
	pump := capture.NewPump(source, dispatcher, capture.Options{
		TrackMouseMove: cfg.TrackMouseMove,
		Filter:         filter,
	})

	// Producers get their own context so they stop first on shutdown,
	// letting the queue drain before the dispatcher flushes and exits.
	producerCtx, stopProducers := context.WithCancel(context.Background())
	defer stopProducers()

	runErr := make(chan error, 1)
	go func() { runErr <- dispatcher.Run(context.Background()) }()

	go func() {
		if err := pump.Run(producerCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("capture source stopped", "error", err)
		}
	}()

	if cfg.ScreenshotEnabled {
		scheduler, err := capture.NewScreenshotScheduler(cfg.ScreenshotInterval, capture.StubCapture, factory, dispatcher)
		if err != nil {
			log.Fatalf("failed to create screenshot scheduler: %v", err)
		}
		go func() {
			if err := scheduler.Run(producerCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("screenshot scheduler stopped", "error", err)
			}
		}()
	}

	slog.Info("tapline running",
		"source", cfg.Source,
		"session_id", cfg.SessionID,
		"batch_size", cfg.BatchSize,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig.String())

	stopProducers()
	dispatcher.Close()
	if err := <-runErr; err != nil {
		slog.Error("dispatcher exited with error", "error", err)
	}
}
