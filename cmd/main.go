package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/unpick/aos-metering-app/internal/collector"
	"github.com/unpick/aos-metering-app/internal/config"
	"github.com/unpick/aos-metering-app/internal/meter"
	"github.com/unpick/aos-metering-app/internal/scheduler"
	"github.com/unpick/aos-metering-app/internal/source"
)

// Command aos-metering-app accumulates power quality telemetry into
// fixed-memory interval summaries and publishes one JSON report per
// interval.
//
// The accumulator core supports:
//   - 12-bucket distribution histograms per quantity
//   - avg/min/max with floor-based decimal truncation
//   - 110 V / 230 V and 50 Hz / 60 Hz boundary profiles
//   - Prometheus metrics (optional endpoint)
//
// Usage:
//
//	aos-metering-app [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//	-spoof
//	      fabricate samples instead of simulating a meter
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	spoof := flag.Bool("spoof", false, "fabricate samples instead of simulating a meter")
	flag.Parse()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *spoof {
		appConfig.Sampling.SpoofMeter = true
	}

	logger := newLogger(appConfig.Logging)

	logger.WithFields(logrus.Fields{
		"nominal_voltage":   appConfig.Meter.NominalVoltage,
		"nominal_frequency": appConfig.Meter.NominalFrequency,
		"sample_period":     appConfig.Sampling.SamplePeriod,
		"report_period":     appConfig.Sampling.ReportPeriod,
	}).Info("Starting metering app")

	profile, err := meter.NewProfile(appConfig.Meter.NominalVoltage, appConfig.Meter.NominalFrequency)
	if err != nil {
		logger.Fatalf("Failed to select meter profile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The report is owned here and injected into the collector; it is
	// never package-level state.
	report := meter.NewReport(profile)

	sim := source.NewSimulator(
		float64(appConfig.Meter.NominalVoltage),
		float64(appConfig.Meter.NominalFrequency),
		appConfig.Sampling.Seed,
	)

	sched, err := scheduler.New(appConfig.Sampling.ReportPeriod, logger)
	if err != nil {
		logger.Fatalf("Failed to create report scheduler: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := collector.NewMetrics(registry)

	col := collector.New(
		report,
		sim,
		collector.NewJSONPublisher(os.Stdout),
		sched.Trigger(),
		collector.Config{
			SamplePeriod:     appConfig.Sampling.SamplePeriod,
			SpoofMeter:       appConfig.Sampling.SpoofMeter,
			NominalVoltage:   float64(appConfig.Meter.NominalVoltage),
			NominalFrequency: float64(appConfig.Meter.NominalFrequency),
		},
		metrics,
		logger,
	)

	errChan := make(chan error, 1)

	if addr := appConfig.Metrics.Addr; addr != "" {
		go func() {
			logger.WithField("addr", addr).Info("Serving metrics")
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(addr, mux); err != nil {
				errChan <- err
			}
		}()
	}

	sched.Start()
	defer sched.Stop()

	go func() {
		if err := col.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	go handleShutdown(ctx, cancel, logger)

	select {
	case err := <-errChan:
		logger.Fatalf("Service error: %v", err)
	case <-ctx.Done():
		logger.Info("Shutdown complete")
	}
}

// newLogger builds the structured logger from config.
func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// handleShutdown cancels the root context on SIGINT/SIGTERM.
func handleShutdown(ctx context.Context, cancel context.CancelFunc, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
		cancel()
	}
}
