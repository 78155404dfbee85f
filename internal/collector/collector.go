// Package collector owns the ingestion loop: it polls the telemetry source
// on a fixed cadence, feeds samples into an injected meter.Report, and on
// each report trigger summarises, publishes, and resets.
package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unpick/aos-metering-app/internal/meter"
	"github.com/unpick/aos-metering-app/internal/source"
)

// SampleSource produces power quality records on demand.
type SampleSource interface {
	Next(ctx context.Context) (*source.PowerQuality, error)
}

// Config holds the collector's runtime options.
type Config struct {
	SamplePeriod     time.Duration
	SpoofMeter       bool // fabricate every sample instead of reading the source
	NominalVoltage   float64
	NominalFrequency float64
}

// Collector runs the accumulation interval lifecycle. All report mutation
// happens on the single Run goroutine, so accumulate, summarise, and reset
// never interleave.
type Collector struct {
	report  *meter.Report
	source  SampleSource
	pub     Publisher
	trigger <-chan struct{}
	cfg     Config
	metrics *Metrics
	logger  *logrus.Entry
}

// New wires a collector around an existing report. The trigger channel
// (typically a scheduler's) marks the end of each report interval.
func New(report *meter.Report, src SampleSource, pub Publisher, trigger <-chan struct{},
	cfg Config, metrics *Metrics, logger *logrus.Logger) *Collector {
	return &Collector{
		report:  report,
		source:  src,
		pub:     pub,
		trigger: trigger,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.WithField("session_id", uuid.NewString()),
	}
}

// Run drives the loop until ctx is canceled.
func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.SamplePeriod)
	defer ticker.Stop()

	c.logger.WithFields(logrus.Fields{
		"sample_period": c.cfg.SamplePeriod,
		"spoof":         c.cfg.SpoofMeter,
	}).Info("Collector started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Collector stopped")
			return ctx.Err()
		case <-ticker.C:
			c.collect(ctx)
		case <-c.trigger:
			c.publishReport(ctx)
		}
	}
}

// collect pulls one record and accumulates it, spoofing the sample when
// configured to or when the record is incomplete.
func (c *Collector) collect(ctx context.Context) {
	var sample meter.Sample

	if c.cfg.SpoofMeter {
		sample = source.Spoofed(c.cfg.NominalVoltage, c.cfg.NominalFrequency)
		c.metrics.SamplesSpoofed.Inc()
	} else {
		rec, err := c.source.Next(ctx)
		if err != nil {
			c.logger.WithError(err).Error("Failed to read meter data")
			c.metrics.SourceErrors.Inc()
			return
		}

		sample, err = rec.Sample()
		if err != nil {
			c.logger.Warn("Incomplete power quality record; spoofing sample")
			sample = source.Spoofed(c.cfg.NominalVoltage, c.cfg.NominalFrequency)
			c.metrics.SamplesSpoofed.Inc()
		}
	}

	if !c.report.Accumulate(sample) {
		c.logger.Warn("Sample rejected during accumulation")
		c.metrics.SamplesRejected.Inc()
		return
	}

	c.metrics.SamplesAccumulated.Inc()
	c.logger.WithField("count", c.report.Count()).Debug("Accumulated sample")
}

// publishReport closes the current interval: summarise, reset, publish.
// An interval holding no samples is reset but never published, since its
// averages would be undefined.
func (c *Collector) publishReport(ctx context.Context) {
	var summary meter.SampleSummary
	ok := c.report.Summarise(&summary)
	c.report.Reset()

	if !ok {
		c.logger.Warn("No samples accumulated this interval; skipping report")
		c.metrics.ReportsSkipped.Inc()
		return
	}

	if err := c.pub.Publish(ctx, summary); err != nil {
		c.logger.WithError(err).Error("Failed to send summary")
		c.metrics.PublishErrors.Inc()
		return
	}

	c.metrics.ReportsPublished.Inc()
	c.logger.WithFields(logrus.Fields{
		"samples":  summary.Count,
		"ts_start": summary.Start.Unix(),
		"ts_end":   summary.End.Unix(),
	}).Info("Published report")
}
