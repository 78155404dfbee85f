package collector

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the collector's Prometheus instrumentation.
type Metrics struct {
	SamplesAccumulated prometheus.Counter
	SamplesRejected    prometheus.Counter
	SamplesSpoofed     prometheus.Counter
	SourceErrors       prometheus.Counter
	ReportsPublished   prometheus.Counter
	ReportsSkipped     prometheus.Counter
	PublishErrors      prometheus.Counter
}

// NewMetrics creates the collector metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SamplesAccumulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "samples_accumulated_total",
			Help:      "Number of samples successfully accumulated.",
		}),
		SamplesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "samples_rejected_total",
			Help:      "Number of samples rejected during accumulation.",
		}),
		SamplesSpoofed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "samples_spoofed_total",
			Help:      "Number of samples fabricated due to spoof mode or incomplete records.",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "source_errors_total",
			Help:      "Number of failed reads from the telemetry source.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "reports_published_total",
			Help:      "Number of interval summaries published.",
		}),
		ReportsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "reports_skipped_total",
			Help:      "Number of report intervals skipped for holding no samples.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metering",
			Name:      "publish_errors_total",
			Help:      "Number of failed summary publications.",
		}),
	}

	reg.MustRegister(
		m.SamplesAccumulated,
		m.SamplesRejected,
		m.SamplesSpoofed,
		m.SourceErrors,
		m.ReportsPublished,
		m.ReportsSkipped,
		m.PublishErrors,
	)

	return m
}
