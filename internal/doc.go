// Package metering implements fixed-memory accumulation and summarization
// of power quality telemetry.
//
// # Architecture
//
// The application is structured into several key packages:
//   - meter: the accumulation engine (histograms, accumulators, summaries)
//   - source: the meter-service record shape, validation, and simulation
//   - collector: the ingestion loop tying source, report, and publisher
//   - scheduler: cron-driven report interval triggers
//   - config: file/env configuration
//
// Key Features
//
//   - Fixed memory:
//     The accumulator allocates nothing in steady state; all statistics
//     live in fixed-size arrays sized at construction.
//
//   - Interval lifecycle:
//     Samples accumulate until the report period elapses, then the state
//     is summarised into an immutable snapshot and reset for the next
//     interval.
//
//   - Deterministic wire format:
//     Summaries serialize with fixed key order so consumers can rely on
//     stable schema positions.
//
// Example Usage
//
//	profile, _ := meter.NewProfile(230, 50)
//	report := meter.NewReport(profile)
//	for sample := range samples {
//	    report.Accumulate(sample)
//	}
//	var summary meter.SampleSummary
//	if report.Summarise(&summary) {
//	    // publish summary
//	}
//	report.Reset()
//
// For more information about specific packages, see their respective
// documentation.
package metering
