package collector

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpick/aos-metering-app/internal/meter"
	"github.com/unpick/aos-metering-app/internal/source"
)

// fakeSource replays a fixed sequence of records and errors.
type fakeSource struct {
	mu      sync.Mutex
	records []*source.PowerQuality
	err     error
	calls   int
}

func (f *fakeSource) Next(ctx context.Context) (*source.PowerQuality, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[(f.calls-1)%len(f.records)], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePublisher records every published summary.
type fakePublisher struct {
	mu        sync.Mutex
	summaries []meter.SampleSummary
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, summary meter.SampleSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, summary)
	return nil
}

func (f *fakePublisher) published() []meter.SampleSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]meter.SampleSummary(nil), f.summaries...)
}

func completeRecord() *source.PowerQuality {
	f := func(v float64) *float64 { return &v }
	return &source.PowerQuality{
		VoltageA: f(230.0), CurrentA: f(1.0), ActivePowerA: f(218.0), ReactivePowerA: f(72.0), PowerFactorA: f(0.95),
		VoltageB: f(231.0), CurrentB: f(1.1), ActivePowerB: f(240.0), ReactivePowerB: f(79.0), PowerFactorB: f(0.94),
		VoltageC: f(229.0), CurrentC: f(0.9), ActivePowerC: f(196.0), ReactivePowerC: f(65.0), PowerFactorC: f(0.93),
		Frequency: f(50.0),
	}
}

func testCollector(t *testing.T, src SampleSource, pub Publisher) (*Collector, *meter.Report, *Metrics) {
	t.Helper()

	profile, err := meter.NewProfile(230, 50)
	require.NoError(t, err)
	report := meter.NewReport(profile)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	metrics := NewMetrics(prometheus.NewRegistry())

	cfg := Config{
		SamplePeriod:     time.Second,
		NominalVoltage:   230,
		NominalFrequency: 50,
	}

	return New(report, src, pub, make(chan struct{}), cfg, metrics, logger), report, metrics
}

func TestCollectAccumulatesValidRecord(t *testing.T) {
	src := &fakeSource{records: []*source.PowerQuality{completeRecord()}}
	col, report, metrics := testCollector(t, src, &fakePublisher{})

	col.collect(context.Background())
	col.collect(context.Background())

	assert.Equal(t, uint32(2), report.Count())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SamplesAccumulated))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SamplesSpoofed))
}

func TestCollectSpoofsIncompleteRecord(t *testing.T) {
	incomplete := completeRecord()
	incomplete.VoltageB = nil
	src := &fakeSource{records: []*source.PowerQuality{incomplete}}
	col, report, metrics := testCollector(t, src, &fakePublisher{})

	col.collect(context.Background())

	// The spoofed stand-in still accumulates.
	assert.Equal(t, uint32(1), report.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SamplesSpoofed))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SamplesAccumulated))
}

func TestCollectSpoofModeNeverReadsSource(t *testing.T) {
	src := &fakeSource{records: []*source.PowerQuality{completeRecord()}}
	col, report, metrics := testCollector(t, src, &fakePublisher{})
	col.cfg.SpoofMeter = true

	col.collect(context.Background())

	assert.Zero(t, src.calls)
	assert.Equal(t, uint32(1), report.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SamplesSpoofed))
}

func TestCollectCountsSourceErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("meter service unavailable")}
	col, report, metrics := testCollector(t, src, &fakePublisher{})

	col.collect(context.Background())

	assert.Equal(t, uint32(0), report.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourceErrors))
}

func TestPublishReportEmitsAndResets(t *testing.T) {
	src := &fakeSource{records: []*source.PowerQuality{completeRecord()}}
	pub := &fakePublisher{}
	col, report, metrics := testCollector(t, src, pub)

	col.collect(context.Background())
	col.collect(context.Background())
	col.collect(context.Background())
	require.Equal(t, uint32(3), report.Count())

	col.publishReport(context.Background())

	require.Len(t, pub.summaries, 1)
	assert.Equal(t, uint32(3), pub.summaries[0].Count)
	assert.Equal(t, uint32(0), report.Count(), "publishing must reset the interval")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsPublished))
}

func TestPublishReportSkipsEmptyInterval(t *testing.T) {
	pub := &fakePublisher{}
	col, report, metrics := testCollector(t, &fakeSource{records: []*source.PowerQuality{completeRecord()}}, pub)

	col.publishReport(context.Background())

	assert.Empty(t, pub.summaries)
	assert.Equal(t, uint32(0), report.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsSkipped))
}

func TestPublishReportCountsPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("transport down")}
	col, report, metrics := testCollector(t, &fakeSource{records: []*source.PowerQuality{completeRecord()}}, pub)

	col.collect(context.Background())
	col.publishReport(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
	// The interval is still closed; samples are not replayed.
	assert.Equal(t, uint32(0), report.Count())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	src := &fakeSource{records: []*source.PowerQuality{completeRecord()}}
	col, _, _ := testCollector(t, src, &fakePublisher{})
	col.cfg.SamplePeriod = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- col.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop after context cancellation")
	}
}

func TestRunPublishesOnTrigger(t *testing.T) {
	src := &fakeSource{records: []*source.PowerQuality{completeRecord()}}
	pub := &fakePublisher{}
	col, _, _ := testCollector(t, src, pub)

	trigger := make(chan struct{}, 1)
	col.trigger = trigger
	col.cfg.SamplePeriod = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- col.Run(ctx) }()

	// Wait until at least one sample has been pulled before closing the
	// interval; the report itself is owned by the Run goroutine.
	require.Eventually(t, func() bool { return src.callCount() > 1 },
		2*time.Second, time.Millisecond)

	trigger <- struct{}{}

	require.Eventually(t, func() bool { return len(pub.published()) == 1 },
		2*time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestPublishedSummaryWireFormat(t *testing.T) {
	var buf bytes.Buffer
	pub := NewJSONPublisher(&buf)
	src := &fakeSource{records: []*source.PowerQuality{completeRecord()}}
	col, _, _ := testCollector(t, src, pub)

	col.collect(context.Background())
	col.publishReport(context.Background())

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, `{"p":[`), "summary must lead with the phase array: %s", line)
	assert.Contains(t, line, `"n":1`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(line), "}"))
}
