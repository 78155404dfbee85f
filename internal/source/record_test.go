package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpick/aos-metering-app/internal/meter"
)

func completeRecord() *PowerQuality {
	f := func(v float64) *float64 { return &v }
	return &PowerQuality{
		VoltageA: f(230.0), CurrentA: f(1.0), ActivePowerA: f(218.0), ReactivePowerA: f(72.0), PowerFactorA: f(0.95),
		VoltageB: f(231.0), CurrentB: f(1.1), ActivePowerB: f(240.0), ReactivePowerB: f(79.0), PowerFactorB: f(0.94),
		VoltageC: f(229.0), CurrentC: f(0.9), ActivePowerC: f(196.0), ReactivePowerC: f(65.0), PowerFactorC: f(0.93),
		Frequency: f(50.01),
	}
}

func TestValidRequiresEveryField(t *testing.T) {
	require.True(t, completeRecord().Valid())

	tests := []struct {
		name string
		drop func(*PowerQuality)
	}{
		{"voltageA", func(pq *PowerQuality) { pq.VoltageA = nil }},
		{"currentA", func(pq *PowerQuality) { pq.CurrentA = nil }},
		{"activePowerA", func(pq *PowerQuality) { pq.ActivePowerA = nil }},
		{"reactivePowerA", func(pq *PowerQuality) { pq.ReactivePowerA = nil }},
		{"powerFactorA", func(pq *PowerQuality) { pq.PowerFactorA = nil }},
		{"voltageB", func(pq *PowerQuality) { pq.VoltageB = nil }},
		{"currentB", func(pq *PowerQuality) { pq.CurrentB = nil }},
		{"activePowerB", func(pq *PowerQuality) { pq.ActivePowerB = nil }},
		{"reactivePowerB", func(pq *PowerQuality) { pq.ReactivePowerB = nil }},
		{"powerFactorB", func(pq *PowerQuality) { pq.PowerFactorB = nil }},
		{"voltageC", func(pq *PowerQuality) { pq.VoltageC = nil }},
		{"currentC", func(pq *PowerQuality) { pq.CurrentC = nil }},
		{"activePowerC", func(pq *PowerQuality) { pq.ActivePowerC = nil }},
		{"reactivePowerC", func(pq *PowerQuality) { pq.ReactivePowerC = nil }},
		{"powerFactorC", func(pq *PowerQuality) { pq.PowerFactorC = nil }},
		{"frequency", func(pq *PowerQuality) { pq.Frequency = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := completeRecord()
			tt.drop(pq)
			assert.False(t, pq.Valid())

			_, err := pq.Sample()
			assert.ErrorIs(t, err, ErrIncompleteRecord)
		})
	}
}

func TestSampleMapsFieldsToPhases(t *testing.T) {
	sample, err := completeRecord().Sample()
	require.NoError(t, err)

	assert.Equal(t, 230.0, sample.P1.Vrms)
	assert.Equal(t, 0.95, sample.P1.PowerFactor)
	assert.Equal(t, 231.0, sample.P2.Vrms)
	assert.Equal(t, 79.0, sample.P2.PowerReactive)
	assert.Equal(t, 229.0, sample.P3.Vrms)
	assert.Equal(t, 0.9, sample.P3.Irms)
	assert.Equal(t, 50.01, sample.Frequency)
}

func TestRecordDecodesFromUpstreamJSON(t *testing.T) {
	payload := `{"voltageA":230.5,"currentA":1.2,"frequency":49.98}`

	var pq PowerQuality
	require.NoError(t, json.Unmarshal([]byte(payload), &pq))

	require.NotNil(t, pq.VoltageA)
	assert.Equal(t, 230.5, *pq.VoltageA)
	assert.False(t, pq.Valid(), "partial record must be invalid")
}

func TestSpoofedSampleAccumulates(t *testing.T) {
	sample := Spoofed(230, 50)

	assert.Equal(t, 230.0, sample.P1.Vrms)
	assert.Equal(t, 50.0, sample.Frequency)
	assert.Equal(t, meter.Phase{}, sample.P2)
	assert.Equal(t, meter.Phase{}, sample.P3)

	profile, err := meter.NewProfile(230, 50)
	require.NoError(t, err)
	report := meter.NewReport(profile)

	require.True(t, report.Accumulate(sample), "spoofed sample must be bucketable in every quantity")
	assert.Equal(t, uint32(1), report.Count())
}
