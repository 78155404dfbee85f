// Package source models the upstream meter-service feed: the power quality
// record shape, its all-or-nothing presence validation, and sample
// generation for deployments without a live meter.
package source

import (
	"errors"

	"github.com/unpick/aos-metering-app/internal/meter"
)

// ErrIncompleteRecord is returned when a record is missing at least one of
// the sixteen required fields.
var ErrIncompleteRecord = errors.New("power quality record is missing required fields")

// PowerQuality is one point-in-time power quality record as delivered by
// the meter service. Every field is optional on the wire; a nil pointer
// means the meter did not report that value.
type PowerQuality struct {
	VoltageA       *float64 `json:"voltageA,omitempty"`
	CurrentA       *float64 `json:"currentA,omitempty"`
	ActivePowerA   *float64 `json:"activePowerA,omitempty"`
	ReactivePowerA *float64 `json:"reactivePowerA,omitempty"`
	PowerFactorA   *float64 `json:"powerFactorA,omitempty"`
	VoltageB       *float64 `json:"voltageB,omitempty"`
	CurrentB       *float64 `json:"currentB,omitempty"`
	ActivePowerB   *float64 `json:"activePowerB,omitempty"`
	ReactivePowerB *float64 `json:"reactivePowerB,omitempty"`
	PowerFactorB   *float64 `json:"powerFactorB,omitempty"`
	VoltageC       *float64 `json:"voltageC,omitempty"`
	CurrentC       *float64 `json:"currentC,omitempty"`
	ActivePowerC   *float64 `json:"activePowerC,omitempty"`
	ReactivePowerC *float64 `json:"reactivePowerC,omitempty"`
	PowerFactorC   *float64 `json:"powerFactorC,omitempty"`
	Frequency      *float64 `json:"frequency,omitempty"`
}

// Valid reports whether every required field is present. Absence of any one
// field invalidates the whole record.
func (pq *PowerQuality) Valid() bool {
	fields := []*float64{
		pq.VoltageA, pq.CurrentA, pq.ActivePowerA, pq.ReactivePowerA, pq.PowerFactorA,
		pq.VoltageB, pq.CurrentB, pq.ActivePowerB, pq.ReactivePowerB, pq.PowerFactorB,
		pq.VoltageC, pq.CurrentC, pq.ActivePowerC, pq.ReactivePowerC, pq.PowerFactorC,
		pq.Frequency,
	}
	for _, f := range fields {
		if f == nil {
			return false
		}
	}
	return true
}

// Sample converts the record into a meter.Sample. It returns
// ErrIncompleteRecord if any field is missing.
func (pq *PowerQuality) Sample() (meter.Sample, error) {
	if !pq.Valid() {
		return meter.Sample{}, ErrIncompleteRecord
	}

	return meter.Sample{
		P1: meter.Phase{
			Vrms:          *pq.VoltageA,
			Irms:          *pq.CurrentA,
			PowerActive:   *pq.ActivePowerA,
			PowerReactive: *pq.ReactivePowerA,
			PowerFactor:   *pq.PowerFactorA,
		},
		P2: meter.Phase{
			Vrms:          *pq.VoltageB,
			Irms:          *pq.CurrentB,
			PowerActive:   *pq.ActivePowerB,
			PowerReactive: *pq.ReactivePowerB,
			PowerFactor:   *pq.PowerFactorB,
		},
		P3: meter.Phase{
			Vrms:          *pq.VoltageC,
			Irms:          *pq.CurrentC,
			PowerActive:   *pq.ActivePowerC,
			PowerReactive: *pq.ReactivePowerC,
			PowerFactor:   *pq.PowerFactorC,
		},
		Frequency: *pq.Frequency,
	}, nil
}

// Spoofed returns a sample carrying a minimal set of fabricated data: the
// nominal voltage on phase 1 and the nominal frequency, everything else
// zero. Used when spoofing is configured or the meter delivered an
// incomplete record.
func Spoofed(nominalVoltage, nominalFrequency float64) meter.Sample {
	return meter.Sample{
		P1:        meter.Phase{Vrms: nominalVoltage},
		Frequency: nominalFrequency,
	}
}
