package source

import (
	"context"
	"math"
	"math/rand"
)

// Simulator generates complete, plausible power quality records jittered
// around a nominal operating point. It stands in for the meter service in
// demo deployments and tests; a zero seed yields a time-seeded sequence,
// any other seed a reproducible one.
type Simulator struct {
	rng              *rand.Rand
	nominalVoltage   float64
	nominalFrequency float64
}

// NewSimulator returns a simulator for the given nominal voltage and
// frequency.
func NewSimulator(nominalVoltage, nominalFrequency float64, seed int64) *Simulator {
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return &Simulator{
		rng:              rng,
		nominalVoltage:   nominalVoltage,
		nominalFrequency: nominalFrequency,
	}
}

// Next produces one record. All sixteen fields are always present; every
// value stays within the finite histogram range of its quantity.
func (s *Simulator) Next(ctx context.Context) (*PowerQuality, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pq := &PowerQuality{}
	pq.VoltageA, pq.CurrentA, pq.ActivePowerA, pq.ReactivePowerA, pq.PowerFactorA = s.phase()
	pq.VoltageB, pq.CurrentB, pq.ActivePowerB, pq.ReactivePowerB, pq.PowerFactorB = s.phase()
	pq.VoltageC, pq.CurrentC, pq.ActivePowerC, pq.ReactivePowerC, pq.PowerFactorC = s.phase()
	pq.Frequency = ptr(s.nominalFrequency + s.jitter(0.05))

	return pq, nil
}

// phase fabricates one phase reading: voltage within ±2 % of nominal,
// current between 0.1 and 30 A, and a lagging power factor between 0.85
// and 0.99, with active and reactive power derived from those.
func (s *Simulator) phase() (v, i, p, q, pf *float64) {
	voltage := s.nominalVoltage * (1 + s.jitter(0.02))
	amps := 0.1 + 29.9*s.rng.Float64()
	factor := 0.85 + 0.14*s.rng.Float64()
	active := voltage * amps * factor
	reactive := active * math.Tan(math.Acos(factor))

	return ptr(voltage), ptr(amps), ptr(active), ptr(reactive), ptr(factor)
}

// jitter returns a uniform random value in [-amplitude, +amplitude].
func (s *Simulator) jitter(amplitude float64) float64 {
	return amplitude * (2*s.rng.Float64() - 1)
}

func ptr(v float64) *float64 {
	return &v
}
