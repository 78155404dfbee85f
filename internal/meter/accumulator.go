package meter

import (
	"math"
	"time"
)

// intervalMinInitial is the sentinel the minimum inter-sample gap starts
// from; any observed gap replaces it.
const intervalMinInitial = time.Duration(math.MaxInt32) * time.Millisecond

// roundDown truncates n toward negative infinity at the given number of
// decimal places. This is NOT round-half-up: roundDown(2.449, 1) == 2.4 and
// roundDown(-1.05, 1) == -1.1.
func roundDown(n float64, decimalPlaces int) float64 {
	scale := math.Pow(10, float64(decimalPlaces))
	return math.Floor(scale*n) / scale
}

// valueAccumulator is the statistical engine for a single quantity: a
// running total, NaN-initialized min/max, and a histogram, all over fixed
// storage. It is mutated only by accumulate and read only by summarise.
type valueAccumulator struct {
	quantity  Quantity
	histogram Histogram
	total     float64
	min       float64
	max       float64
}

func newValueAccumulator(q Quantity) valueAccumulator {
	return valueAccumulator{
		quantity: q,
		min:      math.NaN(),
		max:      math.NaN(),
	}
}

// accumulate counts v into the first bucket whose boundary exceeds it and
// folds it into the running statistics. If no bucket matches (possible only
// for +Inf or NaN, since the last boundary is +Inf) it fails without
// touching any state.
func (a *valueAccumulator) accumulate(v float64) bool {
	bin := 0
	for ; bin < HistogramBins; bin++ {
		if v < a.quantity.Boundaries[bin] {
			break
		}
	}
	if bin == HistogramBins {
		return false
	}

	a.histogram[bin]++
	a.total += v
	if v < a.min || math.IsNaN(a.min) {
		a.min = v
	}
	if v > a.max || math.IsNaN(a.max) {
		a.max = v
	}

	return true
}

// summarise writes the statistics over the given number of samples into
// out. It fails on a zero count (the average needs a divisor) and in that
// case leaves out untouched.
func (a *valueAccumulator) summarise(count uint32, out *Summary) bool {
	if count == 0 {
		return false
	}

	out.Histogram = a.histogram
	out.Avg = roundDown(a.total/float64(count), a.quantity.DecimalPlaces)
	out.Min = roundDown(a.min, a.quantity.DecimalPlaces)
	out.Max = roundDown(a.max, a.quantity.DecimalPlaces)

	return true
}

func (a *valueAccumulator) reset() {
	a.histogram.Reset()
	a.total = 0
	a.min = math.NaN()
	a.max = math.NaN()
}

// phaseAccumulator accumulates the five quantities of one phase.
type phaseAccumulator struct {
	vrms          valueAccumulator
	irms          valueAccumulator
	powerActive   valueAccumulator
	powerReactive valueAccumulator
	powerFactor   valueAccumulator
}

func newPhaseAccumulator(p Profile) phaseAccumulator {
	return phaseAccumulator{
		vrms:          newValueAccumulator(p.Voltage),
		irms:          newValueAccumulator(p.Current),
		powerActive:   newValueAccumulator(p.PowerActive),
		powerReactive: newValueAccumulator(p.PowerReactive),
		powerFactor:   newValueAccumulator(p.PowerFactor),
	}
}

// accumulate feeds all five quantities and returns true only if every one
// succeeded. There is no rollback: a partial failure leaves the successful
// sub-accumulations applied. That quirk is contractual and covered by
// tests; do not "fix" it.
func (p *phaseAccumulator) accumulate(phase Phase) bool {
	okV := p.vrms.accumulate(phase.Vrms)
	okI := p.irms.accumulate(phase.Irms)
	okP := p.powerActive.accumulate(phase.PowerActive)
	okQ := p.powerReactive.accumulate(phase.PowerReactive)
	okF := p.powerFactor.accumulate(phase.PowerFactor)

	return okV && okI && okP && okQ && okF
}

func (p *phaseAccumulator) summarise(count uint32, out *PhaseSummary) bool {
	okV := p.vrms.summarise(count, &out.Vrms)
	okI := p.irms.summarise(count, &out.Irms)
	okP := p.powerActive.summarise(count, &out.PowerActive)
	okQ := p.powerReactive.summarise(count, &out.PowerReactive)
	okF := p.powerFactor.summarise(count, &out.PowerFactor)

	return okV && okI && okP && okQ && okF
}

func (p *phaseAccumulator) reset() {
	p.vrms.reset()
	p.irms.reset()
	p.powerActive.reset()
	p.powerReactive.reset()
	p.powerFactor.reset()
}

// sampleAccumulator is the live report state: three phase accumulators, the
// frequency accumulator, the sample count, and the interval timestamps.
type sampleAccumulator struct {
	p1          phaseAccumulator
	p2          phaseAccumulator
	p3          phaseAccumulator
	frequency   valueAccumulator
	count       uint32
	intervalMin time.Duration
	intervalMax time.Duration
	tsLast      time.Time
	tsStart     time.Time
	tsEnd       time.Time
}

func newSampleAccumulator(p Profile) sampleAccumulator {
	return sampleAccumulator{
		p1:        newPhaseAccumulator(p),
		p2:        newPhaseAccumulator(p),
		p3:        newPhaseAccumulator(p),
		frequency: newValueAccumulator(p.Frequency),
	}
}

// accumulate feeds all three phases and the frequency. The count and end
// timestamp advance only when all four sub-accumulations succeed; the
// partial-failure caveat of phaseAccumulator propagates upward.
func (a *sampleAccumulator) accumulate(sample Sample, now time.Time) bool {
	okP1 := a.p1.accumulate(sample.P1)
	okP2 := a.p2.accumulate(sample.P2)
	okP3 := a.p3.accumulate(sample.P3)
	okF := a.frequency.accumulate(sample.Frequency)

	if !(okP1 && okP2 && okP3 && okF) {
		return false
	}

	if a.count > 0 {
		gap := now.Sub(a.tsLast)
		if gap < a.intervalMin {
			a.intervalMin = gap
		}
		if gap > a.intervalMax {
			a.intervalMax = gap
		}
	}
	a.tsLast = now

	a.count++
	a.tsEnd = now

	return true
}

// summarise populates every child summary with the current count and always
// sets the count and timestamps. It returns true only if every child
// succeeded; with a zero count all children legitimately fail and the
// output is structurally well formed but statistically meaningless.
func (a *sampleAccumulator) summarise(out *SampleSummary) bool {
	okP1 := a.p1.summarise(a.count, &out.Phases[0])
	okP2 := a.p2.summarise(a.count, &out.Phases[1])
	okP3 := a.p3.summarise(a.count, &out.Phases[2])
	okF := a.frequency.summarise(a.count, &out.Frequency)

	out.Count = a.count
	out.Start = a.tsStart
	out.End = a.tsEnd
	out.IntervalMin = a.intervalMin
	out.IntervalMax = a.intervalMax

	return okP1 && okP2 && okP3 && okF
}

func (a *sampleAccumulator) reset(now time.Time) {
	a.p1.reset()
	a.p2.reset()
	a.p3.reset()
	a.frequency.reset()
	a.count = 0
	a.intervalMin = intervalMinInitial
	a.intervalMax = 0
	a.tsLast = now
	a.tsStart = now
	a.tsEnd = now
}

// Report accumulates meter samples over an interval and produces summary
// reports. It allocates nothing during steady-state operation and is not
// internally synchronized: it assumes a single writer, with Summarise and
// Reset acting as one logical checkpoint never interleaved with a
// concurrent Accumulate.
type Report struct {
	acc sampleAccumulator
	now func() time.Time
}

// NewReport returns a Report accumulating against the given profile.
func NewReport(p Profile) *Report {
	r := &Report{
		acc: newSampleAccumulator(p),
		now: time.Now,
	}
	r.Reset()
	return r
}

// Accumulate folds one sample into the report. It returns false if any
// constituent value was rejected; see sampleAccumulator.accumulate for the
// partial-failure semantics.
func (r *Report) Accumulate(sample Sample) bool {
	return r.acc.accumulate(sample, r.now())
}

// Summarise snapshots the accumulated state into out without mutating it,
// so a caller may summarise speculatively without committing to a Reset.
// It returns false if the report holds no samples; out's child summaries
// are then left untouched, though count and timestamps are still set.
func (r *Report) Summarise(out *SampleSummary) bool {
	return r.acc.summarise(out)
}

// Count returns the number of samples accumulated since the last Reset.
func (r *Report) Count() uint32 {
	return r.acc.count
}

// Reset discards all accumulated state and re-arms the interval timestamps
// to now. It is the only operation that clears state.
func (r *Report) Reset() {
	r.acc.reset(r.now())
}
