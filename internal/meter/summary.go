package meter

import (
	"encoding/json"
	"time"
)

// Summary describes the accepted values of one quantity over an interval:
// average, minimum and maximum (each truncated to the quantity's precision)
// plus a copy of the histogram. It is derived state, immutable once
// produced.
type Summary struct {
	Avg       float64   `json:"avg"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Histogram Histogram `json:"h"`
}

// PhaseSummary holds the five quantity summaries of one phase. The short
// JSON keys are part of the wire contract and must not change.
type PhaseSummary struct {
	Vrms          Summary `json:"v"`
	Irms          Summary `json:"i"`
	PowerActive   Summary `json:"p"`
	PowerReactive Summary `json:"q"`
	PowerFactor   Summary `json:"pf"`
}

// SampleSummary is the externally consumed reporting artifact: three phase
// summaries, the frequency summary, the number of samples covered, and the
// interval timestamps.
//
// IntervalMin and IntervalMax track the shortest and longest gap observed
// between consecutive accepted samples. They are diagnostic fields and are
// not part of the JSON wire contract.
type SampleSummary struct {
	Phases      [3]PhaseSummary
	Frequency   Summary
	Count       uint32
	Start       time.Time
	End         time.Time
	IntervalMin time.Duration
	IntervalMax time.Duration
}

// MarshalJSON encodes the summary in the fixed transport shape:
//
//	{"p":[...3 phase objects...],"f":{...},"n":count,"ts":start,"te":end}
//
// Key order and nesting are contractual; timestamps are epoch seconds.
func (s SampleSummary) MarshalJSON() ([]byte, error) {
	type wire struct {
		Phases    [3]PhaseSummary `json:"p"`
		Frequency Summary         `json:"f"`
		Count     uint32          `json:"n"`
		Start     int64           `json:"ts"`
		End       int64           `json:"te"`
	}

	return json.Marshal(wire{
		Phases:    s.Phases,
		Frequency: s.Frequency,
		Count:     s.Count,
		Start:     s.Start.Unix(),
		End:       s.End.Unix(),
	})
}
