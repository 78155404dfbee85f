package meter

import (
	"fmt"
	"math"
)

// HistogramBins is the fixed number of buckets per quantity.
const HistogramBins = 12

// Quantity describes how one measured quantity is accumulated: the
// histogram bucket boundaries and the decimal precision its summary
// statistics are reported at.
//
// Each boundary is the exclusive upper bound of its bucket, e.g. voltages
// [215.0..220.0) count toward the bucket below boundary 220.0. The last
// boundary is always +Inf so any finite value lands in some bucket; only
// NaN and +Inf match no bucket.
type Quantity struct {
	Boundaries    [HistogramBins]float64
	DecimalPlaces int
}

var inf = math.Inf(1)

var (
	voltage110 = Quantity{
		Boundaries: [HistogramBins]float64{
			85.0, 90.0, 95.0, 100.0, 105.0, 110.0,
			115.0, 120.0, 125.0, 130.0, 135.0, inf,
		},
		DecimalPlaces: 1,
	}
	voltage230 = Quantity{
		Boundaries: [HistogramBins]float64{
			205.0, 210.0, 215.0, 220.0, 225.0, 230.0,
			235.0, 240.0, 245.0, 250.0, 255.0, inf,
		},
		DecimalPlaces: 1,
	}
	current = Quantity{
		Boundaries: [HistogramBins]float64{
			0.05, 0.1, 0.2, 0.5, 1.0, 2.0,
			5.0, 10.0, 20.0, 50.0, 100.0, inf,
		},
		DecimalPlaces: 2,
	}
	powerActive = Quantity{
		Boundaries: [HistogramBins]float64{
			-10000.0, -3000.0, -1000.0, -300.0, -100.0, 0.0,
			100.0, 300.0, 1000.0, 3000.0, 10000.0, inf,
		},
		DecimalPlaces: 1,
	}
	powerReactive = Quantity{
		Boundaries: [HistogramBins]float64{
			-10000.0, -3000.0, -1000.0, -300.0, -100.0, 0.0,
			100.0, 300.0, 1000.0, 3000.0, 10000.0, inf,
		},
		DecimalPlaces: 1,
	}
	powerFactor = Quantity{
		Boundaries: [HistogramBins]float64{
			-1.0, -0.8, -0.6, -0.4, -0.2, 0.0,
			0.2, 0.4, 0.6, 0.8, 1.0, inf,
		},
		DecimalPlaces: 2,
	}
	frequency50 = Quantity{
		Boundaries: [HistogramBins]float64{
			49.75, 49.80, 49.85, 49.90, 49.95, 50.00,
			50.05, 50.10, 50.15, 50.20, 50.25, inf,
		},
		DecimalPlaces: 1,
	}
	frequency60 = Quantity{
		Boundaries: [HistogramBins]float64{
			59.75, 59.80, 59.85, 59.90, 59.95, 60.00,
			60.05, 60.10, 60.15, 60.20, 60.25, inf,
		},
		DecimalPlaces: 1,
	}
)

// Profile bundles the quantity descriptors for one nominal voltage class
// and one nominal mains frequency. Profiles are fixed configuration, not
// runtime state: the tables above are the only ones ever used.
type Profile struct {
	Voltage       Quantity
	Current       Quantity
	PowerActive   Quantity
	PowerReactive Quantity
	PowerFactor   Quantity
	Frequency     Quantity
}

// NewProfile returns the profile for the given nominal voltage class
// (110 for 100/110/120 V networks, 230 for 220/230/240 V networks) and
// nominal frequency (50 or 60 Hz).
func NewProfile(nominalVoltage, nominalFrequency int) (Profile, error) {
	p := Profile{
		Current:       current,
		PowerActive:   powerActive,
		PowerReactive: powerReactive,
		PowerFactor:   powerFactor,
	}

	switch nominalVoltage {
	case 110:
		p.Voltage = voltage110
	case 230:
		p.Voltage = voltage230
	default:
		return Profile{}, fmt.Errorf("unsupported nominal voltage %d (want 110 or 230)", nominalVoltage)
	}

	switch nominalFrequency {
	case 50:
		p.Frequency = frequency50
	case 60:
		p.Frequency = frequency60
	default:
		return Profile{}, fmt.Errorf("unsupported nominal frequency %d (want 50 or 60)", nominalFrequency)
	}

	return p, nil
}
