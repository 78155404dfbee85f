package meter

// Phase holds the point-in-time measurements of a single electrical phase.
type Phase struct {
	Vrms          float64
	Irms          float64
	PowerActive   float64
	PowerReactive float64
	PowerFactor   float64
}

// Sample holds one multi-phase reading: up to three phases plus the mains
// frequency. Samples are ephemeral; they are constructed per reading and
// discarded after accumulation. Presence validation of the upstream record
// is the producer's responsibility, not the accumulator's.
type Sample struct {
	P1        Phase
	P2        Phase
	P3        Phase
	Frequency float64
}
