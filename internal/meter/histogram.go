package meter

// Histogram counts how many accepted values have fallen into each of the
// twelve buckets of a Quantity. It marshals to a plain JSON array, which is
// the only wire representation defined for it.
type Histogram [HistogramBins]uint32

// Reset zeroes every bucket.
func (h *Histogram) Reset() {
	*h = Histogram{}
}

// Total returns the sum of all buckets, i.e. the number of values counted.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, bin := range h {
		n += uint64(bin)
	}
	return n
}
