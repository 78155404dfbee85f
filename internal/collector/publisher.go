package collector

import (
	"context"
	"encoding/json"
	"io"

	"github.com/unpick/aos-metering-app/internal/meter"
)

// Publisher consumes completed interval summaries. The transport behind it
// (and any retry policy) is the consumer's concern, not the collector's.
type Publisher interface {
	Publish(ctx context.Context, summary meter.SampleSummary) error
}

// JSONPublisher writes one JSON document per summary to an io.Writer,
// newline-delimited.
type JSONPublisher struct {
	enc *json.Encoder
}

// NewJSONPublisher returns a publisher writing to w.
func NewJSONPublisher(w io.Writer) *JSONPublisher {
	return &JSONPublisher{enc: json.NewEncoder(w)}
}

// Publish encodes the summary in the fixed transport shape.
func (p *JSONPublisher) Publish(_ context.Context, summary meter.SampleSummary) error {
	return p.enc.Encode(summary)
}
