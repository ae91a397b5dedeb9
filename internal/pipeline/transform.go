package pipeline

import (
	"context"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
)

// ReadingTransformer decodes gauge messages into normalized readings.
type ReadingTransformer struct{}

// NewTransformer creates a ReadingTransformer.
func NewTransformer() *ReadingTransformer {
	return &ReadingTransformer{}
}

// Transform parses the message and converts it to canonical units.
func (t *ReadingTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Reading, error) {
	reading, err := domain.ParseRawReading(raw)
	if err != nil {
		return domain.Reading{}, err
	}
	return domain.NormalizeReading(reading)
}
