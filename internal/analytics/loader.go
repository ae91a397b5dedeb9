package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/observability"
	"github.com/couchcryptid/flood-data-analytics/internal/store"
)

// SeriesWriter is the write side of the reading store.
type SeriesWriter interface {
	Append(readings []domain.Reading) []domain.SeriesKey
	Range(key domain.SeriesKey, from, to time.Time) ([]domain.Reading, error)
	Series() []store.SeriesInfo
}

// SummaryPublisher delivers series summaries downstream.
type SummaryPublisher interface {
	PublishSummaries(ctx context.Context, summaries []domain.SeriesSummary) error
}

// SummaryLoader stores each batch of readings and publishes a fresh summary
// for every series the batch touched. It implements the pipeline loader.
type SummaryLoader struct {
	store     SeriesWriter
	publisher SummaryPublisher
	window    time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSummaryLoader creates a loader. Summaries cover the trailing window
// ending at the latest reading of each series; a non-positive window covers
// the whole series. A nil publisher only stores readings.
func NewSummaryLoader(store SeriesWriter, publisher SummaryPublisher, window time.Duration, logger *slog.Logger, metrics *observability.Metrics) *SummaryLoader {
	return &SummaryLoader{
		store:     store,
		publisher: publisher,
		window:    window,
		logger:    logger,
		metrics:   metrics,
	}
}

// LoadBatch appends readings to the store and publishes summaries. Appending
// is idempotent per reading ID, so a batch retried after a publish failure
// does not duplicate data.
func (l *SummaryLoader) LoadBatch(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	touched := l.store.Append(readings)
	l.metrics.ReadingsStored.Add(float64(len(readings)))
	l.metrics.SeriesTracked.Set(float64(len(l.store.Series())))
	if l.publisher == nil {
		return nil
	}

	summaries := make([]domain.SeriesSummary, 0, len(touched))
	for _, key := range touched {
		summary, ok, err := l.summarize(key)
		if err != nil {
			return err
		}
		if !ok {
			l.logger.Debug("no valid readings to summarize", "series", key.String())
			continue
		}
		summaries = append(summaries, summary)
	}
	if len(summaries) == 0 {
		return nil
	}

	if err := l.publisher.PublishSummaries(ctx, summaries); err != nil {
		return fmt.Errorf("publish summaries: %w", err)
	}
	l.metrics.SummariesPublished.Add(float64(len(summaries)))
	return nil
}

func (l *SummaryLoader) summarize(key domain.SeriesKey) (domain.SeriesSummary, bool, error) {
	all, err := l.store.Range(key, time.Time{}, time.Time{})
	if err != nil {
		return domain.SeriesSummary{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	if len(all) == 0 {
		return domain.SeriesSummary{}, false, nil
	}
	readings := all
	if l.window > 0 {
		from := all[len(all)-1].Timestamp.Add(-l.window)
		for i := range all {
			if !all[i].Timestamp.Before(from) {
				readings = all[i:]
				break
			}
		}
	}
	summary, ok := domain.NewSeriesSummary(key, readings)
	return summary, ok, nil
}
