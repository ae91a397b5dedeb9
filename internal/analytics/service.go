// Package analytics answers dashboard statistics queries over stored gauge
// series: descriptive summaries of one series and correlation between two.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/observability"
	"github.com/couchcryptid/flood-data-analytics/internal/stats"
	"github.com/couchcryptid/flood-data-analytics/internal/store"
)

// SignificanceLevel is the p-value threshold below which a correlation is
// flagged as significant.
const SignificanceLevel = 0.05

// ErrNoData is returned when a series has no valid observation in the window.
var ErrNoData = errors.New("no observations in window")

// SeriesReader is the read side of the reading store.
type SeriesReader interface {
	Range(key domain.SeriesKey, from, to time.Time) ([]domain.Reading, error)
	Version(key domain.SeriesKey) (uint64, bool)
	Series() []store.SeriesInfo
}

// SeriesStats is the summary of one series over a window.
type SeriesStats struct {
	Series    domain.SeriesKey  `json:"series"`
	Unit      string            `json:"unit"`
	From      time.Time         `json:"from"`
	Readings  int               `json:"readings"`
	Missing   int               `json:"missing"`
	Summary   stats.Summary     `json:"summary"`
	Formatted map[string]string `json:"formatted"`
}

// CorrelationReport is the correlation between two series aligned on time.
type CorrelationReport struct {
	X           domain.SeriesKey `json:"x"`
	Y           domain.SeriesKey `json:"y"`
	Method      stats.Method     `json:"method"`
	Coefficient float64          `json:"coefficient"`
	PValue      float64          `json:"p_value"`
	N           int              `json:"n"`
	Buckets     int              `json:"buckets"`
	Resolution  string           `json:"resolution"`
	From        time.Time        `json:"from"`
	Significant bool             `json:"significant"`
	Formatted   struct {
		Coefficient string `json:"coefficient"`
		PValue      string `json:"p_value"`
	} `json:"formatted"`
}

// Config tunes the Service.
type Config struct {
	// Resolution is the timestamp bucket used to pair two series.
	Resolution time.Duration
	// CacheSize bounds each result cache; 0 disables caching.
	CacheSize int
}

// Service computes statistics over stored series and memoizes results per
// series version.
type Service struct {
	reader       SeriesReader
	resolution   time.Duration
	summaries    *lruCache[SeriesStats]
	correlations *lruCache[CorrelationReport]
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// New creates a Service reading from reader.
func New(reader SeriesReader, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		reader:       reader,
		resolution:   cfg.Resolution,
		summaries:    newLRUCache[SeriesStats](cfg.CacheSize),
		correlations: newLRUCache[CorrelationReport](cfg.CacheSize),
		logger:       logger,
		metrics:      metrics,
	}
}

// Series lists the stored series.
func (s *Service) Series() []store.SeriesInfo {
	return s.reader.Series()
}

// Summarize returns descriptive statistics of key over the trailing window.
// A non-positive window covers all stored readings.
func (s *Service) Summarize(ctx context.Context, key domain.SeriesKey, window time.Duration) (SeriesStats, error) {
	if err := ctx.Err(); err != nil {
		return SeriesStats{}, err
	}
	from := s.windowStart(window)
	version, ok := s.reader.Version(key)
	if !ok {
		s.observe("summary", store.ErrSeriesNotFound)
		return SeriesStats{}, fmt.Errorf("%s: %w", key, store.ErrSeriesNotFound)
	}

	cacheKey := fmt.Sprintf("%s|v%d|%d", key, version, from.UnixNano())
	if cached, ok := s.summaries.get(cacheKey); ok {
		s.metrics.ResultCache.WithLabelValues("hit").Inc()
		s.observe("summary", nil)
		return cached, nil
	}
	s.metrics.ResultCache.WithLabelValues("miss").Inc()

	start := time.Now()
	result, err := s.summarize(key, from)
	s.metrics.AnalysisDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	s.observe("summary", err)
	if err != nil {
		return SeriesStats{}, err
	}
	s.summaries.put(cacheKey, result)
	return result, nil
}

func (s *Service) summarize(key domain.SeriesKey, from time.Time) (SeriesStats, error) {
	readings, err := s.reader.Range(key, from, time.Time{})
	if err != nil {
		return SeriesStats{}, fmt.Errorf("%s: %w", key, err)
	}
	values := domain.Values(readings)
	summary, ok := stats.Summarize(values)
	if !ok {
		return SeriesStats{}, fmt.Errorf("%s: %w", key, ErrNoData)
	}
	return SeriesStats{
		Series:    key,
		Unit:      domain.CanonicalUnit(key.Variable),
		From:      from,
		Readings:  len(values),
		Missing:   len(values) - summary.Count,
		Summary:   summary,
		Formatted: domain.FormatSummary(summary),
	}, nil
}

// Correlate pairs x and y on timestamp buckets over the trailing window and
// computes their correlation. Buckets where either series has no value are
// left out. It returns stats.ErrInsufficientSamples when fewer than
// stats.MinSamples pairs remain and stats.ErrUndefinedCorrelation when a
// series is constant.
func (s *Service) Correlate(ctx context.Context, x, y domain.SeriesKey, method stats.Method, window time.Duration) (CorrelationReport, error) {
	if err := ctx.Err(); err != nil {
		return CorrelationReport{}, err
	}
	kind := string(method)
	from := s.windowStart(window)

	vx, ok := s.reader.Version(x)
	if !ok {
		s.observe(kind, store.ErrSeriesNotFound)
		return CorrelationReport{}, fmt.Errorf("%s: %w", x, store.ErrSeriesNotFound)
	}
	vy, ok := s.reader.Version(y)
	if !ok {
		s.observe(kind, store.ErrSeriesNotFound)
		return CorrelationReport{}, fmt.Errorf("%s: %w", y, store.ErrSeriesNotFound)
	}

	cacheKey := fmt.Sprintf("%s|%s|v%d|%s|v%d|%d", method, x, vx, y, vy, from.UnixNano())
	if cached, ok := s.correlations.get(cacheKey); ok {
		s.metrics.ResultCache.WithLabelValues("hit").Inc()
		s.observe(kind, nil)
		return cached, nil
	}
	s.metrics.ResultCache.WithLabelValues("miss").Inc()

	start := time.Now()
	report, err := s.correlate(x, y, method, from)
	s.metrics.AnalysisDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	s.observe(kind, err)
	if err != nil {
		s.logger.Debug("correlation not computed", "x", x.String(), "y", y.String(), "method", kind, "error", err)
		return CorrelationReport{}, err
	}
	s.correlations.put(cacheKey, report)
	return report, nil
}

func (s *Service) correlate(x, y domain.SeriesKey, method stats.Method, from time.Time) (CorrelationReport, error) {
	xs, err := s.reader.Range(x, from, time.Time{})
	if err != nil {
		return CorrelationReport{}, fmt.Errorf("%s: %w", x, err)
	}
	ys, err := s.reader.Range(y, from, time.Time{})
	if err != nil {
		return CorrelationReport{}, fmt.Errorf("%s: %w", y, err)
	}

	pair := domain.Align(xs, ys, s.resolution)
	px, py := pair.Complete()
	if len(px) < stats.MinSamples {
		return CorrelationReport{}, fmt.Errorf("%d paired observations: %w", len(px), stats.ErrInsufficientSamples)
	}

	c, err := stats.Correlate(method, px, py)
	if err != nil {
		return CorrelationReport{}, err
	}

	report := CorrelationReport{
		X:           x,
		Y:           y,
		Method:      c.Method,
		Coefficient: c.Coefficient,
		PValue:      c.PValue,
		N:           c.N,
		Buckets:     pair.Len(),
		Resolution:  s.resolution.String(),
		From:        from,
		Significant: c.PValue < SignificanceLevel,
	}
	report.Formatted.Coefficient = stats.Format(c.Coefficient)
	report.Formatted.PValue = stats.Format(c.PValue)
	return report, nil
}

// windowStart returns the inclusive lower bound of a trailing window,
// truncated to the alignment resolution so repeated queries share cache
// entries. Zero means unbounded.
func (s *Service) windowStart(window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	from := domain.Now().UTC().Add(-window)
	if s.resolution > 0 {
		from = from.Truncate(s.resolution)
	}
	return from
}

func (s *Service) observe(kind string, err error) {
	s.metrics.Analyses.WithLabelValues(kind, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoData), errors.Is(err, store.ErrSeriesNotFound):
		return "no_data"
	case errors.Is(err, stats.ErrInsufficientSamples):
		return "insufficient"
	case errors.Is(err, stats.ErrUndefinedCorrelation):
		return "undefined"
	default:
		return "error"
	}
}
