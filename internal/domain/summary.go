package domain

import (
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/stats"
)

// SeriesSummary is the descriptive-statistics event published for a series
// after new readings arrive.
type SeriesSummary struct {
	Series      SeriesKey         `json:"series"`
	SiteName    string            `json:"site_name,omitempty"`
	Unit        string            `json:"unit"`
	WindowStart time.Time         `json:"window_start"`
	WindowEnd   time.Time         `json:"window_end"`
	Summary     stats.Summary     `json:"summary"`
	Formatted   map[string]string `json:"formatted"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// NewSeriesSummary summarizes readings of one series, ordered by time. It
// reports false when none of the readings carries a value.
func NewSeriesSummary(key SeriesKey, readings []Reading) (SeriesSummary, bool) {
	summary, ok := stats.Summarize(Values(readings))
	if !ok {
		return SeriesSummary{}, false
	}
	s := SeriesSummary{
		Series:      key,
		Unit:        CanonicalUnit(key.Variable),
		WindowStart: readings[0].Timestamp,
		WindowEnd:   readings[len(readings)-1].Timestamp,
		Summary:     summary,
		Formatted:   FormatSummary(summary),
		GeneratedAt: clock.Now(),
	}
	for i := len(readings) - 1; i >= 0; i-- {
		if readings[i].SiteName != "" {
			s.SiteName = readings[i].SiteName
			break
		}
	}
	return s, true
}

// FormatSummary renders every statistic with stats.Format for display.
func FormatSummary(s stats.Summary) map[string]string {
	return map[string]string{
		"mean": stats.Format(s.Mean),
		"std":  stats.Format(s.Std),
		"min":  stats.Format(s.Min),
		"p25":  stats.Format(s.P25),
		"p50":  stats.Format(s.P50),
		"p75":  stats.Format(s.P75),
		"max":  stats.Format(s.Max),
	}
}
