package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Canonical variable names.
const (
	VariableWaterLevel   = "water_level"
	VariableDischarge    = "discharge"
	VariableRainfall     = "rainfall"
	VariableSoilMoisture = "soil_moisture"
)

// RawReadingRecord is the flat JSON object produced by the gauge collector.
type RawReadingRecord struct {
	SiteID    string `json:"site_id"`
	SiteName  string `json:"site_name"`
	Variable  string `json:"variable"`
	Value     string `json:"value"`
	Unit      string `json:"unit"`
	Timestamp string `json:"timestamp"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
	Quality   string `json:"quality"` // "good", "estimated", "suspect", "bad"
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// SeriesKey identifies one time series: a variable measured at a site.
type SeriesKey struct {
	SiteID   string `json:"site_id"`
	Variable string `json:"variable"`
}

func (k SeriesKey) String() string {
	return k.SiteID + ":" + k.Variable
}

// ParseSeriesKey parses the "site:variable" form produced by SeriesKey.String.
// Variable aliases are accepted.
func ParseSeriesKey(s string) (SeriesKey, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return SeriesKey{}, fmt.Errorf("invalid series key %q: want site:variable", s)
	}
	siteID := strings.TrimSpace(s[:i])
	if siteID == "" {
		return SeriesKey{}, fmt.Errorf("invalid series key %q: empty site", s)
	}
	variable, ok := NormalizeVariable(s[i+1:])
	if !ok {
		return SeriesKey{}, fmt.Errorf("invalid series key %q: %w", s, ErrUnknownVariable)
	}
	return SeriesKey{SiteID: siteID, Variable: variable}, nil
}

// Reading is a single normalized gauge observation. A nil Value marks a gap.
type Reading struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"site_id"`
	SiteName    string    `json:"site_name,omitempty"`
	Variable    string    `json:"variable"`
	Value       *float64  `json:"value"`
	Unit        string    `json:"unit"`
	Timestamp   time.Time `json:"timestamp"`
	Geo         Geo       `json:"geo,omitempty"`
	Quality     string    `json:"quality,omitempty"`
	TimeBucket  time.Time `json:"time_bucket"`
	ProcessedAt time.Time `json:"processed_at"`

	RawPayload []byte `json:"-"`
}

// Key returns the series the reading belongs to.
func (r Reading) Key() SeriesKey {
	return SeriesKey{SiteID: r.SiteID, Variable: r.Variable}
}

// Values returns the readings' values in order, keeping nil entries for gaps.
func Values(readings []Reading) []*float64 {
	out := make([]*float64, len(readings))
	for i := range readings {
		out[i] = readings[i].Value
	}
	return out
}
