package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const missingMarker = -9999

var (
	// ErrMissingSiteID is returned for readings without a site identifier.
	ErrMissingSiteID = errors.New("reading has no site_id")
	// ErrUnknownVariable is returned for variables outside the supported set.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrMissingTimestamp is returned when neither the payload nor the message carries a time.
	ErrMissingTimestamp = errors.New("reading has no timestamp")
	// ErrUnknownUnit is returned when a value's unit cannot be converted to
	// the variable's canonical unit.
	ErrUnknownUnit = errors.New("unknown unit")
)

var variableAliases = map[string]string{
	"water_level":   VariableWaterLevel,
	"stage":         VariableWaterLevel,
	"level":         VariableWaterLevel,
	"gauge_height":  VariableWaterLevel,
	"discharge":     VariableDischarge,
	"flow":          VariableDischarge,
	"streamflow":    VariableDischarge,
	"rainfall":      VariableRainfall,
	"rain":          VariableRainfall,
	"precip":        VariableRainfall,
	"precipitation": VariableRainfall,
	"soil_moisture": VariableSoilMoisture,
	"soil":          VariableSoilMoisture,
	"vwc":           VariableSoilMoisture,
}

// unitFactors maps each variable's accepted units to the multiplier that
// converts them to the canonical unit.
var unitFactors = map[string]map[string]float64{
	VariableWaterLevel: {
		"m":      1,
		"cm":     0.01,
		"mm":     0.001,
		"ft":     0.3048,
		"feet":   0.3048,
		"in":     0.0254,
		"inches": 0.0254,
	},
	VariableDischarge: {
		"m3/s":   1,
		"cms":    1,
		"cumecs": 1,
		"l/s":    0.001,
		"cfs":    0.028316846592,
		"ft3/s":  0.028316846592,
	},
	VariableRainfall: {
		"mm":     1,
		"cm":     10,
		"in":     25.4,
		"inches": 25.4,
	},
	VariableSoilMoisture: {
		"%":       1,
		"percent": 1,
		"m3/m3":   100,
	},
}

// missingValues are the cell contents collectors use for "no observation".
var missingValues = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// ParseRawReading deserializes a RawEvent's value into a Reading. The variable
// is resolved to its canonical name, the value is parsed with gap sentinels
// mapped to nil, and the message timestamp stands in for a missing one.
func ParseRawReading(raw RawEvent) (Reading, error) {
	var rec RawReadingRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Reading{}, fmt.Errorf("parse raw reading: %w", err)
	}

	siteID := strings.TrimSpace(rec.SiteID)
	if siteID == "" {
		return Reading{}, ErrMissingSiteID
	}
	variable, ok := NormalizeVariable(rec.Variable)
	if !ok {
		return Reading{}, fmt.Errorf("%w: %q", ErrUnknownVariable, rec.Variable)
	}
	unit := normalizeUnit(variable, rec.Unit)
	if _, ok := unitFactors[variable][unit]; !ok {
		return Reading{}, fmt.Errorf("%w: %q for %s", ErrUnknownUnit, rec.Unit, variable)
	}
	ts, err := parseTimestamp(rec.Timestamp, raw.Timestamp)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		SiteID:     siteID,
		SiteName:   strings.TrimSpace(rec.SiteName),
		Variable:   variable,
		Value:      ParseValue(rec.Value),
		Unit:       strings.TrimSpace(rec.Unit),
		Timestamp:  ts,
		Geo:        Geo{Lat: parseFloatOrZero(rec.Lat), Lon: parseFloatOrZero(rec.Lon)},
		Quality:    strings.ToLower(strings.TrimSpace(rec.Quality)),
		RawPayload: raw.Value,
	}, nil
}

// NormalizeReading converts the value to the variable's canonical unit, drops
// values the collector flagged as unreliable, and assigns the deterministic
// ID, hourly time bucket and processing time. A unit with no conversion to
// the canonical one yields ErrUnknownUnit.
func NormalizeReading(r Reading) (Reading, error) {
	value, err := convertToCanonical(r.Variable, r.Value, normalizeUnit(r.Variable, r.Unit))
	if err != nil {
		return Reading{}, err
	}
	r.Value, r.Unit = value, CanonicalUnit(r.Variable)
	if r.Quality == "suspect" || r.Quality == "bad" {
		r.Value = nil
	}
	r.ID = generateID(r.SiteID, r.Variable, r.Timestamp)
	r.TimeBucket = deriveTimeBucket(r.Timestamp)
	r.ProcessedAt = clock.Now()
	return r, nil
}

// NormalizeVariable resolves a variable name or alias to its canonical name.
func NormalizeVariable(v string) (string, bool) {
	canonical, ok := variableAliases[strings.ToLower(strings.TrimSpace(v))]
	return canonical, ok
}

// CanonicalUnit returns the unit every value of the variable is stored in.
func CanonicalUnit(variable string) string {
	switch variable {
	case VariableWaterLevel:
		return "m"
	case VariableDischarge:
		return "m3/s"
	case VariableRainfall:
		return "mm"
	case VariableSoilMoisture:
		return "%"
	default:
		return ""
	}
}

// normalizeUnit lower-cases the unit and fills in the canonical one when empty.
func normalizeUnit(variable, unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return CanonicalUnit(variable)
	}
	return unit
}

// convertToCanonical rescales value from unit to the variable's canonical
// unit. The input pointer is never written through.
func convertToCanonical(variable string, value *float64, unit string) (*float64, error) {
	factor, ok := unitFactors[variable][unit]
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownUnit, unit, variable)
	}
	if value == nil || factor == 1 {
		return value, nil
	}
	v := *value * factor
	return &v, nil
}

// ParseValue returns nil for empty cells, gap markers and anything that is not
// a finite number.
func ParseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if missingValues[strings.ToLower(s)] {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v == missingMarker {
		return nil
	}
	return &v
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseTimestamp(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if fallback.IsZero() {
			return time.Time{}, ErrMissingTimestamp
		}
		return fallback.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts.UTC(), nil
}

// generateID produces a deterministic ID from the reading's identity fields.
func generateID(siteID, variable string, ts time.Time) string {
	input := fmt.Sprintf("%s|%s|%s", siteID, variable, ts.UTC().Format(time.RFC3339Nano))
	hash := sha256.Sum256([]byte(input))
	return variable + "-" + hex.EncodeToString(hash[:8])
}

// deriveTimeBucket truncates the reading time to the hour in UTC.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Hour)
}
