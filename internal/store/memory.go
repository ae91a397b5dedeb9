// Package store keeps recent gauge readings in memory, one time-ordered
// series per site and variable.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
)

// ErrSeriesNotFound is returned for series that have never received a reading.
var ErrSeriesNotFound = errors.New("series not found")

// SeriesInfo describes a stored series.
type SeriesInfo struct {
	Key      domain.SeriesKey `json:"key"`
	SiteName string           `json:"site_name,omitempty"`
	Unit     string           `json:"unit"`
	Count    int              `json:"count"`
	First    time.Time        `json:"first"`
	Last     time.Time        `json:"last"`
	Version  uint64           `json:"version"`
}

type series struct {
	readings []domain.Reading // ascending by Timestamp
	siteName string
	version  uint64
}

// MemoryStore is a bounded, concurrency-safe reading store. Each series keeps
// at most maxPoints readings; the oldest are dropped first.
type MemoryStore struct {
	mu        sync.RWMutex
	series    map[domain.SeriesKey]*series
	maxPoints int
}

// NewMemoryStore creates a store retaining up to maxPoints readings per series.
func NewMemoryStore(maxPoints int) *MemoryStore {
	return &MemoryStore{
		series:    make(map[domain.SeriesKey]*series),
		maxPoints: maxPoints,
	}
}

// LoadBatch stores the readings. It implements the pipeline loader contract.
func (s *MemoryStore) LoadBatch(_ context.Context, readings []domain.Reading) error {
	s.Append(readings)
	return nil
}

// Append inserts readings and returns the keys of the series that changed,
// in first-seen order. A reading whose ID is already stored replaces it.
func (s *MemoryStore) Append(readings []domain.Reading) []domain.SeriesKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	var touched []domain.SeriesKey
	seen := make(map[domain.SeriesKey]bool)
	for _, r := range readings {
		key := r.Key()
		ser, ok := s.series[key]
		if !ok {
			ser = &series{}
			s.series[key] = ser
		}
		ser.insert(r)
		if r.SiteName != "" {
			ser.siteName = r.SiteName
		}
		if !seen[key] {
			seen[key] = true
			touched = append(touched, key)
		}
	}

	for _, key := range touched {
		ser := s.series[key]
		if s.maxPoints > 0 && len(ser.readings) > s.maxPoints {
			ser.readings = append([]domain.Reading(nil), ser.readings[len(ser.readings)-s.maxPoints:]...)
		}
		ser.version++
	}
	return touched
}

// insert places r in timestamp order, replacing a reading with the same ID.
func (ser *series) insert(r domain.Reading) {
	i := sort.Search(len(ser.readings), func(i int) bool {
		return !ser.readings[i].Timestamp.Before(r.Timestamp)
	})
	for j := i; j < len(ser.readings) && ser.readings[j].Timestamp.Equal(r.Timestamp); j++ {
		if ser.readings[j].ID == r.ID {
			ser.readings[j] = r
			return
		}
	}
	ser.readings = append(ser.readings, domain.Reading{})
	copy(ser.readings[i+1:], ser.readings[i:])
	ser.readings[i] = r
}

// Range returns a copy of the readings of key with from <= timestamp <= to.
// A zero from or to leaves that side unbounded.
func (s *MemoryStore) Range(key domain.SeriesKey, from, to time.Time) ([]domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ser, ok := s.series[key]
	if !ok {
		return nil, ErrSeriesNotFound
	}

	lo := 0
	if !from.IsZero() {
		lo = sort.Search(len(ser.readings), func(i int) bool {
			return !ser.readings[i].Timestamp.Before(from)
		})
	}
	hi := len(ser.readings)
	if !to.IsZero() {
		hi = sort.Search(len(ser.readings), func(i int) bool {
			return ser.readings[i].Timestamp.After(to)
		})
	}
	if lo >= hi {
		return []domain.Reading{}, nil
	}
	return append([]domain.Reading(nil), ser.readings[lo:hi]...), nil
}

// Version returns the change counter of key. It increases on every append
// that touches the series.
func (s *MemoryStore) Version(key domain.SeriesKey) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ser, ok := s.series[key]
	if !ok {
		return 0, false
	}
	return ser.version, true
}

// Series lists every stored series ordered by site and variable.
func (s *MemoryStore) Series() []SeriesInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SeriesInfo, 0, len(s.series))
	for key, ser := range s.series {
		info := SeriesInfo{
			Key:      key,
			SiteName: ser.siteName,
			Unit:     domain.CanonicalUnit(key.Variable),
			Count:    len(ser.readings),
			Version:  ser.version,
		}
		if n := len(ser.readings); n > 0 {
			info.First = ser.readings[0].Timestamp
			info.Last = ser.readings[n-1].Timestamp
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.SiteID != out[j].Key.SiteID {
			return out[i].Key.SiteID < out[j].Key.SiteID
		}
		return out[i].Key.Variable < out[j].Key.Variable
	})
	return out
}
