package domain

import (
	"sort"
	"time"
)

// AlignedPair holds two series resampled onto the union of their timestamp
// buckets. X and Y are index-aligned with Timestamps; a nil entry means the
// series had no observation in that bucket.
type AlignedPair struct {
	Timestamps []time.Time
	X          []*float64
	Y          []*float64
}

// Len returns the number of buckets.
func (p AlignedPair) Len() int { return len(p.Timestamps) }

// Complete returns the values of the buckets where both series are present.
func (p AlignedPair) Complete() (x, y []float64) {
	x = make([]float64, 0, len(p.X))
	y = make([]float64, 0, len(p.Y))
	for i := range p.X {
		if p.X[i] == nil || p.Y[i] == nil {
			continue
		}
		x = append(x, *p.X[i])
		y = append(y, *p.Y[i])
	}
	return x, y
}

type bucketValue struct {
	at    time.Time
	value *float64
}

// Align buckets both series by truncating timestamps to resolution and joins
// them on the bucket. Within a bucket the latest observation with a value
// wins. A non-positive resolution joins on exact timestamps.
func Align(a, b []Reading, resolution time.Duration) AlignedPair {
	xa := bucketize(a, resolution)
	xb := bucketize(b, resolution)

	seen := make(map[time.Time]bool, len(xa)+len(xb))
	keys := make([]time.Time, 0, len(xa)+len(xb))
	for _, m := range []map[time.Time]bucketValue{xa, xb} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	pair := AlignedPair{
		Timestamps: keys,
		X:          make([]*float64, len(keys)),
		Y:          make([]*float64, len(keys)),
	}
	for i, k := range keys {
		pair.X[i] = xa[k].value
		pair.Y[i] = xb[k].value
	}
	return pair
}

func bucketize(readings []Reading, resolution time.Duration) map[time.Time]bucketValue {
	out := make(map[time.Time]bucketValue, len(readings))
	for _, r := range readings {
		key := r.Timestamp.UTC()
		if resolution > 0 {
			key = key.Truncate(resolution)
		}
		cur, ok := out[key]
		switch {
		case !ok:
			out[key] = bucketValue{at: r.Timestamp, value: r.Value}
		case r.Value == nil:
			// A gap never overwrites an observation.
		case cur.value == nil || !r.Timestamp.Before(cur.at):
			out[key] = bucketValue{at: r.Timestamp, value: r.Value}
		}
	}
	return out
}
