package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.ReadingsStored.Add(3)
	assert.NotSame(t, a.ReadingsStored, b.ReadingsStored)
	assert.InDelta(t, 3, testutil.ToFloat64(a.ReadingsStored), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.ReadingsStored), 0)
}
