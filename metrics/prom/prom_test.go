package prom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/nwaycache/cache"
)

func TestAdapter_TracksCache(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "nway", "test", prometheus.Labels{"dataset": "users"})

	c := cache.MustNew[int, string](1, 2, cache.Options[int, string]{Metrics: m})
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c") // evicts 1
	c.Get(3)
	c.Get(1)
	c.GetValidated(2, func(string) bool { return false })
	c.UpdateCapacity(5)

	require.InDelta(t, 1, testutil.ToFloat64(m.hits), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.misses), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.evicts.WithLabelValues("rejected")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(m.evicts.WithLabelValues("resize")), 0)
	require.InDelta(t, float64(c.Size()), testutil.ToFloat64(m.resident), 0)
	require.InDelta(t, 5, testutil.ToFloat64(m.wayCap), 0)
}

func TestAdapter_ExpositionNames(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "nway", "demo", nil)
	m.Hit()
	m.WayCapacity(64)

	expected := `
# HELP nway_demo_hits_total Cache hits
# TYPE nway_demo_hits_total counter
nway_demo_hits_total 1
# HELP nway_demo_way_capacity Per-way entry capacity
# TYPE nway_demo_way_capacity gauge
nway_demo_way_capacity 64
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"nway_demo_hits_total", "nway_demo_way_capacity")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "nway_demo_evictions_total")
	require.NoError(t, err)
	require.Equal(t, 3, n, "every eviction reason is pre-created")
}
