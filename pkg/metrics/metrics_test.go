package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLRU struct {
	hits, misses uint64
	n            int
}

func (f *fakeLRU) Stats() (uint64, uint64) { return f.hits, f.misses }
func (f *fakeLRU) Len() int                { return f.n }

func TestRegisterLRU(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := &fakeLRU{hits: 3, misses: 1, n: 2}
	require.NoError(t, RegisterLRU(reg, "l1", c))

	// values are read at scrape time
	c.hits = 5

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range mfs {
		m := mf.GetMetric()[0]
		require.Equal(t, "l1", m.GetLabel()[0].GetValue())
		switch {
		case m.GetCounter() != nil:
			got[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			got[mf.GetName()] = m.GetGauge().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"hatokurandom_lru_hits_total":   5,
		"hatokurandom_lru_misses_total": 1,
		"hatokurandom_lru_entries":      2,
	}, got)

	assert.Error(t, RegisterLRU(reg, "l1", c), "registering the same layer twice")
}
