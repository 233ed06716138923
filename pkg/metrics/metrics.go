package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hatokurandom_cache_hits_total",
			Help: "Total number of supply cache hits",
		},
		[]string{"layer"}, // "l2"; the LRU reports through RegisterLRU
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hatokurandom_cache_misses_total",
			Help: "Total number of supply cache misses",
		},
		[]string{"layer"},
	)

	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hatokurandom_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hatokurandom_requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "route", "status"},
	)

	// Codec metrics
	CodecErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hatokurandom_codec_errors_total",
			Help: "Rejected encode and decode requests",
		},
		[]string{"operation"}, // "encode" or "decode"
	)

	SuppliesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hatokurandom_supplies_generated_total",
			Help: "Supplies created through the API",
		},
		[]string{"source"}, // "random", "phrase" or "cids"
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hatokurandom_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// LRUStats is implemented by cache.LRU.
type LRUStats interface {
	Stats() (hits, misses uint64)
	Len() int
}

// RegisterLRU exports the hit, miss and size counts of an in-process cache.
// The values are read from the cache at scrape time.
func RegisterLRU(reg prometheus.Registerer, layer string, c LRUStats) error {
	labels := prometheus.Labels{"layer": layer}
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name:        "hatokurandom_lru_hits_total",
				Help:        "Total number of in-process cache hits",
				ConstLabels: labels,
			},
			func() float64 {
				hits, _ := c.Stats()
				return float64(hits)
			},
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name:        "hatokurandom_lru_misses_total",
				Help:        "Total number of in-process cache misses",
				ConstLabels: labels,
			},
			func() float64 {
				_, misses := c.Stats()
				return float64(misses)
			},
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "hatokurandom_lru_entries",
				Help:        "Current number of entries in the in-process cache",
				ConstLabels: labels,
			},
			func() float64 { return float64(c.Len()) },
		),
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
