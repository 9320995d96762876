package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports Cache statistics as Prometheus metrics.
//
// Register it with a prometheus.Registerer; values are read from Stats at
// scrape time.
type Collector struct {
	cache *Cache

	hits          *prometheus.Desc
	misses        *prometheus.Desc
	shared        *prometheus.Desc
	evictions     *prometheus.Desc
	storeFailures *prometheus.Desc
	entries       *prometheus.Desc
	bytes         *prometheus.Desc
	inFlight      *prometheus.Desc
}

// NewCollector returns a collector for c. The name is attached as the
// "cache" label so several caches can share a registry.
func NewCollector(name string, c *Cache) *Collector {
	labels := prometheus.Labels{"cache": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("contract", "cache", metric), help, nil, labels)
	}
	return &Collector{
		cache:         c,
		hits:          desc("hits_total", "Lookups served from a stored entry."),
		misses:        desc("misses_total", "Lookups that found no stored entry."),
		shared:        desc("shared_total", "Callers served by a computation shared with other callers."),
		evictions:     desc("evictions_total", "Entries evicted by the entry or byte bound."),
		storeFailures: desc("store_failures_total", "Outputs that could not be stored."),
		entries:       desc("entries", "Stored entries."),
		bytes:         desc("bytes", "Summed output size of stored entries."),
		inFlight:      desc("in_flight", "Computations currently running."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.shared
	ch <- c.evictions
	ch <- c.storeFailures
	ch <- c.entries
	ch <- c.bytes
	ch <- c.inFlight
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.shared, prometheus.CounterValue, float64(s.Shared))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.storeFailures, prometheus.CounterValue, float64(s.StoreFailures))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(s.Bytes))
	ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(s.InFlight))
}
