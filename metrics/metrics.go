package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/variant"
)

// Collector counts descriptor cache events, codec operations and store
// calls. It satisfies codec.Observer and prometheus.Collector.
type Collector struct {
	cache  *prometheus.CounterVec
	ops    *prometheus.CounterVec
	stores *prometheus.CounterVec
	bytes  prometheus.Histogram
}

// New creates a collector whose metric names start with namespace.
func New(namespace string) *Collector {
	return &Collector{
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "typecache",
				Name:      "events_total",
				Help:      "Descriptor cache lookups by event and direction",
			},
			[]string{"event", "direction"}, // hit, miss, conflict
		),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "codec",
				Name:      "operations_total",
				Help:      "Codec operations by name and result",
			},
			[]string{"op", "result"},
		),
		stores: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Store operations by backend, name and result",
			},
			[]string{"backend", "op", "result"},
		),
		bytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "container_bytes",
			Help:      "Size of containers written to a store",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 10), // 8B ~ 2MiB
		}),
	}
}

// CacheHit implements typecache.Observer.
func (c *Collector) CacheHit(_ variant.TypeID, dir variant.Direction) {
	c.cache.WithLabelValues("hit", dir.String()).Inc()
}

// CacheMiss implements typecache.Observer.
func (c *Collector) CacheMiss(_ variant.TypeID, dir variant.Direction) {
	c.cache.WithLabelValues("miss", dir.String()).Inc()
}

// CacheConflict implements typecache.Observer.
func (c *Collector) CacheConflict(_ variant.TypeID, dir variant.Direction) {
	c.cache.WithLabelValues("conflict", dir.String()).Inc()
}

// Operation records the outcome of a codec operation.
func (c *Collector) Operation(op string, err error) {
	c.ops.WithLabelValues(op, result(err)).Inc()
}

// StoreOperation records the outcome of a store call.
func (c *Collector) StoreOperation(backend, op string, err error) {
	c.stores.WithLabelValues(backend, op, result(err)).Inc()
}

// ContainerWritten records the size of a stored container.
func (c *Collector) ContainerWritten(n int) {
	c.bytes.Observe(float64(n))
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.cache.Describe(ch)
	c.ops.Describe(ch)
	c.stores.Describe(ch)
	c.bytes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.cache.Collect(ch)
	c.ops.Collect(ch)
	c.stores.Collect(ch)
	c.bytes.Collect(ch)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
