// Package metrics exposes Prometheus counters for descriptor caches, codec
// operations and stores. Register a Collector with any prometheus.Registerer
// and pass it to codec.WithObserver and store.WithMetrics.
package metrics
