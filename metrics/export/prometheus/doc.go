// Package prometheus bridges tokengate metrics into the Prometheus
// client library.
//
// [NewExporter] accepts a *tokengate.Engine and implements
// prometheus.Collector over its counter snapshot. [Exporter.Handler]
// returns a ready scrape endpoint backed by a private registry.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry — callers
//     mount the Handler or register the Collector themselves.
//   - Mutate engine state.
package prometheus
