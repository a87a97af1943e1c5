// Package metrics provides lock-free counters for the engine's
// observability surface.
//
// Counters live in cache-line-padded uint64 slots incremented atomically;
// the write path is allocation-free. Export (Prometheus) lives in
// metrics/export/ and reads [Snapshot] values — this package performs no
// I/O and imports no sibling packages.
package metrics
