// Package tokengate provides a self-contained token authentication
// engine with signed JWT access tokens, rotating refresh tokens, and a
// revocation blacklist backed by Redis or process memory.
//
// The package is designed for concurrent server workloads: Engine
// methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// tokengate is the public surface. It exposes [Engine], [Builder],
// [Config], the error taxonomy, and value types (TokenPair, AuthResult,
// MetricsSnapshot). Token encoding lives in token/, password hashing in
// password/, the blacklist in revoke/, and audit/metric plumbing under
// internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, codec internals, or hash formats in its
//     public API beyond the revoke.Store and UserStore seams.
//   - Log, store, or echo raw passwords anywhere, including audit
//     events.
//   - Persist any per-session server state; validity is decided by
//     signature, expiry, and blacklist membership alone.
//
// # Concurrency contract
//
// Refresh rotation is linearized per token ID by the revocation store's
// compare-and-insert: of N concurrent refreshes of one token exactly
// one returns a new pair and the rest fail with [ErrRevoked]. Authorize
// is the hot path and performs one blacklist lookup per call.
package tokengate
