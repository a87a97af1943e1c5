// Package revoke tracks blacklisted token identifiers until the tokens
// they cover would have expired anyway.
//
// # Semantics
//
// [Store.Revoke] is idempotent; revoking the same token ID twice is a
// no-op. [Store.RevokeOnce] is the atomic compare-and-insert used by
// refresh rotation: under concurrent calls for one token ID exactly one
// caller observes true. Entries carry a TTL equal to the remaining token
// lifetime, so expired entries drop out without affecting correctness.
//
// # Implementations
//
// [RedisStore] uses SET NX with TTL; Redis expiry doubles as the purge.
// [MemoryStore] is a mutex-guarded map with lazy purge, for tests and
// single-process deployments.
//
// # What this package must NOT do
//
//   - Decode or interpret token strings (only opaque token IDs).
//   - Import the root package or token (no upward imports).
package revoke
