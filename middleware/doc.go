// Package middleware exposes HTTP middleware adapters that gate
// protected routes behind tokengate.Engine authorization.
//
// # Guards
//
//   - [Guard] — reads the Authorization header, calls Engine.AuthorizeHeader,
//     and injects the authorized subject into the request context.
//   - [RequireRole] — layers a role check on top of Guard.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Touch the revocation store (Engine handles I/O).
//   - Make authorization decisions beyond what the Engine and the
//     configured role set express.
package middleware
