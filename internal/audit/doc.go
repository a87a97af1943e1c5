// Package audit implements the internal audit event model and the
// buffered dispatcher that forwards events to a caller-provided sink.
//
// The dispatcher decouples authentication hot paths from sink latency:
// Emit never blocks longer than the caller's context allows, and in
// drop-if-full mode it sheds load while counting drops.
package audit
