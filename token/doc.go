// Package token mints and decodes the signed access and refresh tokens
// issued by the engine.
//
// # Claims model
//
// Every token carries a [Claims] payload: subject, kind (access or
// refresh), a random unique token ID, optional role list, and the
// issued-at/expires-at pair. Claims are immutable once minted; the codec
// never trusts a claim before the signature verifies.
//
// # Failure taxonomy
//
// [Codec.Decode] returns errors wrapping exactly one of [ErrMalformed],
// [ErrInvalidSignature], or [ErrExpired]. Expiry takes precedence over
// claim-level failures so an expired token is always reported as expired.
//
// # Architecture boundaries
//
// This package owns token serialization and signature verification only.
// It does NOT consult the revocation store or look up users — those
// responsibilities belong to the Engine.
package token
