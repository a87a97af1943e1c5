package revoke

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be reached.
// It marks an operational failure, never a per-token auth decision.
var ErrUnavailable = errors.New("revocation store unavailable")

// Store is the blacklist consulted on every token validation.
type Store interface {
	// Revoke inserts a blacklist entry for tokenID with the given TTL.
	// Revoking an already-revoked ID is a no-op.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// RevokeOnce atomically inserts a blacklist entry and reports
	// whether this call created it. Exactly one concurrent caller per
	// tokenID observes true.
	RevokeOnce(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)

	// IsRevoked reports whether tokenID is currently blacklisted.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
