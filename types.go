package tokengate

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/veslind/tokengate/internal/audit"
)

// UserRecord is the read-only account view the Engine needs. It is owned
// by the caller's user store; the Engine never writes it.
type UserRecord struct {
	UserID       string
	Identifier   string
	PasswordHash string
	Roles        []string
}

// UserStore is the credential-lookup capability callers must implement
// to integrate tokengate with their user database.
type UserStore interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
}

// TokenPair is the result of a successful login or refresh. Both tokens
// are minted together; there is no state in which only one exists.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by [Engine.Authorize] for an accepted access
// token.
type AuthResult struct {
	SubjectID string
	TokenID   string
	Roles     []string
	ExpiresAt time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events, one
// per line, to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
