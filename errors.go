package tokengate

import (
	"errors"

	"github.com/veslind/tokengate/revoke"
	"github.com/veslind/tokengate/token"
)

// Client-facing failure taxonomy. Every authentication failure returned
// by the Engine wraps exactly one of these sentinels; ErrorCode maps them
// to stable machine-readable codes for transport layers.
var (
	// ErrInvalidCredentials is returned on login when the identifier is
	// unknown or the password does not match. The two cases are
	// indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken is returned when a protected request carries no
	// bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrRevoked is returned when a token's identifier is blacklisted,
	// including refresh tokens that lost a rotation race.
	ErrRevoked = errors.New("token revoked")

	// ErrMalformed, ErrInvalidSignature, and ErrExpired are the codec's
	// decode failures, re-exported for callers that only import the
	// root package.
	ErrMalformed        = token.ErrMalformed
	ErrInvalidSignature = token.ErrInvalidSignature
	ErrExpired          = token.ErrExpired

	// ErrStoreUnavailable marks revocation-store outages. It is an
	// operational failure (5xx class), never conflated with the
	// per-token taxonomy above.
	ErrStoreUnavailable = revoke.ErrUnavailable

	// ErrEngineNotReady is returned when an Engine is used before Build
	// or after Close.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Stable machine-readable codes carried in 401-equivalent responses.
const (
	CodeInvalidCredentials = "InvalidCredentials"
	CodeMissingToken       = "MissingToken"
	CodeMalformed          = "Malformed"
	CodeInvalidSignature   = "InvalidSignature"
	CodeExpired            = "Expired"
	CodeRevoked            = "Revoked"
	CodeStoreUnavailable   = "StoreUnavailable"
	CodeInternal           = "Internal"
)

// ErrorCode maps an Engine error to its stable code. Unknown errors map
// to CodeInternal so transport layers never leak internal messages.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrMissingToken):
		return CodeMissingToken
	case errors.Is(err, ErrExpired):
		return CodeExpired
	case errors.Is(err, ErrInvalidSignature):
		return CodeInvalidSignature
	case errors.Is(err, ErrRevoked):
		return CodeRevoked
	case errors.Is(err, ErrMalformed):
		return CodeMalformed
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// IsAuthFailure reports whether err belongs to the 401-equivalent class,
// as opposed to operational failures like ErrStoreUnavailable.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrRevoked)
}
