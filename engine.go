package tokengate

import (
	"context"
	"strings"
	"sync"
	"time"

	internalaudit "github.com/veslind/tokengate/internal/audit"
	internalmetrics "github.com/veslind/tokengate/internal/metrics"
	"github.com/veslind/tokengate/password"
	"github.com/veslind/tokengate/revoke"
	"github.com/veslind/tokengate/token"
)

// Audit event types emitted by the engine.
const (
	eventLoginSuccess    = "login.success"
	eventLoginFailure    = "login.failure"
	eventRefreshSuccess  = "refresh.success"
	eventRefreshFailure  = "refresh.failure"
	eventRefreshReuse    = "refresh.reuse"
	eventAuthorizeDenied = "authorize.denied"
	eventLogout          = "logout"
	eventTokenRevoked    = "token.revoked"
)

// Engine is the token authentication core. It orchestrates credential
// validation, token minting, refresh rotation, and revocation checks.
// All methods are safe for concurrent use; minting and decoding are
// stateless, and the only shared mutable resource is the revocation
// store, whose mutations are atomic per token ID.
type Engine struct {
	config      Config
	codec       *token.Codec
	hasher      *password.Argon2
	users       UserStore
	revocations revoke.Store
	metrics     *internalmetrics.Metrics
	audit       *internalaudit.Dispatcher

	// now is swappable in tests.
	now func() time.Time

	closeOnce sync.Once
}

// Login validates the presented credentials and mints a fresh token
// pair: a short-lived access token and a long-lived refresh token bound
// to the same subject with distinct random token IDs. Unknown users and
// wrong passwords both fail with [ErrInvalidCredentials]. The raw
// password is never logged or retained.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (*TokenPair, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	if identifier == "" || pass == "" {
		e.metrics.Inc(internalmetrics.MetricLoginFailure)
		e.emit(ctx, eventLoginFailure, false, "", "", ErrInvalidCredentials, map[string]string{
			"identifier": identifier,
			"reason":     "empty_input",
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricLoginFailure)
		e.emit(ctx, eventLoginFailure, false, "", "", ErrInvalidCredentials, map[string]string{
			"identifier": identifier,
			"reason":     "user_not_found",
		})
		return nil, ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	pass = ""
	if err != nil || !ok {
		e.metrics.Inc(internalmetrics.MetricLoginFailure)
		e.emit(ctx, eventLoginFailure, false, user.UserID, "", ErrInvalidCredentials, map[string]string{
			"identifier": identifier,
			"reason":     "password_mismatch",
		})
		return nil, ErrInvalidCredentials
	}

	pair, accessID, err := e.mintPair(user.UserID, user.Roles)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricLoginFailure)
		e.emit(ctx, eventLoginFailure, false, user.UserID, "", err, nil)
		return nil, err
	}

	e.metrics.Inc(internalmetrics.MetricLoginSuccess)
	e.emit(ctx, eventLoginSuccess, true, user.UserID, accessID, nil, map[string]string{
		"identifier": identifier,
	})

	return pair, nil
}

// Refresh rotates a refresh token: it decodes the presented token as
// kind=refresh, claims its token ID in the revocation store, and on
// winning returns a brand-new access AND refresh token. The claim is an
// atomic compare-and-insert, so of any number of concurrent refreshes
// of one token exactly one succeeds; the rest fail with [ErrRevoked].
// Minting happens before the claim, making the single blacklist insert
// the only committed state change: an interrupted call leaves either no
// change or a complete rotation.
//
// Rotation does not touch previously issued access tokens; they remain
// valid until their own expiry.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.revocations == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.Decode(refreshToken, token.KindRefresh)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		e.emit(ctx, eventRefreshFailure, false, "", "", err, nil)
		return nil, err
	}

	pair, _, err := e.mintPair(claims.Subject, claims.Roles)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		e.emit(ctx, eventRefreshFailure, false, claims.Subject, claims.TokenID, err, nil)
		return nil, err
	}

	won, err := e.revocations.RevokeOnce(ctx, claims.TokenID, e.untilExpiry(claims))
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		e.emit(ctx, eventRefreshFailure, false, claims.Subject, claims.TokenID, err, nil)
		return nil, err
	}
	if !won {
		// The token ID was already blacklisted: either an earlier
		// rotation used it or a concurrent refresh won the race. The
		// pair minted above is discarded and never leaves this call.
		e.metrics.Inc(internalmetrics.MetricRefreshReuseDetected)
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		e.emit(ctx, eventRefreshReuse, false, claims.Subject, claims.TokenID, ErrRevoked, nil)
		return nil, ErrRevoked
	}

	e.metrics.Inc(internalmetrics.MetricRefreshSuccess)
	e.emit(ctx, eventRefreshSuccess, true, claims.Subject, claims.TokenID, nil, nil)

	return pair, nil
}

// Authorize gates a protected operation: it decodes the presented token
// as kind=access, consults the revocation store, and returns the
// authenticated subject. Decode failures propagate unchanged; a
// blacklisted token ID fails with [ErrRevoked] even though decode alone
// would have succeeded.
func (e *Engine) Authorize(ctx context.Context, accessToken string) (*AuthResult, error) {
	if e == nil || e.revocations == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.Decode(accessToken, token.KindAccess)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricAuthorizeDenied)
		e.emit(ctx, eventAuthorizeDenied, false, "", "", err, nil)
		return nil, err
	}

	revoked, err := e.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricAuthorizeDenied)
		e.emit(ctx, eventAuthorizeDenied, false, claims.Subject, claims.TokenID, err, nil)
		return nil, err
	}
	if revoked {
		e.metrics.Inc(internalmetrics.MetricAuthorizeDenied)
		e.emit(ctx, eventAuthorizeDenied, false, claims.Subject, claims.TokenID, ErrRevoked, nil)
		return nil, ErrRevoked
	}

	e.metrics.Inc(internalmetrics.MetricAuthorizeSuccess)

	return &AuthResult{
		SubjectID: claims.Subject,
		TokenID:   claims.TokenID,
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// AuthorizeHeader extracts the bearer token from an Authorization header
// value and delegates to [Engine.Authorize]. A missing or empty bearer
// token fails with [ErrMissingToken].
func (e *Engine) AuthorizeHeader(ctx context.Context, header string) (*AuthResult, error) {
	tok, ok := bearerToken(header)
	if !ok {
		if e != nil {
			e.metrics.Inc(internalmetrics.MetricAuthorizeDenied)
			e.emit(ctx, eventAuthorizeDenied, false, "", "", ErrMissingToken, nil)
		}
		return nil, ErrMissingToken
	}
	return e.Authorize(ctx, tok)
}

// Logout revokes the presented access token until its natural expiry.
// The token must still decode; logging out with an expired token is
// reported as [ErrExpired] since there is nothing left to revoke.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.revocations == nil {
		return ErrEngineNotReady
	}

	claims, err := e.codec.Decode(accessToken, token.KindAccess)
	if err != nil {
		return err
	}

	if err := e.revocations.Revoke(ctx, claims.TokenID, e.untilExpiry(claims)); err != nil {
		return err
	}

	e.metrics.Inc(internalmetrics.MetricLogout)
	e.emit(ctx, eventLogout, true, claims.Subject, claims.TokenID, nil, nil)
	return nil
}

// RevokeRefresh explicitly invalidates a refresh token without rotating
// it. Revoking twice is a no-op.
func (e *Engine) RevokeRefresh(ctx context.Context, refreshToken string) error {
	if e == nil || e.revocations == nil {
		return ErrEngineNotReady
	}

	claims, err := e.codec.Decode(refreshToken, token.KindRefresh)
	if err != nil {
		return err
	}

	if err := e.revocations.Revoke(ctx, claims.TokenID, e.untilExpiry(claims)); err != nil {
		return err
	}

	e.metrics.Inc(internalmetrics.MetricTokenRevoked)
	e.emit(ctx, eventTokenRevoked, true, claims.Subject, claims.TokenID, nil, nil)
	return nil
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped returns the number of audit events shed under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		e.audit.Close()
	})
}

// mintPair stamps and signs a fresh access/refresh pair for subject.
// Both tokens share the subject but carry distinct random token IDs.
func (e *Engine) mintPair(subject string, roles []string) (*TokenPair, string, error) {
	now := e.now()

	accessID := token.NewTokenID()
	access, err := e.codec.Mint(token.Claims{
		Subject:   subject,
		Kind:      token.KindAccess,
		TokenID:   accessID,
		Roles:     roles,
		IssuedAt:  now,
		ExpiresAt: now.Add(e.config.Token.AccessTTL),
	})
	if err != nil {
		return nil, "", err
	}

	refresh, err := e.codec.Mint(token.Claims{
		Subject:   subject,
		Kind:      token.KindRefresh,
		TokenID:   token.NewTokenID(),
		Roles:     roles,
		IssuedAt:  now,
		ExpiresAt: now.Add(e.config.Token.RefreshTTL),
	})
	if err != nil {
		return nil, "", err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, accessID, nil
}

// untilExpiry returns the blacklist TTL for a token: its remaining
// lifetime, so entries never outlive the token they cover.
func (e *Engine) untilExpiry(claims *token.Claims) time.Duration {
	return claims.ExpiresAt.Sub(e.now())
}

func (e *Engine) emit(ctx context.Context, eventType string, success bool, subjectID, tokenID string, cause error, metadata map[string]string) {
	if e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		SubjectID: subjectID,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	e.audit.Emit(ctx, event)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}
	return tok, true
}
