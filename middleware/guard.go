package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	tokengate "github.com/veslind/tokengate"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the authorization result injected by
// [Guard], if the request passed through it.
func AuthResultFromContext(ctx context.Context) (*tokengate.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*tokengate.AuthResult)
	return res, ok
}

// Guard returns middleware that authorizes every request through the
// engine before invoking the wrapped handler. Rejections carry a JSON
// body with the machine-readable failure code; a revocation store
// outage answers 503 instead of 401 so clients do not discard valid
// tokens.
func Guard(engine *tokengate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				deny(w, http.StatusUnauthorized, tokengate.CodeMissingToken)
				return
			}

			ctx := tokengate.WithClientIP(r.Context(), remoteIP(r))
			res, err := engine.AuthorizeHeader(ctx, r.Header.Get("Authorization"))
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, tokengate.ErrStoreUnavailable) {
					status = http.StatusServiceUnavailable
				}
				deny(w, status, tokengate.ErrorCode(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, authResultContextKey{}, res)))
		})
	}
}

// RequireRole wraps Guard and additionally rejects subjects missing the
// given role with 403.
func RequireRole(engine *tokengate.Engine, role string) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := AuthResultFromContext(r.Context())
			if !ok || !slices.Contains(res.Roles, role) {
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func deny(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code})
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
