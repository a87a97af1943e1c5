package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	tokengate "github.com/veslind/tokengate"
	"github.com/veslind/tokengate/middleware"
)

var validate = validator.New()

// Server wires the engine's operations onto HTTP routes.
type Server struct {
	engine *tokengate.Engine
	router chi.Router
}

// NewServer builds the route tree. The returned Server is an
// http.Handler ready to be served.
func NewServer(engine *tokengate.Engine) *Server {
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Post("/login", s.handleLogin)
	r.Post("/refresh", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard(engine))
		r.Post("/logout", s.handleLogout)
		r.Get("/me", s.handleMe)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,max=1024"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type errorResponse struct {
	Code string `json:"code"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := tokengate.WithClientIP(r.Context(), r.RemoteAddr)
	pair, err := s.engine.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := tokengate.WithClientIP(r.Context(), r.RemoteAddr)
	pair, err := s.engine.Refresh(ctx, req.RefreshToken)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

// handleLogout runs behind the guard, so the token has already been
// authorized; revoking it is the only remaining step.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok, _ := bearerFromHeader(r.Header.Get("Authorization"))
	if err := s.engine.Logout(r.Context(), tok); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.AuthResultFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: tokengate.CodeMissingToken})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subject_id": res.SubjectID,
		"roles":      res.Roles,
		"expires_at": res.ExpiresAt,
	})
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: tokengate.CodeMalformed})
		return false
	}
	if err := validate.Struct(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: tokengate.CodeMalformed})
		return false
	}
	return true
}

// writeEngineError maps the engine taxonomy to HTTP statuses: login
// failures and all token failures are 401, store outages 503, anything
// else 500. Bodies carry only the stable code.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case tokengate.IsAuthFailure(err):
		status = http.StatusUnauthorized
	case errors.Is(err, tokengate.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Code: tokengate.ErrorCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func bearerFromHeader(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) <= len(bearer) || value[:len(bearer)] != bearer {
		return "", false
	}
	return value[len(bearer):], true
}
