package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes access tokens from refresh tokens. A token minted
// with one kind is rejected when presented where the other is expected.
type Kind string

const (
	// KindAccess marks short-lived tokens that authorize API calls.
	KindAccess Kind = "access"
	// KindRefresh marks long-lived tokens used solely to mint new pairs.
	KindRefresh Kind = "refresh"
)

// SigningMethod selects the signature algorithm for minted tokens.
type SigningMethod string

const (
	// MethodEd25519 signs tokens with an Ed25519 key pair (default).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs tokens with an HMAC-SHA256 shared secret.
	MethodHS256 SigningMethod = "hs256"
)

const (
	// DefaultAccessTTL is the access token lifetime applied when the
	// caller does not configure one.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the refresh token lifetime applied when the
	// caller does not configure one.
	DefaultRefreshTTL = 14 * 24 * time.Hour
)

// Decode failure taxonomy. Every decode error wraps exactly one of these
// sentinels so callers can map failures to stable client-facing codes.
var (
	// ErrMalformed covers tokens that are not parseable, carry missing
	// or inconsistent claims, or are presented with the wrong Kind.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired is returned when a structurally valid, correctly signed
	// token is past its expiry.
	ErrExpired = errors.New("token expired")
)

// Claims is the immutable payload embedded in every minted token.
type Claims struct {
	Subject   string
	Kind      Kind
	TokenID   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Config holds the signing material and verification parameters for a
// Codec. It is validated once by NewCodec and treated as immutable.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration

	// TimeFunc overrides the clock used for expiry validation. Nil means
	// time.Now. Minting never reads the clock; callers stamp Claims.
	TimeFunc func() time.Time
}

// Codec mints and decodes signed tokens. Both operations are pure with
// respect to the codec's state and safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates the key material and returns a ready Codec.
// Misconfigured keys are a construction-time error, kept distinct from
// the per-token decode failures above.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	return &Codec{config: cfg}, nil
}

// NewTokenID returns a fresh random token identifier.
func NewTokenID() string {
	return uuid.NewString()
}

type wireClaims struct {
	Kind  string   `json:"knd"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Mint serializes and signs the given claims. It is a pure function of
// the claims and the signing key; the caller stamps IssuedAt/ExpiresAt.
func (c *Codec) Mint(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("claims missing subject")
	}
	if claims.TokenID == "" {
		return "", errors.New("claims missing token id")
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return "", fmt.Errorf("invalid token kind %q", claims.Kind)
	}
	if claims.ExpiresAt.IsZero() {
		return "", errors.New("claims missing expiry")
	}

	wc := wireClaims{
		Kind:  string(claims.Kind),
		Roles: claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			Issuer:    c.config.Issuer,
		},
	}

	signKey, err := c.signKey()
	if err != nil {
		return "", err
	}

	return jwt.NewWithClaims(c.method(), wc).SignedString(signKey)
}

// Decode verifies the token's signature, then its expiry, then parses
// the claims and checks them against the expected Kind. The returned
// error always wraps ErrMalformed, ErrInvalidSignature, or ErrExpired.
func (c *Codec) Decode(tokenStr string, expected Kind) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}
	if c.config.TimeFunc != nil {
		options = append(options, jwt.WithTimeFunc(c.config.TimeFunc))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &wireClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.verifyKey()
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	wc, ok := tok.Claims.(*wireClaims)
	if !ok || !tok.Valid {
		return nil, ErrMalformed
	}
	if Kind(wc.Kind) != expected {
		return nil, fmt.Errorf("%w: unexpected token kind", ErrMalformed)
	}
	if wc.Subject == "" || wc.ID == "" || wc.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: incomplete claims", ErrMalformed)
	}

	claims := &Claims{
		Subject:   wc.Subject,
		Kind:      Kind(wc.Kind),
		TokenID:   wc.ID,
		Roles:     wc.Roles,
		ExpiresAt: wc.ExpiresAt.Time,
	}
	if wc.IssuedAt != nil {
		claims.IssuedAt = wc.IssuedAt.Time
	}

	return claims, nil
}

// mapParseError folds the library's joined errors into the package
// taxonomy. Expiry wins over claim-level failures so that an expired
// token is always reported as expired.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrEd25519Verification):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func (c *Codec) method() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (c *Codec) signKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(c.config.PrivateKey)
	}
}

func (c *Codec) verifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		if len(c.config.PublicKey) > 0 {
			return parseEdPublicKey(c.config.PublicKey)
		}
		priv, err := parseEdPrivateKey(c.config.PrivateKey)
		if err != nil {
			return nil, err
		}
		return priv.Public(), nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
