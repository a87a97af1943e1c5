package tokengate

import (
	"errors"
	"time"

	"github.com/veslind/tokengate/password"
	"github.com/veslind/tokengate/token"
)

// Config is the complete engine configuration. It is injected at
// construction, validated by [Builder.Build], and immutable afterwards;
// there is no ambient global configuration state.
type Config struct {
	Token      TokenConfig
	Password   PasswordConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// TokenConfig carries signing material and token lifetimes. The signing
// key is provisioned by the operator at process start; a missing or
// invalid key fails Build, never a request.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "ed25519" (default) or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// PasswordConfig carries the argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// RevocationConfig controls the blacklist store.
type RevocationConfig struct {
	RedisPrefix string
}

// AuditConfig controls the audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration applied by [New] before any
// WithConfig override: 15-minute access tokens, 14-day refresh tokens,
// ed25519 signing, and the default argon2id costs.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		Token: TokenConfig{
			AccessTTL:     token.DefaultAccessTTL,
			RefreshTTL:    token.DefaultRefreshTTL,
			SigningMethod: string(token.MethodEd25519),
			Issuer:        "tokengate",
		},
		Password: PasswordConfig{
			Memory:      pw.Memory,
			Time:        pw.Time,
			Parallelism: pw.Parallelism,
			SaltLength:  pw.SaltLength,
			KeyLength:   pw.KeyLength,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "tgrv",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Token.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if cfg.Token.RefreshTTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if cfg.Token.RefreshTTL <= cfg.Token.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	return nil
}
