package tokengate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/veslind/tokengate/internal/audit"
	internalmetrics "github.com/veslind/tokengate/internal/metrics"
	"github.com/veslind/tokengate/password"
	"github.com/veslind/tokengate/revoke"
	"github.com/veslind/tokengate/token"
)

// Builder assembles an [Engine] with a fluent API:
//
//	engine, err := tokengate.New().
//		WithConfig(cfg).
//		WithUserStore(users).
//		WithRedis(client).
//		Build()
//
// Build is the single validation point: misconfiguration fails there,
// never on a request path.
type Builder struct {
	config    Config
	userStore UserStore
	redis     redis.UniversalClient
	revStore  revoke.Store
	auditSink AuditSink
	built     bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale. Call it
// before the other With methods if both are used.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithUserStore sets the credential backend consulted by Login.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithRedis backs the revocation blacklist with Redis. The client is
// pinged during Build.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRevocationStore sets an explicit revocation store, taking
// precedence over WithRedis.
func (b *Builder) WithRevocationStore(store revoke.Store) *Builder {
	b.revStore = store
	return b
}

// WithAuditSink sets the destination for audit events. It only takes
// effect when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires all components, and returns
// a ready Engine. A Builder builds at most once. With neither Redis nor
// an explicit store configured the blacklist lives in process memory,
// which is only correct for a single instance.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, fmt.Errorf("builder already built")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if b.userStore == nil {
		return nil, fmt.Errorf("user store is required")
	}

	codec, err := token.NewCodec(token.Config{
		SigningMethod: token.SigningMethod(b.config.Token.SigningMethod),
		PrivateKey:    b.config.Token.PrivateKey,
		PublicKey:     b.config.Token.PublicKey,
		Issuer:        b.config.Token.Issuer,
		Leeway:        b.config.Token.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	revocations := b.revStore
	switch {
	case revocations != nil:
	case b.redis != nil:
		store := revoke.NewRedisStore(b.redis, b.config.Revocation.RedisPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := store.Ping(ctx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		revocations = store
	default:
		revocations = revoke.NewMemoryStore()
	}

	engine := &Engine{
		config:      b.config,
		codec:       codec,
		hasher:      hasher,
		users:       b.userStore,
		revocations: revocations,
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled: b.config.Metrics.Enabled,
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink),
		now: time.Now,
	}

	b.built = true
	return engine, nil
}
