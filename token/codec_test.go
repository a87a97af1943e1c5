package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func newTestCodec(t *testing.T, timeFunc func() time.Time) *Codec {
	t.Helper()
	pub, priv := newEdKeys(t)
	codec, err := NewCodec(Config{
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "tokengate-test",
		TimeFunc:      timeFunc,
	})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func testClaims(kind Kind, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Subject:   "user-1",
		Kind:      kind,
		TokenID:   NewTokenID(),
		Roles:     []string{"admin", "user"},
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMintDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t, nil)
	claims := testClaims(KindAccess, time.Minute)

	minted, err := codec.Mint(claims)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	decoded, err := codec.Decode(minted, KindAccess)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Subject != claims.Subject {
		t.Fatalf("subject mismatch: got %q want %q", decoded.Subject, claims.Subject)
	}
	if decoded.TokenID != claims.TokenID {
		t.Fatalf("token id mismatch: got %q want %q", decoded.TokenID, claims.TokenID)
	}
	if decoded.Kind != KindAccess {
		t.Fatalf("kind mismatch: got %q", decoded.Kind)
	}
	if len(decoded.Roles) != 2 || decoded.Roles[0] != "admin" {
		t.Fatalf("roles mismatch: got %v", decoded.Roles)
	}
	if !decoded.ExpiresAt.Equal(claims.ExpiresAt.Truncate(time.Second)) {
		t.Fatalf("expiry mismatch: got %v want %v", decoded.ExpiresAt, claims.ExpiresAt)
	}
}

func TestDecodeRejectsWrongKind(t *testing.T) {
	codec := newTestCodec(t, nil)

	refresh, err := codec.Mint(testClaims(KindRefresh, time.Hour))
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	if _, err := codec.Decode(refresh, KindAccess); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for refresh-as-access, got %v", err)
	}

	access, err := codec.Mint(testClaims(KindAccess, time.Minute))
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	if _, err := codec.Decode(access, KindRefresh); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for access-as-refresh, got %v", err)
	}
}

func TestDecodeExpiredAlwaysExpired(t *testing.T) {
	now := time.Now()
	clock := now
	codec := newTestCodec(t, func() time.Time { return clock })

	minted, err := codec.Mint(testClaims(KindAccess, time.Minute))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := codec.Decode(minted, KindAccess); err != nil {
		t.Fatalf("decode before expiry: %v", err)
	}

	clock = now.Add(2 * time.Minute)
	_, err = codec.Decode(minted, KindAccess)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expired token must not map to another sentinel: %v", err)
	}

	// Wrong expected kind on an expired token still reports expiry.
	if _, err := codec.Decode(minted, KindRefresh); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired regardless of kind, got %v", err)
	}
}

func TestDecodeTamperedSignature(t *testing.T) {
	codec := newTestCodec(t, nil)

	minted, err := codec.Mint(testClaims(KindAccess, time.Minute))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	parts := strings.Split(minted, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", minted)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Decode(tampered, KindAccess); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestDecodeGarbageIsMalformed(t *testing.T) {
	codec := newTestCodec(t, nil)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := codec.Decode(input, KindAccess); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestDecodeRejectsAlgNone(t *testing.T) {
	codec := newTestCodec(t, nil)

	// {"alg":"none"} header with an unsigned payload.
	unsigned := "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ4In0."
	if _, err := codec.Decode(unsigned, KindAccess); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for alg none, got %v", err)
	}
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	codecA := newTestCodec(t, nil)
	codecB := newTestCodec(t, nil)

	minted, err := codecA.Mint(testClaims(KindAccess, time.Minute))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := codecB.Decode(minted, KindAccess); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature across key pairs, got %v", err)
	}
}

func TestMintValidatesClaims(t *testing.T) {
	codec := newTestCodec(t, nil)

	base := testClaims(KindAccess, time.Minute)

	missingSubject := base
	missingSubject.Subject = ""
	if _, err := codec.Mint(missingSubject); err == nil {
		t.Fatal("expected error for missing subject")
	}

	missingID := base
	missingID.TokenID = ""
	if _, err := codec.Mint(missingID); err == nil {
		t.Fatal("expected error for missing token id")
	}

	badKind := base
	badKind.Kind = Kind("session")
	if _, err := codec.Mint(badKind); err == nil {
		t.Fatal("expected error for invalid kind")
	}
}

func TestHS256RoundTrip(t *testing.T) {
	codec, err := NewCodec(Config{
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("hs256-shared-secret-material"),
	})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	minted, err := codec.Mint(testClaims(KindRefresh, time.Hour))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := codec.Decode(minted, KindRefresh); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	if _, err := NewCodec(Config{SigningMethod: MethodHS256}); err == nil {
		t.Fatal("expected hs256 without key to fail")
	}
	if _, err := NewCodec(Config{SigningMethod: MethodEd25519, PrivateKey: []byte("short")}); err == nil {
		t.Fatal("expected invalid ed25519 key to fail")
	}
	if _, err := NewCodec(Config{SigningMethod: SigningMethod("rs256")}); err == nil {
		t.Fatal("expected unsupported method to fail")
	}
	_, priv := newEdKeys(t)
	if _, err := NewCodec(Config{SigningMethod: MethodEd25519, PrivateKey: priv, Leeway: 5 * time.Minute}); err == nil {
		t.Fatal("expected oversized leeway to fail")
	}
}
