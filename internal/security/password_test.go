package security_test

import (
	"testing"

	"github.com/staynest/staynest/internal/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("secret1")

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "secret1" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !security.VerifyPassword(hash, "secret1") {
		t.Fatalf("expected correct password to verify")
	}

	if security.VerifyPassword(hash, "wrong-password") {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := security.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	h2, err := security.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "garbage", digest: "not-a-bcrypt-digest"},
		{name: "truncated", digest: "$2a$10$abc"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if security.VerifyPassword(tt.digest, "secret1") {
				t.Fatalf("malformed digest %q must verify as false", tt.digest)
			}
		})
	}
}
