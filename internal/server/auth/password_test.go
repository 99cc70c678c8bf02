package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("12345678")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "12345678" {
		t.Fatalf("hash equals plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	if !VerifyPassword("12345678", hash) {
		t.Fatalf("VerifyPassword rejected correct password")
	}
	if VerifyPassword("wrongpass", hash) {
		t.Fatalf("VerifyPassword accepted wrong password")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct salted hashes, got identical values")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if VerifyPassword("x", "not-a-bcrypt-hash") {
		t.Fatalf("VerifyPassword accepted malformed stored hash")
	}
	if VerifyPassword("x", "") {
		t.Fatalf("VerifyPassword accepted empty stored hash")
	}
}
