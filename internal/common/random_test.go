package common

import (
	"strings"
	"testing"
)

func TestMakeRandAlphanumericString_LengthAndCharset(t *testing.T) {
	s, err := MakeRandAlphanumericString(12)
	if err != nil {
		t.Fatalf("MakeRandAlphanumericString error: %v", err)
	}
	if len(s) != 12 {
		t.Fatalf("length mismatch: got %d want 12", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(alphanumeric, r) {
			t.Fatalf("unexpected character %q in %q", r, s)
		}
	}
}

func TestMakeRandAlphanumericString_ZeroSize(t *testing.T) {
	s, err := MakeRandAlphanumericString(0)
	if err != nil {
		t.Fatalf("MakeRandAlphanumericString error: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string, got %q", s)
	}
}

func TestMakeRandAlphanumericString_EntropyHint(t *testing.T) {
	// Not a statistical test, just a sanity check that consecutive
	// values are not identical.
	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		s, err := MakeRandAlphanumericString(16)
		if err != nil {
			t.Fatalf("MakeRandAlphanumericString error: %v", err)
		}
		if _, ok := seen[s]; ok {
			t.Fatalf("duplicate random string %q", s)
		}
		seen[s] = struct{}{}
	}
}
