package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/contacthub/internal/common"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("super-secret"), "HS256")
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func TestNewCodec_UnknownAlgorithm(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec([]byte("k"), "bogus"); err == nil {
		t.Fatalf("expected error for unknown algorithm, got nil")
	}
	if _, err := NewCodec([]byte("k"), "RS256"); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm, got nil")
	}
}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	tok, err := c.Generate("agent007", TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	subject, err := c.Parse(tok, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if subject != "agent007" {
		t.Fatalf("subject mismatch: got %q want %q", subject, "agent007")
	}
}

func TestParse_TokenTypeIsolation(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	refresh, err := c.Generate("agent007", TokenTypeRefresh, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	access, err := c.Generate("agent007", TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := c.Parse(refresh, TokenTypeAccess); err != common.ErrInvalidToken {
		t.Fatalf("refresh token accepted as access token, err=%v", err)
	}
	if _, err := c.Parse(access, TokenTypeRefresh); err != common.ErrInvalidToken {
		t.Fatalf("access token accepted as refresh token, err=%v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	tok, err := c.Generate("u1", TokenTypeAccess, -1*time.Second)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := c.Parse(tok, TokenTypeAccess); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	other, err := NewCodec([]byte("other-secret"), "HS256")
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	tok, err := c.Generate("u2", TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := other.Parse(tok, TokenTypeAccess); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken for invalid signature, got %v", err)
	}
}

func TestParse_MalformedString(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	if _, err := c.Parse("not.a.jwt", TokenTypeAccess); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestEmailToken_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	tok, err := c.GenerateEmailToken("agent007@x.com")
	if err != nil {
		t.Fatalf("GenerateEmailToken error: %v", err)
	}

	email, err := c.ParseEmailToken(tok)
	if err != nil {
		t.Fatalf("ParseEmailToken error: %v", err)
	}
	if email != "agent007@x.com" {
		t.Fatalf("email mismatch: got %q", email)
	}
}

func TestParseEmailToken_RejectsTypedTokens(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	access, err := c.Generate("agent007", TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	refresh, err := c.Generate("agent007", TokenTypeRefresh, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := c.ParseEmailToken(access); err != common.ErrInvalidToken {
		t.Fatalf("access token accepted as email token, err=%v", err)
	}
	if _, err := c.ParseEmailToken(refresh); err != common.ErrInvalidToken {
		t.Fatalf("refresh token accepted as email token, err=%v", err)
	}
}

func TestParse_RejectsEmailTokens(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	tok, err := c.GenerateEmailToken("agent007@x.com")
	if err != nil {
		t.Fatalf("GenerateEmailToken error: %v", err)
	}

	if _, err := c.Parse(tok, TokenTypeAccess); err != common.ErrInvalidToken {
		t.Fatalf("email token accepted as access token, err=%v", err)
	}
}
