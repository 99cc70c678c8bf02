// Package auth implements the credential primitives of the server:
// signed bearer tokens (JWT) and password hashing.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access tokens from refresh tokens. The type is
// embedded in the signed claims and checked on parse; a token of one type is
// never accepted where the other is required.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// emailTokenValidity is the fixed lifetime of email-action tokens
// (confirmation and password-reset links).
const emailTokenValidity = 7 * 24 * time.Hour

// Claims is the claim set carried by access and refresh tokens: the standard
// registered claims plus the token_type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
}

// Codec signs and verifies all tokens issued by the server with one
// process-wide secret and algorithm. It is immutable after construction and
// safe for concurrent use.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec builds a Codec for the given HMAC secret and algorithm name
// ("HS256", "HS384", "HS512").
func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Codec{secret: secret, method: method}, nil
}

// Generate issues a signed token of the given type for subject, expiring
// after validityDuration.
func (c *Codec) Generate(subject string, tokenType TokenType, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(c.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: tokenType,
	})
	return token.SignedString(c.secret)
}

// Parse verifies the signature and expiry of tokenString and checks that the
// embedded token_type matches expected. Every failure mode (bad signature,
// expired, wrong type, malformed payload) collapses to common.ErrInvalidToken
// so callers cannot tell causes apart.
func (c *Codec) Parse(tokenString string, expected TokenType) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.Subject == "" || claims.TokenType != expected {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

// GenerateEmailToken issues a long-lived token whose subject is an email
// address, used in confirmation and password-reset links. Email tokens carry
// no token_type claim; they are verified by ParseEmailToken only.
func (c *Codec) GenerateEmailToken(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(c.method, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(emailTokenValidity)),
	})
	return token.SignedString(c.secret)
}

// ParseEmailToken verifies an email-action token and returns the email
// address it was issued for. Tokens carrying a token_type claim are rejected,
// so an access or refresh token can never drive an email-action flow. All
// failures collapse to common.ErrInvalidToken.
func (c *Codec) ParseEmailToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.Subject == "" || claims.TokenType != "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}
