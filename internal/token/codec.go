// Package token implements the signed bearer token codec.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures, one per way a presented token can be rejected.
var (
	// ErrExpired indicates the token signature is valid but its lifetime elapsed.
	ErrExpired = errors.New("token: expired")
	// ErrBadSignature indicates the MAC does not match the shared secret.
	ErrBadSignature = errors.New("token: bad signature")
	// ErrMalformed indicates the token could not be parsed at all.
	ErrMalformed = errors.New("token: malformed")
)

// Claim is the verified identity carried by a token.
type Claim struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies HS256-signed bearer tokens.
// Contents are tamper-evident, not confidential.
type Codec struct {
	secret   []byte
	lifetime time.Duration
}

// NewCodec constructs a Codec with the shared signing secret and token lifetime.
func NewCodec(secret []byte, lifetime time.Duration) *Codec {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Codec{secret: secret, lifetime: lifetime}
}

// Lifetime returns the configured token validity duration.
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue signs a token for the given subject, valid from now for the
// configured lifetime.
func (c *Codec) Issue(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token: subject required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the MAC, then decodes the claims, then checks expiry.
// Untrusted input never panics; every failure maps to a typed error.
func (c *Codec) Verify(tokenString string) (Claim, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claim{}, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claim{}, ErrExpired
		default:
			return Claim{}, ErrMalformed
		}
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Claim{}, ErrMalformed
	}
	claim := Claim{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		claim.IssuedAt = claims.IssuedAt.Time
	}
	return claim, nil
}
