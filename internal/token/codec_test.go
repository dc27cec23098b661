package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"), time.Hour)
	tok, err := codec.Issue("inst1")
	require.NoError(t, err)

	claim, err := codec.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "inst1", claim.Subject)
	require.WithinDuration(t, time.Now().Add(time.Hour), claim.ExpiresAt, time.Minute)
	require.False(t, claim.IssuedAt.IsZero())
}

func TestIssueEmptySubject(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	_, err := codec.Issue("   ")
	require.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewCodec(secret, time.Hour).Verify(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	tok, err := codec.Issue("u1")
	require.NoError(t, err)

	// Flip one byte of the signature segment.
	idx := strings.LastIndex(tok, ".")
	require.Positive(t, idx)
	sig := []byte(tok[idx+1:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := tok[:idx+1] + string(sig)

	_, err = codec.Verify(tampered)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWrongKey(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec([]byte("right-secret"), time.Hour).Issue("u1")
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong-secret"), time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c", "x.y"} {
		_, err := codec.Verify(tok)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewCodec(secret, time.Hour).Verify(signed)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	t.Parallel()

	// Header {"alg":"none"} with an empty signature must never verify.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCodec([]byte("secret"), time.Hour).Verify(unsigned)
	require.Error(t, err)
}
