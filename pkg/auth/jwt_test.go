package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	svc := NewTokenService(Config{Secret: "test-secret", Issuer: "vetdesk-auth"})

	token, err := svc.Issue("user-123", IdentityClaims{
		Email: "vet@example.com",
		Name:  "Dr. Vet",
	}, time.Minute)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "vet@example.com", claims.Email)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenService(Config{Secret: "test-secret", Issuer: "someone-else"})
	verifier := NewTokenService(Config{Secret: "test-secret", Issuer: "vetdesk-auth"})

	token, err := issuer.Issue("user-123", IdentityClaims{}, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService(Config{Secret: "other-secret", Issuer: "vetdesk-auth"})
	verifier := NewTokenService(Config{Secret: "test-secret", Issuer: "vetdesk-auth"})

	token, err := issuer.Issue("user-123", IdentityClaims{}, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService(Config{Secret: "test-secret", Issuer: "vetdesk-auth"})

	token, err := svc.Issue("user-123", IdentityClaims{}, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}
