package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService() *SessionService {
	return NewSessionService(config.AuthConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		SessionTTL: time.Hour,
		Issuer:     "test-issuer",
	})
}

func newTestUser() *identity.User {
	return &identity.User{
		ID:    "410544b2-4001-4271-9855-fec4b6a6442a",
		Name:  "User",
		Email: "user@nextmail.com",
	}
}

func TestSessionService_IssueAndVerify(t *testing.T) {
	svc := newTestSessionService()

	session, token, err := svc.Issue(newTestUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, session.ID)
	assert.WithinDuration(t, session.IssuedAt.Add(time.Hour), session.ExpiresAt, time.Second)

	verified, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, verified.ID)
	assert.Equal(t, "410544b2-4001-4271-9855-fec4b6a6442a", verified.UserID)
	assert.Equal(t, "user@nextmail.com", verified.Email)
	assert.Equal(t, "User", verified.Name)
	assert.WithinDuration(t, session.ExpiresAt, verified.ExpiresAt, time.Second)
}

func TestSessionService_IssueUniqueIDs(t *testing.T) {
	svc := newTestSessionService()

	first, _, err := svc.Issue(newTestUser())
	require.NoError(t, err)
	second, _, err := svc.Issue(newTestUser())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSessionService_VerifyExpired(t *testing.T) {
	svc := newTestSessionService()
	_, token, err := svc.Issue(newTestUser())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSessionService_VerifyWrongSecret(t *testing.T) {
	_, token, err := newTestSessionService().Issue(newTestUser())
	require.NoError(t, err)

	other := NewSessionService(config.AuthConfig{
		Secret:     "another-secret-key-at-least-32-ch",
		SessionTTL: time.Hour,
		Issuer:     "test-issuer",
	})

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_VerifyWrongIssuer(t *testing.T) {
	_, token, err := newTestSessionService().Issue(newTestUser())
	require.NoError(t, err)

	other := NewSessionService(config.AuthConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		SessionTTL: time.Hour,
		Issuer:     "someone-else",
	})

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_VerifyGarbage(t *testing.T) {
	_, err := newTestSessionService().Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_VerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "s1", Issuer: "test-issuer"},
		UserID:           "u1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestSessionService().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_VerifyMissingUserID(t *testing.T) {
	svc := newTestSessionService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "s1",
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestSessionService_VerifyMissingSessionID(t *testing.T) {
	svc := newTestSessionService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrMissingSessionID)
}
