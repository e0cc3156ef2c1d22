package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTRejectsBadToken(t *testing.T) {
	svc := NewJWTService("test-secret", 1)

	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("different-secret", 1)
	token, err := other.Generate(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
