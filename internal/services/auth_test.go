package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao0917/quantrooms/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	token, user, err := svc.Register("alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.DefaultRating, user.Rating)

	// Duplicate username rejected.
	_, _, err = svc.Register("alice", "password456")
	assert.Error(t, err)

	// Login round-trips to a valid token.
	token, _, err = svc.Login("alice", "password123")
	require.NoError(t, err)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, _, err := svc.Register("alice", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "wrong")
	assert.Error(t, err)

	_, _, err = svc.Login("nobody", "password123")
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	// Token signed with a different secret.
	other := NewAuthService(db, "other-secret")
	token, err := other.GenerateToken(1)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
