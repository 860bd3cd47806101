package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlov/courtbook-api/internal/services"
	"github.com/mpavlov/courtbook-api/tests/testutil"
)

func TestTokenService_Integration_StoreAndValidate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	err := svc.StoreRefreshToken(ctx, user.ID, "hash-abc", time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	userID, err := svc.ValidateRefreshToken(ctx, "hash-abc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestTokenService_Integration_ValidateExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	fixtures.CreateRefreshToken(t, user.ID, "hash-expired", time.Now().Add(-time.Hour))

	_, err := svc.ValidateRefreshToken(ctx, "hash-expired")
	assert.Error(t, err)
}

func TestTokenService_Integration_Revoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	fixtures.CreateRefreshToken(t, user.ID, "hash-revoke", time.Now().Add(24*time.Hour))

	err := svc.RevokeRefreshToken(ctx, "hash-revoke")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(ctx, "hash-revoke")
	assert.Error(t, err)
}

func TestTokenService_Integration_RevokeAllUserTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	other := fixtures.CreateUser(t)
	fixtures.CreateRefreshToken(t, user.ID, "hash-1", time.Now().Add(24*time.Hour))
	fixtures.CreateRefreshToken(t, user.ID, "hash-2", time.Now().Add(24*time.Hour))
	fixtures.CreateRefreshToken(t, other.ID, "hash-other", time.Now().Add(24*time.Hour))

	err := svc.RevokeAllUserTokens(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(ctx, "hash-1")
	assert.Error(t, err)
	_, err = svc.ValidateRefreshToken(ctx, "hash-2")
	assert.Error(t, err)

	// Other users keep their sessions
	otherID, err := svc.ValidateRefreshToken(ctx, "hash-other")
	require.NoError(t, err)
	assert.Equal(t, other.ID, otherID)
}

func TestTokenService_Integration_CleanupExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	fixtures.CreateRefreshToken(t, user.ID, "hash-live", time.Now().Add(24*time.Hour))
	fixtures.CreateRefreshToken(t, user.ID, "hash-stale", time.Now().Add(-time.Hour))

	err := svc.CleanupExpired(ctx)
	require.NoError(t, err)

	var count int
	err = tdb.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`, user.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
