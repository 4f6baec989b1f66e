package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/testutil"
)

func TestSeedIsIdempotent(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	opts := seedOptions{AdminEmail: "Admin@Example.com", AdminPassword: "s3cret-pass"}

	require.NoError(t, seed(ctx, database, opts))
	require.NoError(t, seed(ctx, database, opts))

	zones, err := database.Queries.ListZones(ctx)
	require.NoError(t, err)
	assert.Len(t, zones, len(defaultZones))

	admin, err := database.Queries.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", admin.Role)
	assert.True(t, admin.EmailVerified.Valid)
	assert.True(t, identity.VerifyPassword(admin.PasswordHash.String, "s3cret-pass"))

	count, err := database.Queries.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSeedPromotesExistingUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "captain@example.com", Password: "pw"})

	require.NoError(t, seed(ctx, database, seedOptions{AdminEmail: "captain@example.com"}))

	user, err := database.Queries.GetUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", user.Role)
}

func TestSeedNewAdminRequiresPassword(t *testing.T) {
	database := testutil.NewTestDB(t)

	err := seed(context.Background(), database, seedOptions{AdminEmail: "nopass@example.com"})
	require.Error(t, err)

	zones, err := database.Queries.ListZones(context.Background())
	require.NoError(t, err)
	assert.Empty(t, zones, "failed seed must roll back")
}
