package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"photoshare/internal/auth"
	"photoshare/internal/models"
)

func createRandomUser(t *testing.T, username string) *models.User {
	t.Helper()
	hashedPassword, err := auth.HashPassword("secretpassword")
	require.NoError(t, err)

	user, err := testStore.CreateUser(context.Background(), CreateUserParams{
		Username:     username,
		Email:        fmt.Sprintf("%s-%d@example.com", username, time.Now().UnixNano()),
		PasswordHash: hashedPassword,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	user := createRandomUser(t, "dup")

	_, err := testStore.CreateUser(ctx, CreateUserParams{
		Username:     "someone-else",
		Email:        user.Email,
		PasswordHash: "x",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetUsersByUsername(t *testing.T) {
	ctx := context.Background()
	first := createRandomUser(t, "testuser")
	second := createRandomUser(t, "testuser")

	found, err := testStore.GetUsersByUsername(ctx, "testuser")
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, first.ID, found[0].ID, "oldest account comes first")
	require.Equal(t, second.ID, found[1].ID)
	require.NotEmpty(t, found[0].PasswordHash)

	none, err := testStore.GetUsersByUsername(ctx, "nonexistent")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	user := createRandomUser(t, "byid")

	found, err := testStore.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, found.Email)

	missing, err := testStore.GetUserByID(ctx, -1)
	require.NoError(t, err)
	require.Nil(t, missing)
}
