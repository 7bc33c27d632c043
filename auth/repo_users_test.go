package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/directory-app/directory-api/auth"
)

func seedUser(t *testing.T, repo auth.RepositoryManager, email, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := repo.Users().Create(context.Background(), &auth.User{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     email,
		Password:  hash,
	})
	require.NoError(t, err)
	return user
}

func TestUsersCreateLatchesWasNew(t *testing.T) {
	repo := setupRepo(t)

	user := seedUser(t, repo, "ana@example.com", "secret1")

	assert.True(t, user.WasNew())
	assert.NotZero(t, user.ID)
	assert.NotNil(t, user.CreatedAt)
	assert.NotNil(t, user.UpdatedAt)
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "ana@example.com", "secret1")

	_, err := repo.Users().Create(ctx, &auth.User{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "ana@example.com",
		Password:  "whatever",
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestUsersGetByEmailExcludesPassword(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "ana@example.com", "secret1")

	user, err := repo.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, user.Password, "default projection must not include the hash")
	assert.Equal(t, "ana@example.com", user.Email)

	withHash, err := repo.Users().GetByEmailWithPassword(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, withHash.Password)
}

func TestUsersGetByEmailNormalizesLookup(t *testing.T) {
	repo := setupRepo(t)

	seedUser(t, repo, "ana@example.com", "secret1")

	user, err := repo.Users().GetByEmail(context.Background(), "  Ana@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestUsersGetByUUIDExcludesPassword(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seeded := seedUser(t, repo, "ana@example.com", "secret1")

	user, err := repo.Users().GetByUUID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Empty(t, user.Password, "primary key reads must not include the hash")

	_, err = repo.Users().GetByUUID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestUsersGetByEmailNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.Users().GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestUsersToggleActive(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "ana@example.com", "secret1")
	require.False(t, user.IsActive)

	user, err := repo.Users().ToggleActive(ctx, user)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	stored, err := repo.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.WasNew(), "reads must not report records as new")

	user, err = repo.Users().ToggleActive(ctx, user)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestTokenVerificationsRecord(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "ana@example.com", "secret1")

	record, err := repo.TokenVerifications().Record(ctx, user.ID, "one-time-token")
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.Equal(t, user.ID, record.UserID)
	assert.Equal(t, "one-time-token", record.Token)
	assert.NotNil(t, record.CreatedAt)
}

func TestTokenVerificationsRecordEmptyToken(t *testing.T) {
	repo := setupRepo(t)

	user := seedUser(t, repo, "ana@example.com", "secret1")

	_, err := repo.TokenVerifications().Record(context.Background(), user.ID, "")
	assert.Error(t, err)
}
