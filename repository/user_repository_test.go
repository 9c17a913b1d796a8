package repository

import (
	"context"
	"testing"

	"brilliora/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, EnsureIndexes(ctx, repo))

	_, err := repo.FindFirst(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	user := &models.User{Name: "Asha", Email: " Asha@Example.com ", Password: "hash", Role: "user"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, "asha@example.com", user.Email)

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Name: "Other", Email: "ASHA@example.com", Role: "user"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "asha@EXAMPLE.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "hash", got.Password)

		got, err = repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha", got.Name)

		first, err := repo.FindFirst(ctx)
		require.NoError(t, err)
		assert.Equal(t, user.ID, first.ID)

		_, err = repo.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("profile and password", func(t *testing.T) {
		updated, err := repo.UpdateProfile(ctx, user.ID, models.ProfileUpdate{
			Name:    "Asha R",
			Phone:   "+91 99999 00000",
			Address: models.Address{City: "Pune", Country: "India"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Asha R", updated.Name)
		assert.Equal(t, "Pune", updated.Address.City)
		assert.Equal(t, "asha@example.com", updated.Email)

		require.NoError(t, repo.UpdatePassword(ctx, user.ID, "newhash"))
		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.Password)

		assert.ErrorIs(t, repo.UpdatePassword(ctx, primitive.NewObjectID(), "x"), ErrNotFound)
	})
}
