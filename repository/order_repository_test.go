package repository

import (
	"context"
	"testing"
	"time"

	"brilliora/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestOrder(userID primitive.ObjectID, total float64) *models.Order {
	return &models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{Product: "1", Title: "The Yashashvi Om Ring", Price: total, Quantity: 1},
		},
		Subtotal: total,
		Total:    total,
		Status:   models.StatusProcessing,
		ShippingAddress: models.ShippingAddress{
			Line1: "123 Main Street", City: "Mumbai", State: "Maharashtra", PostalCode: "400001", Country: "India",
		},
	}
}

func TestOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	require.NoError(t, EnsureIndexes(ctx, repo))

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	t.Run("Create assigns id and timestamps", func(t *testing.T) {
		order := newTestOrder(alice, 700)
		require.NoError(t, repo.Create(ctx, order))

		assert.False(t, order.ID.IsZero())
		assert.False(t, order.CreatedAt.IsZero())
		assert.Equal(t, order.CreatedAt, order.UpdatedAt)
	})

	t.Run("ListByUser is newest first and capped", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			require.NoError(t, repo.Create(ctx, newTestOrder(alice, float64(1000+i))))
			time.Sleep(5 * time.Millisecond)
		}
		require.NoError(t, repo.Create(ctx, newTestOrder(bob, 1)))

		orders, err := repo.ListByUser(ctx, alice, 3)
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, 1003.0, orders[0].Total)
		assert.Equal(t, 1002.0, orders[1].Total)
		for _, o := range orders {
			assert.Equal(t, alice, o.UserID)
		}

		count, err := repo.CountByUser(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("ListByUser returns empty slice for unknown user", func(t *testing.T) {
		orders, err := repo.ListByUser(ctx, primitive.NewObjectID(), 20)
		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	t.Run("FindByIDForUser is ownership scoped", func(t *testing.T) {
		order := newTestOrder(alice, 900)
		require.NoError(t, repo.Create(ctx, order))

		got, err := repo.FindByIDForUser(ctx, order.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, 900.0, got.Total)
		assert.Equal(t, "Mumbai", got.ShippingAddress.City)

		_, err = repo.FindByIDForUser(ctx, order.ID, bob)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateStatusForUser", func(t *testing.T) {
		order := newTestOrder(alice, 550)
		require.NoError(t, repo.Create(ctx, order))

		_, err := repo.UpdateStatusForUser(ctx, order.ID, bob, models.StatusShipped)
		assert.ErrorIs(t, err, ErrNotFound)

		updated, err := repo.UpdateStatusForUser(ctx, order.ID, alice, models.StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, models.StatusShipped, updated.Status)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
	})
}
