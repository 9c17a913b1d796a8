package repository

import (
	"context"
	"testing"

	"brilliora/utils"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

// setupTestDB starts a throwaway MongoDB. Tests are skipped in -short mode or
// when no container runtime is available.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("mongo container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := utils.ConnectDB(ctx, uri, "testdb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(ctx) })

	return db
}
