//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/orderflow/internal/domain"
)

func TestOrderRepo_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17"),
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("orders"),
		tcpostgres.WithPassword("orders"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, dsn, PoolConfig{MaxOpenConns: 4})
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	saved, err := repo.Save(ctx, domain.Order{
		UserID:        "u1",
		Items:         []domain.Item{{ID: "1", Title: "Widget", Quantity: 2, Price: 9.99}},
		CustomerEmail: "a@b.com",
		CustomerName:  "A",
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, saved.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 19.98, got.TotalAmount)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.FindByID(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}
