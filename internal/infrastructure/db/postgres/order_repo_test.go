package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/orderflow/internal/domain"
)

func TestOrderRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	repo := NewOrderRepo(db)
	repo.now = func() time.Time { return now }

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			sqlmock.AnyArg(), "u1", `[{"id":"1","title":"Widget","quantity":2,"price":9.99}]`,
			"a@b.com", "A", "", 19.98, "PENDING", now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s, err := repo.Save(context.Background(), domain.Order{
		UserID:        "u1",
		Items:         []domain.Item{{ID: "1", Title: "Widget", Quantity: 2, Price: 9.99}},
		CustomerEmail: "a@b.com",
		CustomerName:  "A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.OrderID)
	assert.Equal(t, 19.98, s.TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Save_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("conn reset"))

	_, err = NewOrderRepo(db).Save(context.Background(), domain.Order{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn reset")
}

func TestOrderRepo_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)
	created := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	cols := []string{
		"id", "user_id", "items", "customer_email", "customer_name", "customer_phone",
		"total_amount", "status", "created_at",
	}

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders").
			WithArgs("ord-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				"ord-1", "u1", []byte(`[{"id":"1","title":"Widget","quantity":2,"price":9.99}]`),
				"a@b.com", "A", "", 19.98, "PENDING", created,
			))

		got, err := repo.FindByID(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
		require.Len(t, got.Items, 1)
		assert.Equal(t, domain.ItemID("1"), got.Items[0].ID)
		assert.Equal(t, created, got.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.FindByID(context.Background(), "nope")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("bad status", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders").
			WithArgs("ord-2").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				"ord-2", "u1", []byte(`[]`), "a@b.com", "A", "", 1.0, "LOST", created,
			))

		_, err := repo.FindByID(context.Background(), "ord-2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid status")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewOrderRepo(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
