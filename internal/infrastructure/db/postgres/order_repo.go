package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/orderflow/internal/domain"
)

type OrderRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db, now: time.Now} }

// EnsureSchema creates the orders table when it does not exist yet.
func (r *OrderRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createOrdersSQL); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (r *OrderRepo) Save(ctx context.Context, o domain.Order) (*domain.StoredOrder, error) {
	s := domain.NewStoredOrder(uuid.NewString(), o, r.now().Truncate(time.Microsecond))

	items, err := json.Marshal(s.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertOrderSQL,
		s.OrderID, s.UserID, string(items), s.CustomerEmail, s.CustomerName, s.CustomerPhone,
		s.TotalAmount, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &s, nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.StoredOrder, error) {
	var (
		s      domain.StoredOrder
		items  []byte
		status string
	)
	err := r.db.QueryRowContext(ctx, getOrderSQL, id).Scan(
		&s.OrderID, &s.UserID, &items, &s.CustomerEmail, &s.CustomerName, &s.CustomerPhone,
		&s.TotalAmount, &status, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	s.Status = domain.OrderStatus(status)
	if !s.Status.Valid() {
		return nil, fmt.Errorf("order %s has invalid status %q", id, status)
	}
	return &s, nil
}

func (r *OrderRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
