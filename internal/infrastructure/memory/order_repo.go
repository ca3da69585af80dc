package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/orderflow/internal/domain"
)

type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.StoredOrder
	now    func() time.Time
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: map[string]domain.StoredOrder{}, now: time.Now}
}

func (r *OrderRepo) Save(_ context.Context, o domain.Order) (*domain.StoredOrder, error) {
	s := domain.NewStoredOrder(uuid.NewString(), o, r.now())

	r.mu.Lock()
	r.orders[s.OrderID] = s
	r.mu.Unlock()

	out := s
	return &out, nil
}

func (r *OrderRepo) FindByID(_ context.Context, id string) (*domain.StoredOrder, error) {
	r.mu.RLock()
	s, ok := r.orders[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound("order not found")
	}
	s.Items = append([]domain.Item(nil), s.Items...)
	return &s, nil
}

func (r *OrderRepo) Ping(context.Context) error { return nil }
