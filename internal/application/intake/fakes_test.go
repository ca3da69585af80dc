package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baechuer/orderflow/internal/contracts/event"
	"github.com/baechuer/orderflow/internal/domain"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	mu      sync.Mutex
	orders  map[string]domain.StoredOrder
	seq     int
	saveErr error
	findErr error
	saves   int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{orders: map[string]domain.StoredOrder{}} }

func (r *fakeRepo) Save(_ context.Context, o domain.Order) (*domain.StoredOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.seq++
	s := domain.NewStoredOrder(fmt.Sprintf("ord-%d", r.seq), o, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r.orders[s.OrderID] = s
	return &s, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*domain.StoredOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound("order not found")
	}
	return &s, nil
}

type published struct {
	typ     event.Type
	payload event.Payload
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, t event.Type, pl event.Payload) (event.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return event.Receipt{}, &domain.PublishError{EventType: string(t), Key: event.OrderID(pl), Err: p.err}
	}
	p.sent = append(p.sent, published{typ: t, payload: pl})
	return event.Receipt{EventID: "evt", Type: t, Key: event.OrderID(pl), Offset: int64(len(p.sent))}, nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}
