package handlers

import (
	"context"

	"github.com/baechuer/orderflow/internal/application/notify"
	"github.com/baechuer/orderflow/internal/domain"
	"github.com/baechuer/orderflow/internal/health"
)

type fakeOrders struct {
	created *domain.StoredOrder
	err     error
	got     domain.Order
}

func (f *fakeOrders) CreateOrder(_ context.Context, in domain.Order) (*domain.StoredOrder, error) {
	f.got = in
	return f.created, f.err
}

func (f *fakeOrders) GetOrder(_ context.Context, id string) (*domain.StoredOrder, error) {
	if f.created != nil && f.created.OrderID == id {
		return f.created, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, domain.ErrNotFound("order not found")
}

type fakeHistory struct {
	recs map[string][]notify.NotificationRecord
	err  error
}

func (f *fakeHistory) History(_ context.Context, id string) ([]notify.NotificationRecord, error) {
	return f.recs[id], f.err
}

type fakeChecker struct{ rep health.Report }

func (f fakeChecker) Check(context.Context) health.Report { return f.rep }
