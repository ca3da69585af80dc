package intake

import (
	"context"

	"github.com/baechuer/orderflow/internal/contracts/event"
	"github.com/baechuer/orderflow/internal/domain"
)

// OrderRepository persists validated orders and assigns their ids.
type OrderRepository interface {
	Save(ctx context.Context, o domain.Order) (*domain.StoredOrder, error)
	FindByID(ctx context.Context, id string) (*domain.StoredOrder, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, t event.Type, p event.Payload) (event.Receipt, error)
}
