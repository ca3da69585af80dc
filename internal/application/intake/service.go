package intake

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/contracts/event"
	"github.com/baechuer/orderflow/internal/domain"
	"github.com/baechuer/orderflow/internal/metrics"
)

type Service struct {
	repo OrderRepository
	pub  EventPublisher
	lg   zerolog.Logger
}

func NewService(repo OrderRepository, pub EventPublisher, lg zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		pub:  pub,
		lg:   lg.With().Str("component", "order_intake").Logger(),
	}
}

// CreateOrder validates, persists and then announces a new order.
//
// Persist and publish are two separate steps. When the publish fails the
// stored order is returned together with a publish_failed error: the order
// exists but no ORDER_CREATED event was written for it.
func (s *Service) CreateOrder(ctx context.Context, in domain.Order) (*domain.StoredOrder, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		metrics.RecordOrderCreated("invalid")
		return nil, err
	}

	stored, err := s.repo.Save(ctx, in)
	if err != nil {
		metrics.RecordOrderCreated("repository_error")
		s.lg.Error().Err(err).Str("user_id", in.UserID).Msg("order save failed")
		return nil, domain.ErrRepository("save", err)
	}

	rc, err := s.pub.Publish(ctx, event.TypeOrderCreated, orderCreatedPayload(*stored))
	if err != nil {
		metrics.RecordOrderCreated("publish_failed")
		s.lg.Error().Err(err).
			Str("order_id", stored.OrderID).
			Msg("order stored but ORDER_CREATED not published")
		return stored, domain.ErrPublishAfterSave(stored.OrderID, err)
	}

	metrics.RecordOrderCreated("ok")
	s.lg.Info().
		Str("order_id", stored.OrderID).
		Str("event_id", rc.EventID).
		Int32("partition", rc.Partition).
		Int64("offset", rc.Offset).
		Float64("total", stored.TotalAmount).
		Msg("order created")
	return stored, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.StoredOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrValidationMeta("invalid order id", map[string]string{"orderId": "is required"})
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.ErrRepository("find", err)
	}
	return o, nil
}

func orderCreatedPayload(o domain.StoredOrder) event.OrderCreated {
	items := make([]event.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, event.LineItem{
			ID:       string(it.ID),
			Title:    it.Title,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return event.OrderCreated{
		OrderID:       o.OrderID,
		UserID:        o.UserID,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}
