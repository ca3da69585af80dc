package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/contracts/event"
	"github.com/baechuer/orderflow/internal/domain"
	"github.com/baechuer/orderflow/internal/metrics"
)

// Handler turns consumed envelopes into notifications.
//
// A nil return means the record may be committed: it was processed, was a
// duplicate, or can never be processed. A non-nil return is always a
// *domain.HandlerError and asks for redelivery.
type Handler struct {
	dedup         DedupStore
	notifier      Notifier
	statusUpdates bool
	lg            zerolog.Logger
}

type HandlerOption func(*Handler)

// WithStatusNotifications enables notifications for status updates and
// cancellations. Only ORDER_CREATED is acted on by default.
func WithStatusNotifications(on bool) HandlerOption {
	return func(h *Handler) { h.statusUpdates = on }
}

func NewHandler(dedup DedupStore, n Notifier, lg zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		dedup:    dedup,
		notifier: n,
		lg:       lg.With().Str("component", "event_handler").Logger(),
	}
	for _, fn := range opts {
		fn(h)
	}
	return h
}

func (h *Handler) Handle(ctx context.Context, env event.Envelope) error {
	start := time.Now()
	lg := h.lg.With().Str("event_id", env.ID).Str("type", string(env.Type)).Logger()

	if err := event.ValidateEnvelope(env); err != nil {
		lg.Warn().Err(err).Msg("dropping malformed envelope")
		metrics.RecordDropped("invalid_envelope")
		return nil
	}

	p, err := event.Decode(env)
	if err != nil {
		if errors.Is(err, event.ErrUnsupportedType) {
			lg.Info().Msg("unhandled event type acknowledged")
			metrics.RecordDropped("unsupported_type")
			return nil
		}
		lg.Warn().Err(err).Msg("dropping event with invalid payload")
		metrics.RecordDropped("invalid_payload")
		return nil
	}

	fp := event.Fingerprint(env, p)
	seen, err := h.dedup.Has(ctx, fp)
	if err != nil {
		return h.fail(env, fmt.Errorf("dedup lookup: %w", err))
	}
	if seen {
		metrics.RecordDedupHit()
		lg.Info().Str("fingerprint", fp).Msg("duplicate event skipped")
		return nil
	}
	metrics.RecordDedupMiss()

	if err := h.dispatch(ctx, lg, p); err != nil {
		lg.Error().Err(err).Str("order_id", event.OrderID(p)).Msg("event handling failed")
		return h.fail(env, err)
	}

	if err := h.dedup.Add(ctx, fp); err != nil {
		lg.Warn().Err(err).Str("fingerprint", fp).Msg("dedup record failed")
	}
	metrics.RecordHandled(string(env.Type), time.Since(start))
	lg.Debug().Dur("took", time.Since(start)).Msg("event handled")
	return nil
}

func (h *Handler) dispatch(ctx context.Context, lg zerolog.Logger, p event.Payload) error {
	var err error
	switch v := p.(type) {
	case event.OrderCreated:
		_, err = h.notifier.SendOrderConfirmation(ctx, noticeFromCreated(v))
	case event.OrderStatusUpdated:
		if !h.statusUpdates {
			lg.Debug().Msg("status notifications disabled")
			return nil
		}
		_, err = h.notifier.SendStatusUpdate(ctx, noticeFromStatus(v))
	case event.OrderCancelled:
		if !h.statusUpdates {
			lg.Debug().Msg("status notifications disabled")
			return nil
		}
		_, err = h.notifier.SendCancellation(ctx, noticeFromCancelled(v))
	default:
		lg.Warn().Str("variant", fmt.Sprintf("%T", p)).Msg("no handler for payload variant")
	}
	return err
}

func (h *Handler) fail(env event.Envelope, err error) error {
	return &domain.HandlerError{EventID: env.ID, EventType: string(env.Type), Err: err}
}

func noticeFromCreated(p event.OrderCreated) OrderNotice {
	items := make([]NoticeItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, NoticeItem{Title: it.Title, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderNotice{
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		CustomerEmail: p.CustomerEmail,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		Items:         items,
		TotalAmount:   p.TotalAmount,
		Status:        p.Status,
	}
}

func noticeFromStatus(p event.OrderStatusUpdated) OrderNotice {
	return OrderNotice{
		OrderID:        p.OrderID,
		UserID:         p.UserID,
		CustomerEmail:  p.CustomerEmail,
		CustomerName:   p.CustomerName,
		CustomerPhone:  p.CustomerPhone,
		Status:         p.Status,
		PreviousStatus: p.PreviousStatus,
	}
}

func noticeFromCancelled(p event.OrderCancelled) OrderNotice {
	return OrderNotice{
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		CustomerEmail: p.CustomerEmail,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		Status:        "CANCELLED",
		Reason:        p.Reason,
	}
}
