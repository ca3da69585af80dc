package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/baechuer/orderflow/internal/metrics"
)

var ErrNoChannels = errors.New("notify: no channels configured")

// Orchestrator fans a notification out to every channel and records the
// combined outcome. A failing channel never stops the others.
type Orchestrator struct {
	channels []ChannelSender
	history  HistoryStore
	now      func() time.Time
	lg       zerolog.Logger
}

type OrchestratorOption func(*Orchestrator)

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(channels []ChannelSender, history HistoryStore, lg zerolog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		channels: channels,
		history:  history,
		now:      time.Now,
		lg:       lg.With().Str("component", "notification_orchestrator").Logger(),
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

func (o *Orchestrator) SendOrderConfirmation(ctx context.Context, n OrderNotice) (NotificationRecord, error) {
	return o.dispatch(ctx, KindConfirmation, n)
}

func (o *Orchestrator) SendStatusUpdate(ctx context.Context, n OrderNotice) (NotificationRecord, error) {
	return o.dispatch(ctx, KindStatusUpdate, n)
}

func (o *Orchestrator) SendCancellation(ctx context.Context, n OrderNotice) (NotificationRecord, error) {
	return o.dispatch(ctx, KindCancellation, n)
}

// dispatch only fails on a malformed notice, a missing channel set or a
// history write error.
func (o *Orchestrator) dispatch(ctx context.Context, kind NotificationType, n OrderNotice) (NotificationRecord, error) {
	if err := n.validate(); err != nil {
		return NotificationRecord{}, err
	}
	if len(o.channels) == 0 {
		return NotificationRecord{}, ErrNoChannels
	}

	outcomes := make([]ChannelOutcome, len(o.channels))
	var g errgroup.Group
	for i, ch := range o.channels {
		g.Go(func() error {
			outcomes[i] = o.sendOne(ctx, ch, kind, n)
			return nil
		})
	}
	g.Wait()

	rec := NotificationRecord{
		OrderID:   n.OrderID,
		Type:      kind,
		Outcomes:  outcomes,
		Timestamp: o.now().UTC(),
	}
	if err := o.history.Append(ctx, rec); err != nil {
		return rec, fmt.Errorf("append notification history: %w", err)
	}

	ev := o.lg.Info()
	if rec.Delivered() < len(outcomes) {
		ev = o.lg.Warn()
	}
	ev.Str("order_id", n.OrderID).
		Str("kind", string(kind)).
		Int("delivered", rec.Delivered()).
		Int("channels", len(outcomes)).
		Msg("notification dispatched")
	return rec, nil
}

func (o *Orchestrator) sendOne(ctx context.Context, ch ChannelSender, kind NotificationType, n OrderNotice) (out ChannelOutcome) {
	name := ch.Name()
	start := time.Now()
	out = ChannelOutcome{Channel: name}

	defer func() {
		if r := recover(); r != nil {
			out = ChannelOutcome{Channel: name, Status: OutcomeFailed, Detail: fmt.Sprintf("panic: %v", r)}
			o.lg.Error().Str("channel", name).Interface("panic", r).Msg("channel sender panicked")
		}
		metrics.RecordNotification(name, string(kind), string(out.Status), time.Since(start))
	}()

	res, err := ch.Send(ctx, kind, n)
	if err != nil {
		o.lg.Warn().Err(err).Str("channel", name).Str("order_id", n.OrderID).Msg("channel send failed")
		out.Status = OutcomeFailed
		out.Detail = err.Error()
		return out
	}
	out.Status = OutcomeSuccess
	out.MessageID = res.MessageID
	out.Recipient = res.Recipient
	out.Detail = res.Subject
	return out
}

// CheckHealth asks every channel for its own health.
func (o *Orchestrator) CheckHealth(ctx context.Context) HealthReport {
	rep := HealthReport{Channels: make(map[string]bool, len(o.channels)), CheckedAt: o.now().UTC()}
	up := 0
	for _, ch := range o.channels {
		ok := ch.Healthy(ctx)
		rep.Channels[ch.Name()] = ok
		if ok {
			up++
		}
	}
	switch {
	case len(o.channels) > 0 && up == len(o.channels):
		rep.Status = Healthy
	case up == 0:
		rep.Status = Unhealthy
	default:
		rep.Status = Degraded
	}
	return rep
}

func (o *Orchestrator) History(ctx context.Context, orderID string) ([]NotificationRecord, error) {
	return o.history.Get(ctx, orderID)
}
