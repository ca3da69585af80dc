package notify

import "context"

// ChannelSender delivers one notification over one channel.
type ChannelSender interface {
	Name() string
	Send(ctx context.Context, kind NotificationType, n OrderNotice) (SendResult, error)
	Healthy(ctx context.Context) bool
}

// DedupStore remembers event fingerprints that were handled successfully.
type DedupStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Add(ctx context.Context, key string) error
}

// HistoryStore keeps the append-only notification history per order.
type HistoryStore interface {
	Append(ctx context.Context, rec NotificationRecord) error
	Get(ctx context.Context, orderID string) ([]NotificationRecord, error)
}

// Notifier is what the event handler delegates to.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, n OrderNotice) (NotificationRecord, error)
	SendStatusUpdate(ctx context.Context, n OrderNotice) (NotificationRecord, error)
	SendCancellation(ctx context.Context, n OrderNotice) (NotificationRecord, error)
}
