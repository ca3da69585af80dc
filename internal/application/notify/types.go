package notify

import (
	"strings"
	"time"

	"github.com/baechuer/orderflow/internal/domain"
)

type NotificationType string

const (
	KindConfirmation NotificationType = "CONFIRMATION"
	KindStatusUpdate NotificationType = "STATUS_UPDATE"
	KindCancellation NotificationType = "CANCELLATION"
)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// ChannelOutcome is the tagged result of one channel send.
type ChannelOutcome struct {
	Channel   string        `json:"channel"`
	Status    OutcomeStatus `json:"status"`
	Detail    string        `json:"detail,omitempty"`
	MessageID string        `json:"messageId,omitempty"`
	Recipient string        `json:"recipient,omitempty"`
}

type NotificationRecord struct {
	OrderID   string           `json:"orderId"`
	Type      NotificationType `json:"type"`
	Outcomes  []ChannelOutcome `json:"perChannelOutcomes"`
	Timestamp time.Time        `json:"timestamp"`
}

// Delivered reports how many channels succeeded.
func (r NotificationRecord) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSuccess {
			n++
		}
	}
	return n
}

type NoticeItem struct {
	Title    string
	Quantity int
	Price    float64
}

// OrderNotice is the order data a channel needs to render a message.
type OrderNotice struct {
	OrderID        string
	UserID         string
	CustomerEmail  string
	CustomerName   string
	CustomerPhone  string
	Items          []NoticeItem
	TotalAmount    float64
	Status         string
	PreviousStatus string
	Reason         string
}

func (n OrderNotice) validate() error {
	meta := map[string]string{}
	if strings.TrimSpace(n.OrderID) == "" {
		meta["orderId"] = "is required"
	}
	if strings.TrimSpace(n.CustomerEmail) == "" {
		meta["customerEmail"] = "is required"
	}
	if len(meta) > 0 {
		return domain.ErrValidationMeta("malformed order notice", meta)
	}
	return nil
}

// SendResult is the audit trail of a delivered message.
type SendResult struct {
	MessageID string    `json:"messageId"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	BodyRef   string    `json:"bodyRef"`
	SentAt    time.Time `json:"sentAt"`
}

type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
)

type HealthReport struct {
	Status    HealthStatus    `json:"status"`
	Channels  map[string]bool `json:"channels"`
	CheckedAt time.Time       `json:"checkedAt"`
}
