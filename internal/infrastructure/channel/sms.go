package channel

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/application/notify"
)

type SMSSender struct {
	*base
	fallback string
}

// NewSMSSender texts the order's phone number, or fallback when the order
// carries none.
func NewSMSSender(fallback string, opts Options, lg zerolog.Logger) *SMSSender {
	return &SMSSender{base: newBase("sms", opts, lg), fallback: fallback}
}

func (s *SMSSender) Send(ctx context.Context, kind notify.NotificationType, n notify.OrderNotice) (notify.SendResult, error) {
	to := strings.TrimSpace(n.CustomerPhone)
	if to == "" {
		to = s.fallback
	}
	if to == "" {
		return notify.SendResult{}, errors.New("sms: no recipient phone number")
	}
	body, err := renderSMS(kind, n)
	if err != nil {
		return notify.SendResult{}, err
	}
	return s.deliver(ctx, kind, to, string(kind), body)
}
