package channel

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/application/notify"
)

type EmailSender struct {
	*base
	from string
}

func NewEmailSender(from string, opts Options, lg zerolog.Logger) *EmailSender {
	return &EmailSender{base: newBase("email", opts, lg.With().Str("from", from).Logger()), from: from}
}

func (s *EmailSender) Send(ctx context.Context, kind notify.NotificationType, n notify.OrderNotice) (notify.SendResult, error) {
	subject, body, err := renderEmail(kind, n)
	if err != nil {
		return notify.SendResult{}, err
	}
	return s.deliver(ctx, kind, n.CustomerEmail, subject, body)
}
