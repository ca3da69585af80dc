package channel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/orderflow/internal/application/notify"
	"github.com/baechuer/orderflow/internal/domain"
)

var sentAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func notice() notify.OrderNotice {
	return notify.OrderNotice{
		OrderID:       "6f1c2d3e-aaaa-bbbb-cccc-000000000001",
		CustomerEmail: "a@b.com",
		CustomerName:  "Ada",
		Items:         []notify.NoticeItem{{Title: "Widget", Quantity: 2, Price: 9.99}},
		TotalAmount:   19.98,
		Status:        "PENDING",
	}
}

func opts(rate float64, roll float64) Options {
	return Options{
		FailureRate: rate,
		Rand:        func() float64 { return roll },
		Now:         func() time.Time { return sentAt },
	}
}

type stubLimiter struct {
	allow bool
	err   error
	seen  []string
}

func (l *stubLimiter) Allow(_ context.Context, ch, to string) (bool, error) {
	l.seen = append(l.seen, ch+":"+to)
	return l.allow, l.err
}

func TestEmailSender_Send(t *testing.T) {
	s := NewEmailSender("orders@shop.test", opts(0, 0), zerolog.Nop())

	res, err := s.Send(context.Background(), notify.KindConfirmation, notice())
	require.NoError(t, err)

	assert.Equal(t, "email", res.Channel)
	assert.Equal(t, "a@b.com", res.Recipient)
	assert.Equal(t, "Order confirmed: #6f1c2d3e", res.Subject)
	assert.True(t, strings.HasPrefix(res.BodyRef, "sha256:"))
	assert.NotEmpty(t, res.MessageID)
	assert.Equal(t, sentAt, res.SentAt)
}

func TestRenderEmail_Content(t *testing.T) {
	_, body, err := renderEmail(notify.KindConfirmation, notice())
	require.NoError(t, err)
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "Widget")
	assert.Contains(t, body, "$19.98")

	n := notice()
	n.CustomerName = "<script>alert(1)</script>"
	_, body, err = renderEmail(notify.KindCancellation, n)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")

	_, _, err = renderEmail("UNKNOWN", n)
	assert.Error(t, err)
}

func TestEmailSender_SimulatedFailure(t *testing.T) {
	s := NewEmailSender("x", opts(0.05, 0.01), zerolog.Nop())

	_, err := s.Send(context.Background(), notify.KindConfirmation, notice())
	var cu *domain.ChannelUnavailableError
	require.True(t, errors.As(err, &cu))
	assert.Equal(t, "email", cu.Channel)
	assert.True(t, cu.Temporary())

	// a roll above the rate succeeds
	s = NewEmailSender("x", opts(0.05, 0.5), zerolog.Nop())
	_, err = s.Send(context.Background(), notify.KindConfirmation, notice())
	assert.NoError(t, err)
}

func TestSender_MarkedDown(t *testing.T) {
	s := NewSMSSender("+10000000000", opts(0, 0), zerolog.Nop())
	assert.True(t, s.Healthy(context.Background()))

	s.SetHealthy(false)
	assert.False(t, s.Healthy(context.Background()))
	_, err := s.Send(context.Background(), notify.KindConfirmation, notice())
	var cu *domain.ChannelUnavailableError
	assert.True(t, errors.As(err, &cu))
}

func TestSender_RateLimited(t *testing.T) {
	lim := &stubLimiter{allow: false}
	o := opts(0, 0)
	o.Limiter = lim
	s := NewEmailSender("x", o, zerolog.Nop())

	_, err := s.Send(context.Background(), notify.KindConfirmation, notice())
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, []string{"email:a@b.com"}, lim.seen)

	lim.allow, lim.err = true, errors.New("redis down")
	_, err = s.Send(context.Background(), notify.KindConfirmation, notice())
	assert.Error(t, err)
}

func TestSender_LatencyRespectsContext(t *testing.T) {
	o := opts(0, 0)
	o.Latency = time.Minute
	s := NewEmailSender("x", o, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Send(ctx, notify.KindConfirmation, notice())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSMSSender_Recipient(t *testing.T) {
	s := NewSMSSender("+10000000000", opts(0, 0), zerolog.Nop())

	res, err := s.Send(context.Background(), notify.KindConfirmation, notice())
	require.NoError(t, err)
	assert.Equal(t, "+10000000000", res.Recipient)
	assert.Equal(t, "CONFIRMATION", res.Subject)

	n := notice()
	n.CustomerPhone = "+14155550100"
	res, err = s.Send(context.Background(), notify.KindStatusUpdate, n)
	require.NoError(t, err)
	assert.Equal(t, "+14155550100", res.Recipient)

	_, err = NewSMSSender("", opts(0, 0), zerolog.Nop()).Send(context.Background(), notify.KindConfirmation, notice())
	assert.Error(t, err)
}

func TestRenderSMS(t *testing.T) {
	msg, err := renderSMS(notify.KindConfirmation, notice())
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada, order #6f1c2d3e confirmed. Total $19.98.", msg)

	n := notice()
	n.Reason = strings.Repeat("long reason ", 30)
	msg, err = renderSMS(notify.KindCancellation, n)
	require.NoError(t, err)
	assert.Len(t, []rune(msg), smsMaxLen)
}
