// Package channel holds the simulated email and SMS senders.
package channel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/application/notify"
	"github.com/baechuer/orderflow/internal/domain"
)

var ErrRateLimited = errors.New("recipient rate limit exceeded")

// RateLimiter is consulted before every send. Nil disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, channel, recipient string) (bool, error)
}

type Options struct {
	// FailureRate is the probability in [0,1] that a send fails with a
	// transient ChannelUnavailableError.
	FailureRate float64
	Latency     time.Duration
	Limiter     RateLimiter
	Rand        func() float64
	Now         func() time.Time
}

type base struct {
	name    string
	opts    Options
	healthy atomic.Bool
	lg      zerolog.Logger
}

func newBase(name string, opts Options, lg zerolog.Logger) *base {
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &base{
		name: name,
		opts: opts,
		lg:   lg.With().Str("component", name+"_sender").Logger(),
	}
	b.healthy.Store(true)
	return b
}

func (b *base) Name() string { return b.name }

func (b *base) Healthy(context.Context) bool { return b.healthy.Load() }

// SetHealthy marks the channel up or down. A down channel fails every send.
func (b *base) SetHealthy(up bool) { b.healthy.Store(up) }

func (b *base) deliver(ctx context.Context, kind notify.NotificationType, recipient, subject, body string) (notify.SendResult, error) {
	if !b.healthy.Load() {
		return notify.SendResult{}, &domain.ChannelUnavailableError{Channel: b.name, Reason: "channel marked down"}
	}

	if b.opts.Limiter != nil {
		ok, err := b.opts.Limiter.Allow(ctx, b.name, recipient)
		if err != nil {
			return notify.SendResult{}, fmt.Errorf("rate limit check: %w", err)
		}
		if !ok {
			return notify.SendResult{}, fmt.Errorf("%s to %s: %w", b.name, recipient, ErrRateLimited)
		}
	}

	if b.opts.Latency > 0 {
		t := time.NewTimer(b.opts.Latency)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return notify.SendResult{}, ctx.Err()
		}
	}

	if b.opts.FailureRate > 0 && b.opts.Rand() < b.opts.FailureRate {
		return notify.SendResult{}, &domain.ChannelUnavailableError{Channel: b.name, Reason: "simulated transient failure"}
	}

	res := notify.SendResult{
		MessageID: uuid.NewString(),
		Channel:   b.name,
		Recipient: recipient,
		Subject:   subject,
		BodyRef:   bodyRef(body),
		SentAt:    b.opts.Now().UTC(),
	}
	b.lg.Info().
		Str("kind", string(kind)).
		Str("to", recipient).
		Str("message_id", res.MessageID).
		Str("subject", subject).
		Msg("FAKE send")
	return res, nil
}

func bodyRef(body string) string {
	sum := sha256.Sum256([]byte(body))
	return "sha256:" + hex.EncodeToString(sum[:])
}
