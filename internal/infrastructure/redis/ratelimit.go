package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RecipientLimiter caps how many messages one recipient gets per channel
// within a fixed window. It fails open when Redis is unavailable.
type RecipientLimiter struct {
	c      *Client
	max    int
	window time.Duration
	lg     zerolog.Logger
}

func NewRecipientLimiter(c *Client, max int, window time.Duration, lg zerolog.Logger) *RecipientLimiter {
	return &RecipientLimiter{
		c:      c,
		max:    max,
		window: window,
		lg:     lg.With().Str("component", "recipient_limiter").Logger(),
	}
}

func (l *RecipientLimiter) Allow(ctx context.Context, channel, recipient string) (bool, error) {
	if l == nil || l.c == nil || l.max <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", channel, strings.ToLower(recipient))
	rdb := l.c.GetRawClient()

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		l.lg.Warn().Err(err).Str("key", key).Msg("rate limit check failed; allowing")
		return true, nil
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.lg.Warn().Err(err).Str("key", key).Msg("rate limit expire failed")
		}
	}
	return count <= int64(l.max), nil
}
