package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tallerapp/notifier/internal/domain"
)

// ChannelLimiters holds one token bucket limiter per delivery channel so a
// burst of order updates cannot flood an external transport. Burst equals
// the rate: no saved-up capacity above the per-second maximum.
type ChannelLimiters struct {
	limiters map[domain.ChannelName]*rate.Limiter
}

// New creates a ChannelLimiters with ratePerSec tokens per second per channel.
func New(ratePerSec int, channels ...domain.ChannelName) *ChannelLimiters {
	r := rate.Limit(ratePerSec)
	limiters := make(map[domain.ChannelName]*rate.Limiter, len(channels))
	for _, ch := range channels {
		limiters[ch] = rate.NewLimiter(r, ratePerSec)
	}
	return &ChannelLimiters{limiters: limiters}
}

// Wait blocks until the channel's limiter grants a token. Returns a non-nil
// error only if ctx is cancelled (or its deadline expires) while waiting.
// Channels without a registered limiter pass through unthrottled.
func (cl *ChannelLimiters) Wait(ctx context.Context, ch domain.ChannelName) error {
	l, ok := cl.limiters[ch]
	if !ok {
		return nil
	}
	return l.Wait(ctx)
}
