package remote

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig bounds retries of one outbound call.
type RetryConfig struct {
	// Attempts counts the first call; 2 means one retry.
	Attempts     uint
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     2,
		InitialDelay: 200 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     2 * time.Second,
		Jitter:       true,
	}
}

func (c RetryConfig) WithDefaults() RetryConfig {
	d := DefaultRetryConfig()
	if c.Attempts == 0 {
		c.Attempts = d.Attempts
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.Multiplier < 1.0 {
		c.Multiplier = 1.0
	}
	if c.MaxDelay > 0 && c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	return c
}

func (c RetryConfig) backOff() backoff.BackOff {
	if c.InitialDelay == 0 {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialDelay
	b.Multiplier = c.Multiplier
	if c.MaxDelay > 0 {
		b.MaxInterval = c.MaxDelay
	}
	if !c.Jitter {
		b.RandomizationFactor = 0
	}
	return b
}

// CallWithRetry calls c until it gets a 2xx answer or cfg.Attempts runs out.
// Transport failures and non-2xx answers are both retried. A cancelled ctx
// stops retrying at once.
func CallWithRetry(ctx context.Context, c Client, req Request, cfg RetryConfig) (Response, error) {
	cfg = cfg.WithDefaults()
	op := func() (Response, error) {
		resp, err := c.Call(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return resp, backoff.Permanent(err)
			}
			return resp, err
		}
		if err := Check(req, resp, nil); err != nil {
			return resp, err
		}
		return resp, nil
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(cfg.Attempts),
	)
}
