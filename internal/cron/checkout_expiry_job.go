package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const checkoutExpiryBatch = 100

type checkoutExpirer interface {
	ExpireStaleAttempts(ctx context.Context, now time.Time, limit int) (int, error)
}

// CheckoutExpiryJobParams configures the stale checkout session sweep.
type CheckoutExpiryJobParams struct {
	Logger   *logger.Logger
	Checkout checkoutExpirer
	Batch    int
}

// NewCheckoutExpiryJob settles checkout attempts whose hosted payment session
// outlived its deadline.
func NewCheckoutExpiryJob(params CheckoutExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = checkoutExpiryBatch
	}
	return &checkoutExpiryJob{
		logg:     params.Logger,
		checkout: params.Checkout,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type checkoutExpiryJob struct {
	logg     *logger.Logger
	checkout checkoutExpirer
	batch    int
	now      func() time.Time
}

func (j *checkoutExpiryJob) Name() string { return "checkout-session-expiry" }

// Run drains stale attempts batch by batch. A short batch means the backlog is empty.
func (j *checkoutExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	total := 0
	for {
		settled, err := j.checkout.ExpireStaleAttempts(ctx, now, j.batch)
		total += settled
		if err != nil {
			return fmt.Errorf("checkout expiry: %w", err)
		}
		if settled < j.batch {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  now,
		"settled": total,
	})
	j.logg.Info(logCtx, "checkout expiry sweep complete")
	return nil
}
