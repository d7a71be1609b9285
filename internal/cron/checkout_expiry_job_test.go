package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stubExpirer struct {
	results []int
	err     error
	calls   []time.Time
	limits  []int
}

func (s *stubExpirer) ExpireStaleAttempts(_ context.Context, now time.Time, limit int) (int, error) {
	s.calls = append(s.calls, now)
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.calls) > len(s.results) {
		return 0, nil
	}
	return s.results[len(s.calls)-1], nil
}

func newExpiryJob(t *testing.T, expirer *stubExpirer, batch int) *checkoutExpiryJob {
	t.Helper()
	job, err := NewCheckoutExpiryJob(CheckoutExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Checkout: expirer,
		Batch:    batch,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job.(*checkoutExpiryJob)
}

func TestCheckoutExpiryJobDrainsFullBatches(t *testing.T) {
	expirer := &stubExpirer{results: []int{2, 2, 1}}
	job := newExpiryJob(t, expirer, 2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(expirer.calls) != 3 {
		t.Fatalf("expected 3 sweeps, got %d", len(expirer.calls))
	}
	if !expirer.calls[0].Equal(now) || expirer.calls[0].Location() != time.UTC {
		t.Fatalf("expected utc cutoff, got %v", expirer.calls[0])
	}
	if expirer.limits[0] != 2 {
		t.Fatalf("expected batch limit 2, got %d", expirer.limits[0])
	}
}

func TestCheckoutExpiryJobReportsErrors(t *testing.T) {
	expirer := &stubExpirer{err: errors.New("stripe unavailable")}
	job := newExpiryJob(t, expirer, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if expirer.limits[0] != checkoutExpiryBatch {
		t.Fatalf("expected default batch, got %d", expirer.limits[0])
	}
}

func TestNewCheckoutExpiryJobRequiresDependencies(t *testing.T) {
	if _, err := NewCheckoutExpiryJob(CheckoutExpiryJobParams{}); err == nil {
		t.Fatal("expected error without logger")
	}
	if job := newExpiryJob(t, &stubExpirer{}, 1); job.Name() != "checkout-session-expiry" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}
