package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultGuardTTL outlasts Stripe's three-day redelivery window.
const DefaultGuardTTL = 7 * 24 * time.Hour

type eventStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	WebhookEventKey(provider, eventID string) string
}

// IdempotencyGuard remembers delivered event ids per provider. The marker
// value is the time the event was first seen.
type IdempotencyGuard struct {
	store    eventStore
	ttl      time.Duration
	provider string
	now      func() time.Time
}

// NewIdempotencyGuard builds a guard for provider. A zero ttl uses
// DefaultGuardTTL.
func NewIdempotencyGuard(store eventStore, ttl time.Duration, provider string) (*IdempotencyGuard, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	case provider == "":
		return nil, errors.New("provider is required")
	}
	if ttl == 0 {
		ttl = DefaultGuardTTL
	}
	return &IdempotencyGuard{store: store, ttl: ttl, provider: provider, now: time.Now}, nil
}

// CheckAndMark marks eventID and reports whether an earlier delivery had.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	marked, err := g.store.SetNX(ctx, key, g.now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("mark %s: %w", key, err)
	}
	return !marked, nil
}

// Delete forgets eventID so the provider's redelivery is processed. It
// survives cancellation of ctx, which is typically a request that just failed.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := g.store.Del(ctx, key); err != nil {
		return fmt.Errorf("unmark %s: %w", key, err)
	}
	return nil
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.WebhookEventKey(g.provider, eventID), nil
}
