package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireStaleAttemptsExpiresOpenSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	f.seedCart(t, sid, "10", 1, 1)

	handle, err := f.svc.SubmitCheckout(ctx, sid, alice, validDetails())
	require.NoError(t, err)

	settled, err := f.svc.ExpireStaleAttempts(ctx, fixtureNow.Add(10*time.Minute), 10)
	require.NoError(t, err)
	assert.Zero(t, settled)

	settled, err = f.svc.ExpireStaleAttempts(ctx, fixtureNow.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, []string{handle.ID}, f.gateway.expired)

	attempt, err := f.attempts.FindByGatewaySessionID(ctx, handle.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutAttemptExpired, attempt.Status)
	requireNoOrder(t, f.orders, handle.ID)

	c, err := f.sessions.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

func TestExpireStaleAttemptsConfirmsPaidSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	f.seedCart(t, sid, "10", 1, 1)

	handle, err := f.svc.SubmitCheckout(ctx, sid, alice, validDetails())
	require.NoError(t, err)
	f.gateway.markPaid(handle.ID)

	settled, err := f.svc.ExpireStaleAttempts(ctx, fixtureNow.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Empty(t, f.gateway.expired)

	order, err := f.orders.FindByPaymentSessionID(ctx, handle.ID)
	require.NoError(t, err)
	last, err := f.sessions.GetLastOrderID(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, order.ID, *last)
}

func TestExpireStaleAttemptsAggregatesGatewayErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	f.seedCart(t, sid, "10", 1, 1)

	_, err := f.svc.SubmitCheckout(ctx, sid, alice, validDetails())
	require.NoError(t, err)
	f.gateway.getErr = errors.New("stripe unavailable")

	settled, err := f.svc.ExpireStaleAttempts(ctx, fixtureNow.Add(time.Hour), 0)
	require.Error(t, err)
	assert.Zero(t, settled)
	assert.Contains(t, err.Error(), "stripe unavailable")
}

func TestExpireStaleAttemptsRetiresUnattachedReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sid := uuid.NewString()
	f.seedCart(t, sid, "10", 1, 1)

	flaky := &flakyAttempts{AttemptRepository: f.attempts, attachErr: errors.New("db down")}
	_, err := f.build(t, flaky).SubmitCheckout(ctx, sid, alice, validDetails())
	require.Error(t, err)

	settled, err := f.svc.ExpireStaleAttempts(ctx, fixtureNow.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Zero(t, f.gateway.getCalls)
	assert.Empty(t, f.gateway.expired)

	key := f.gateway.requests[0].IdempotencyKey
	attempt, err := f.attempts.FindByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutAttemptExpired, attempt.Status)
}
