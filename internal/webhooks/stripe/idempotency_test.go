package stripewebhook

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryEventStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryEventStore() *memoryEventStore {
	return &memoryEventStore{data: map[string]string{}}
}

func (m *memoryEventStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryEventStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryEventStore) WebhookEventKey(provider, eventID string) string {
	return "webhook:" + provider + ":" + eventID
}

func TestIdempotencyGuardMarksOnce(t *testing.T) {
	store := newMemoryEventStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	require.True(t, seen)
	require.Contains(t, store.data, "webhook:stripe:evt_1")
}

func TestIdempotencyGuardDeleteAllowsRetry(t *testing.T) {
	guard, err := NewIdempotencyGuard(newMemoryEventStore(), time.Hour, "stripe")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "evt_2")
	require.NoError(t, err)
	require.NoError(t, guard.Delete(context.Background(), "evt_2"))

	seen, err := guard.CheckAndMark(context.Background(), "evt_2")
	require.NoError(t, err)
	require.False(t, seen)
}

func TestNewIdempotencyGuardValidates(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "stripe")
	require.Error(t, err)
	_, err = NewIdempotencyGuard(newMemoryEventStore(), -time.Second, "stripe")
	require.Error(t, err)
	_, err = NewIdempotencyGuard(newMemoryEventStore(), time.Hour, "")
	require.Error(t, err)

	_, err = (&IdempotencyGuard{store: newMemoryEventStore(), provider: "stripe"}).CheckAndMark(context.Background(), "")
	require.Error(t, err)
}

func TestIdempotencyGuardDefaultsAndMarker(t *testing.T) {
	store := newMemoryEventStore()
	guard, err := NewIdempotencyGuard(store, 0, "stripe")
	require.NoError(t, err)
	require.Equal(t, DefaultGuardTTL, guard.ttl)

	guard.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	_, err = guard.CheckAndMark(context.Background(), "evt_3")
	require.NoError(t, err)
	require.Equal(t, "2026-03-01T12:00:00Z", store.data["webhook:stripe:evt_3"])
}

func TestIdempotencyGuardDeleteSurvivesCancelledRequest(t *testing.T) {
	store := newMemoryEventStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = guard.CheckAndMark(ctx, "evt_4")
	require.NoError(t, err)
	cancel()

	require.NoError(t, guard.Delete(ctx, "evt_4"))
	require.NotContains(t, store.data, "webhook:stripe:evt_4")
}
