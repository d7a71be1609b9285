package shopsession

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return errors.New("unsupported value")
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) SessionStateKey(sessionID, field string) string {
	return strings.Join([]string{"sf", "session", sessionID, field}, ":")
}

func sampleCart() *cart.Cart {
	return &cart.Cart{
		Version: 4,
		Items: []cart.Item{{
			ProductID:   uuid.New(),
			ProductName: "Chang",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("19.00"),
		}},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	c, err := store.GetCart(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, c)

	want := sampleCart()
	require.NoError(t, store.SetCart(ctx, "sid", want))
	got, err := store.GetCart(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Version, got.Version)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Subtotal().Equal(decimal.NewFromInt(38)))

	other, err := store.GetCart(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, other, "sessions must not share carts")

	require.NoError(t, store.ClearCart(ctx, "sid"))
	c, err = store.GetCart(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, c)

	last, err := store.GetLastOrderID(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, last)

	orderID := uuid.New()
	require.NoError(t, store.SetLastOrderID(ctx, "sid", orderID))
	last, err = store.GetLastOrderID(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, orderID, *last)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	kv := newFakeKV()
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)
	exerciseStore(t, store)

	assert.Equal(t, time.Hour, kv.ttls["sf:session:sid:last_order_id"])
}

func TestRedisStorePropagatesErrors(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)

	_, err = store.GetCart(context.Background(), "sid")
	assert.Error(t, err)
}

func TestNewRedisStoreValidates(t *testing.T) {
	_, err := NewRedisStore(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewRedisStore(newFakeKV(), 0)
	assert.Error(t, err)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SetCart(ctx, "sid", sampleCart()))

	c, err := store.GetCart(ctx, "sid")
	require.NoError(t, err)
	c.Items[0].Quantity = 99

	again, err := store.GetCart(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID("not-a-session"))
	assert.False(t, ValidID(""))
}
