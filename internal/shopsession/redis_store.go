package shopsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldCart        = "cart"
	fieldLastOrderID = "last_order_id"
)

type keyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionStateKey(sessionID, field string) string
}

// RedisStore keeps session state in redis as JSON, refreshing the TTL on every write.
type RedisStore struct {
	kv  keyValue
	ttl time.Duration
}

// NewRedisStore builds a redis-backed Store.
func NewRedisStore(kv keyValue, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) GetCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	raw, ok, err := s.get(ctx, sessionID, fieldCart)
	if err != nil || !ok {
		return nil, err
	}
	var c cart.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) SetCart(ctx context.Context, sessionID string, c *cart.Cart) error {
	if c == nil {
		return s.ClearCart(ctx, sessionID)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(ctx, s.kv.SessionStateKey(sessionID, fieldCart), payload, s.ttl)
}

func (s *RedisStore) ClearCart(ctx context.Context, sessionID string) error {
	return s.kv.Del(ctx, s.kv.SessionStateKey(sessionID, fieldCart))
}

func (s *RedisStore) GetLastOrderID(ctx context.Context, sessionID string) (*uuid.UUID, error) {
	raw, ok, err := s.get(ctx, sessionID, fieldLastOrderID)
	if err != nil || !ok {
		return nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode last order id: %w", err)
	}
	return &id, nil
}

func (s *RedisStore) SetLastOrderID(ctx context.Context, sessionID string, orderID uuid.UUID) error {
	return s.kv.Set(ctx, s.kv.SessionStateKey(sessionID, fieldLastOrderID), orderID.String(), s.ttl)
}

func (s *RedisStore) get(ctx context.Context, sessionID, field string) (string, bool, error) {
	raw, err := s.kv.Get(ctx, s.kv.SessionStateKey(sessionID, field))
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}
