package shopsession

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/google/uuid"
)

// MemoryStore keeps session state in process. Used for local development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	carts      map[string]cart.Cart
	lastOrders map[string]uuid.UUID
}

// NewMemoryStore builds an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:      map[string]cart.Cart{},
		lastOrders: map[string]uuid.UUID{},
	}
}

func (s *MemoryStore) GetCart(_ context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]cart.Item(nil), c.Items...)
	return &c, nil
}

func (s *MemoryStore) SetCart(_ context.Context, sessionID string, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		delete(s.carts, sessionID)
		return nil
	}
	stored := *c
	stored.Items = append([]cart.Item(nil), c.Items...)
	s.carts[sessionID] = stored
	return nil
}

func (s *MemoryStore) ClearCart(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func (s *MemoryStore) GetLastOrderID(_ context.Context, sessionID string) (*uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.lastOrders[sessionID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *MemoryStore) SetLastOrderID(_ context.Context, sessionID string, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOrders[sessionID] = orderID
	return nil
}
