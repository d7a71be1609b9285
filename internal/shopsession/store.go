// Package shopsession holds the typed per-visitor state of the storefront:
// the cart and the most recent order placed from the session.
package shopsession

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/google/uuid"
)

// Store reads and writes shopping-session state keyed by the opaque web-session id.
// Missing values are reported as nil without an error.
type Store interface {
	GetCart(ctx context.Context, sessionID string) (*cart.Cart, error)
	SetCart(ctx context.Context, sessionID string, c *cart.Cart) error
	ClearCart(ctx context.Context, sessionID string) error
	GetLastOrderID(ctx context.Context, sessionID string) (*uuid.UUID, error)
	SetLastOrderID(ctx context.Context, sessionID string, orderID uuid.UUID) error
}

// NewID returns a fresh web-session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether raw looks like an id issued by NewID.
func ValidID(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil && len(raw) == 36
}
