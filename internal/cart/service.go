package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// MaxLineQuantity caps the quantity of a single product in one cart.
const MaxLineQuantity = 100

// Store persists carts per web session.
type Store interface {
	GetCart(ctx context.Context, sessionID string) (*Cart, error)
	SetCart(ctx context.Context, sessionID string, c *Cart) error
	ClearCart(ctx context.Context, sessionID string) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart mutations for a web session.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	store    Store
	products productLoader
}

// NewService builds a cart service backed by the session store and catalog.
func NewService(store Store, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, nil
	}
	c, err := s.store.GetCart(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

// AddItem prices the product from the catalog; client prices are never trusted.
func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity))
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "load product %s", productID)
	}
	if product.Discontinued {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &Cart{}
	}

	if idx := c.find(productID); idx >= 0 {
		next := c.Items[idx].Quantity + quantity
		if next > MaxLineQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity))
		}
		c.Items[idx].Quantity = next
		c.Items[idx].UnitPrice = product.UnitPrice
		c.Items[idx].ProductName = product.Name
	} else {
		c.Items = append(c.Items, Item{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.UnitPrice,
		})
	}
	c.Version++

	if err := s.store.SetCart(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeCartEmpty, "cart is empty")
	}
	idx := c.find(productID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Version++

	if err := s.store.SetCart(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.ClearCart(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
