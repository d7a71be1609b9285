package cart

import (
	cartdto "github.com/angelmondragon/storefront-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-backend/internal/cart"
)

func newCartResponse(c *cart.Cart) cartdto.Cart {
	resp := cartdto.Cart{Items: []cartdto.CartItem{}, Subtotal: c.Subtotal().StringFixed(2)}
	if c == nil {
		return resp
	}
	for _, item := range c.Items {
		resp.Items = append(resp.Items, cartdto.CartItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal().StringFixed(2),
		})
	}
	resp.ItemCount = c.ItemCount()
	resp.Version = c.Version
	return resp
}
