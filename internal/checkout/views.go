package checkout

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// CheckoutView is rendered by GET /checkout.
type CheckoutView struct {
	Cart           *cart.Cart      `json:"cart"`
	Subtotal       string          `json:"subtotal"`
	Shipping       ShippingDetails `json:"shipping"`
	PublishableKey string          `json:"publishableKey"`
	Errors         []string        `json:"errors,omitempty"`
}

// ReceiptLine is one settled line of an order.
type ReceiptLine struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	UnitAmountMinor  int64  `json:"unitAmountMinor"`
	AmountTotalMinor int64  `json:"amountTotalMinor"`
}

// Receipt is the read-only projection of an order.
type Receipt struct {
	OrderID        uuid.UUID       `json:"orderId"`
	CustomerID     *uuid.UUID      `json:"customerId,omitempty"`
	Status         string          `json:"status"`
	Currency       string          `json:"currency"`
	SubtotalMinor  int64           `json:"subtotalMinor"`
	ShippingMinor  int64           `json:"shippingMinor"`
	TotalMinor     int64           `json:"totalMinor"`
	Shipping       ShippingDetails `json:"shipping"`
	Carrier        *string         `json:"carrier,omitempty"`
	TrackingNumber *string         `json:"trackingNumber,omitempty"`
	Lines          []ReceiptLine   `json:"lines"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ReceiptFromModel projects a stored order.
func ReceiptFromModel(o *models.Order) *Receipt {
	if o == nil {
		return nil
	}
	r := &Receipt{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		Status:        o.Status.String(),
		Currency:      o.Currency,
		SubtotalMinor: o.SubtotalMinor,
		ShippingMinor: o.ShippingMinor,
		TotalMinor:    o.TotalMinor,
		Shipping: ShippingDetails{
			ShipTarget: o.ShipTarget,
			Email:      o.Email,
			Address:    o.Address,
			City:       o.City,
			Region:     o.Region,
			PostalCode: o.PostalCode,
			Country:    o.Country,
		},
		TrackingNumber: o.TrackingNumber,
		Lines:          make([]ReceiptLine, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt,
	}
	if o.Carrier != nil {
		carrier := o.Carrier.String()
		r.Carrier = &carrier
	}
	for _, item := range o.Items {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:             item.Name,
			Quantity:         item.Quantity,
			UnitAmountMinor:  item.UnitAmountMinor,
			AmountTotalMinor: item.AmountTotalMinor,
		})
	}
	return r
}

// ShipperView is a carrier option on the tracking page.
type ShipperView struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	Phone       string    `json:"phone,omitempty"`
	CarrierCode string    `json:"carrierCode"`
}

// TrackingView is the display state of the package tracking page.
type TrackingView struct {
	SelectedCarrier        string          `json:"selectedCarrier"`
	SelectedTrackingNumber string          `json:"selectedTrackingNumber"`
	Carriers               []enums.Carrier `json:"carriers"`
	Shippers               []ShipperView   `json:"shippers"`
	Orders                 []Receipt       `json:"orders"`
	Errors                 []string        `json:"errors,omitempty"`
}
