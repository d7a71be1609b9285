package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is created once per paid payment session and never mutated by checkout.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID       *uuid.UUID        `gorm:"column:customer_id;type:uuid"`
	PaymentSessionID string            `gorm:"column:payment_session_id;not null;uniqueIndex"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'paid'"`
	Currency         string            `gorm:"column:currency;not null"`
	SubtotalMinor    int64             `gorm:"column:subtotal_minor;not null"`
	ShippingMinor    int64             `gorm:"column:shipping_minor;not null"`
	TotalMinor       int64             `gorm:"column:total_minor;not null"`
	Email            string            `gorm:"column:email;not null"`
	ShipTarget       string            `gorm:"column:ship_target;not null"`
	Address          string            `gorm:"column:address;not null"`
	City             string            `gorm:"column:city;not null"`
	Region           string            `gorm:"column:region;not null"`
	PostalCode       string            `gorm:"column:postal_code;not null"`
	Country          string            `gorm:"column:country;not null"`
	Carrier          *enums.Carrier    `gorm:"column:carrier;type:text"`
	TrackingNumber   *string           `gorm:"column:tracking_number"`
	Items            []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
}
