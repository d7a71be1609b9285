package models

import "github.com/google/uuid"

// OrderLineItem mirrors one line of the settled payment session.
type OrderLineItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Position         int       `gorm:"column:position;not null"`
	Name             string    `gorm:"column:name;not null"`
	Quantity         int       `gorm:"column:quantity;not null"`
	UnitAmountMinor  int64     `gorm:"column:unit_amount_minor;not null"`
	AmountTotalMinor int64     `gorm:"column:amount_total_minor;not null"`
}
