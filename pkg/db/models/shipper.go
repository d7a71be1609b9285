package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Shipper is a carrier offered on the tracking page.
type Shipper struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	CompanyName string        `gorm:"column:company_name;not null"`
	Phone       *string       `gorm:"column:phone"`
	CarrierCode enums.Carrier `gorm:"column:carrier_code;type:text;not null"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
}
