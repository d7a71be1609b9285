package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the storefront profile linked to an identity-provider username.
type Customer struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Username    string    `gorm:"column:username;not null;uniqueIndex"`
	ContactName *string   `gorm:"column:contact_name"`
	CompanyName *string   `gorm:"column:company_name"`
	Email       *string   `gorm:"column:email"`
	Address     *string   `gorm:"column:address"`
	City        *string   `gorm:"column:city"`
	Region      *string   `gorm:"column:region"`
	PostalCode  *string   `gorm:"column:postal_code"`
	Country     *string   `gorm:"column:country"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
