package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// CheckoutAttempt records one hosted payment session opened for a shopping
// session. GatewaySessionID and RedirectURL stay empty while the attempt is
// pending.
type CheckoutAttempt struct {
	ID               uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	GatewaySessionID string                      `gorm:"column:gateway_session_id;not null"`
	IdempotencyKey   string                      `gorm:"column:idempotency_key;not null;uniqueIndex"`
	Fingerprint      string                      `gorm:"column:fingerprint;not null;index"`
	WebSessionID     string                      `gorm:"column:web_session_id;not null"`
	CustomerID       uuid.UUID                   `gorm:"column:customer_id;type:uuid;not null"`
	CartVersion      int64                       `gorm:"column:cart_version;not null"`
	Status           enums.CheckoutAttemptStatus `gorm:"column:status;type:text;not null;default:'awaiting_payment'"`
	OrderID          *uuid.UUID                  `gorm:"column:order_id;type:uuid"`
	RedirectURL      string                      `gorm:"column:redirect_url;not null"`
	ExpiresAt        time.Time                   `gorm:"column:expires_at;not null"`
	CreatedAt        time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
