package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for paid orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentSessionID(ctx context.Context, paymentSessionID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
}

// AttemptRepository persists hosted payment session attempts.
type AttemptRepository interface {
	WithTx(tx *gorm.DB) AttemptRepository
	// Create inserts the attempt unless its gateway session or idempotency key
	// already exists; inserted is false in that case. Pending attempts carry
	// no gateway session yet.
	Create(ctx context.Context, attempt *models.CheckoutAttempt) (inserted bool, err error)
	FindByGatewaySessionID(ctx context.Context, gatewaySessionID string) (*models.CheckoutAttempt, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.CheckoutAttempt, error)
	FindOpenByFingerprint(ctx context.Context, fingerprint string, now time.Time) (*models.CheckoutAttempt, error)
	FindPendingByFingerprint(ctx context.Context, fingerprint string) (*models.CheckoutAttempt, error)
	AttachGatewaySession(ctx context.Context, id uuid.UUID, gatewaySessionID, redirectURL string) (bool, error)
	CountByFingerprint(ctx context.Context, fingerprint string) (int64, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from enums.CheckoutAttemptStatus, to enums.CheckoutAttemptStatus) (bool, error)
	ListAwaitingForSession(ctx context.Context, webSessionID string) ([]models.CheckoutAttempt, error)
	ListStaleAwaiting(ctx context.Context, now time.Time, limit int) ([]models.CheckoutAttempt, error)
}
