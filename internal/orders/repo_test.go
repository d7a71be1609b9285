package orders

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(customerID uuid.UUID, sessionID string) *models.Order {
	return &models.Order{
		CustomerID:       &customerID,
		PaymentSessionID: sessionID,
		Status:           enums.OrderStatusPaid,
		Currency:         "dkk",
		SubtotalMinor:    75000,
		ShippingMinor:    15000,
		TotalMinor:       90000,
		Email:            "alice@example.com",
		ShipTarget:       "Alice",
		Items: []models.OrderLineItem{
			{Position: 1, Name: "Standard Shipping", Quantity: 1, UnitAmountMinor: 15000, AmountTotalMinor: 15000},
			{Position: 0, Name: "Cart Items", Quantity: 1, UnitAmountMinor: 75000, AmountTotalMinor: 75000},
		},
	}
}

func TestRepositoryCreateOrderWithItems(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(dbtest.Open(t))
	customerID := uuid.New()

	created, err := r.CreateOrder(ctx, newOrder(customerID, "cs_test_1"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := r.FindByPaymentSessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Cart Items", found.Items[0].Name)
	assert.Equal(t, "Standard Shipping", found.Items[1].Name)

	byID, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), byID.TotalMinor)
	require.NotNil(t, byID.CustomerID)
	assert.Equal(t, customerID, *byID.CustomerID)
}

func TestRepositoryCreateOrderRejectsDuplicatePaymentSession(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(dbtest.Open(t))

	_, err := r.CreateOrder(ctx, newOrder(uuid.New(), "cs_dup"))
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, newOrder(uuid.New(), "cs_dup"))
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryListByCustomerNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(dbtest.Open(t))
	customerID := uuid.New()

	first, err := r.CreateOrder(ctx, newOrder(customerID, "cs_a"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := r.CreateOrder(ctx, newOrder(customerID, "cs_b"))
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, newOrder(uuid.New(), "cs_other"))
	require.NoError(t, err)

	list, err := r.ListByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	_, err := r.FindByID(context.Background(), uuid.New())
	assert.True(t, repo.IsNotFound(err))
}
