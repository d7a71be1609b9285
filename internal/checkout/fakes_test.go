package checkout

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/shippers"
	"github.com/angelmondragon/storefront-backend/internal/shopsession"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway mimics Stripe's idempotency: a repeated key with identical
// parameters replays the first session, with different parameters it fails.
type fakeGateway struct {
	mu        sync.Mutex
	requests  []PaymentSessionRequest
	sessions  map[string]*GatewaySession
	byKey     map[string]keyedCreate
	expired   []string
	getCalls  int
	created   int
	createErr error
	getErr    error
}

type keyedCreate struct {
	req    PaymentSessionRequest
	handle *PaymentSessionHandle
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*GatewaySession{}, byKey: map[string]keyedCreate{}}
}

func (g *fakeGateway) CreateSession(_ context.Context, req PaymentSessionRequest) (*PaymentSessionHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.requests = append(g.requests, req)
	if prev, ok := g.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		if !reflect.DeepEqual(prev.req, req) {
			return nil, fmt.Errorf("idempotency key %s reused with different parameters", req.IdempotencyKey)
		}
		cp := *prev.handle
		return &cp, nil
	}
	g.created++
	id := fmt.Sprintf("cs_test_%d", g.created)

	gs := &GatewaySession{
		ID:              id,
		Status:          GatewayStatusOpen,
		Currency:        req.Currency,
		CustomerEmail:   req.CustomerEmail,
		ClientReference: req.ClientReference,
		Metadata:        map[string]string{},
	}
	for k, v := range req.Metadata {
		gs.Metadata[k] = v
	}
	for _, li := range req.LineItems {
		total := li.UnitAmountMinorUnits * li.Quantity
		gs.LineItems = append(gs.LineItems, GatewayLineItem{
			Name:        li.Name,
			Quantity:    li.Quantity,
			UnitAmount:  li.UnitAmountMinorUnits,
			AmountTotal: total,
		})
		gs.AmountTotal += total
	}
	g.sessions[id] = gs
	handle := &PaymentSessionHandle{ID: id, URL: "https://checkout.stripe.test/pay/" + id}
	if req.IdempotencyKey != "" {
		g.byKey[req.IdempotencyKey] = keyedCreate{req: req, handle: handle}
	}
	cp := *handle
	return &cp, nil
}

func (g *fakeGateway) GetSession(_ context.Context, id string) (*GatewaySession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls++
	if g.getErr != nil {
		return nil, g.getErr
	}
	gs, ok := g.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session %s", id)
	}
	cp := *gs
	return &cp, nil
}

// ExpireSession only expires open sessions, as Stripe does.
func (g *fakeGateway) ExpireSession(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	gs, ok := g.sessions[id]
	if !ok {
		return fmt.Errorf("no such checkout session %s", id)
	}
	if gs.Status != GatewayStatusOpen {
		return fmt.Errorf("checkout session %s is %s", id, gs.Status)
	}
	g.expired = append(g.expired, id)
	gs.Status = GatewayStatusExpired
	return nil
}

// markPaid completes an open session. Expired sessions cannot be paid.
func (g *fakeGateway) markPaid(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	gs := g.sessions[id]
	if gs == nil || gs.Status != GatewayStatusOpen {
		return false
	}
	gs.Status = GatewayStatusComplete
	gs.Paid = true
	return true
}

func (g *fakeGateway) createCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *fakeGateway) sessionsCreated() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.created
}

// flakyAttempts fails AttachGatewaySession while attachErr is set.
type flakyAttempts struct {
	orders.AttemptRepository
	attachErr error
}

func (a *flakyAttempts) AttachGatewaySession(ctx context.Context, id uuid.UUID, gatewaySessionID, redirectURL string) (bool, error) {
	if a.attachErr != nil {
		return false, a.attachErr
	}
	return a.AttemptRepository.AttachGatewaySession(ctx, id, gatewaySessionID, redirectURL)
}

type fixture struct {
	svc       *Service
	gateway   *fakeGateway
	sessions  *shopsession.MemoryStore
	orders    orders.Repository
	attempts  orders.AttemptRepository
	customers *customers.Repository
	shippers  *shippers.Repository
	customer  *models.Customer
	tx        *db.Client
	now       time.Time
}

var fixtureNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := dbtest.Open(t)
	f := &fixture{
		gateway:   newFakeGateway(),
		sessions:  shopsession.NewMemoryStore(),
		orders:    orders.NewRepository(gdb),
		attempts:  orders.NewAttemptRepository(gdb),
		customers: customers.NewRepository(gdb),
		shippers:  shippers.NewRepository(gdb),
		tx:        db.FromConn(gdb),
		now:       fixtureNow,
	}
	f.customer = f.seedCustomer(t, "alice")

	f.svc = f.build(t, f.attempts)
	return f
}

// build wires a service over the fixture's stores with the given attempts.
func (f *fixture) build(t *testing.T, attempts orders.AttemptRepository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Orders:    f.orders,
		Attempts:  attempts,
		Customers: f.customers,
		Shippers:  f.shippers,
		Sessions:  f.sessions,
		Gateway:   f.gateway,
		TxRunner:  f.tx,
		Pricing: Pricing{
			Currency:         "dkk",
			ExchangeRate:     decimal.RequireFromString("7.5"),
			StandardShipping: decimal.NewFromInt(20),
		},
		PublicBaseURL:  "https://shop.example/",
		PublishableKey: "pk_test_123",
		SessionTTL:     45 * time.Minute,
		Now:            func() time.Time { return f.now },
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) seedCustomer(t *testing.T, username string) *models.Customer {
	t.Helper()
	name := "Contact " + username
	email := username + "@example.com"
	city := "Copenhagen"
	c, err := f.customers.Create(context.Background(), &models.Customer{
		Username:    username,
		ContactName: &name,
		Email:       &email,
		City:        &city,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) seedCart(t *testing.T, sessionID, price string, quantity int, version int64) {
	t.Helper()
	require.NoError(t, f.sessions.SetCart(context.Background(), sessionID, &cart.Cart{
		Items: []cart.Item{{
			ProductID:   uuid.New(),
			ProductName: "Chai",
			Quantity:    quantity,
			UnitPrice:   decimal.RequireFromString(price),
		}},
		Version: version,
	}))
}

func validDetails() ShippingDetails {
	return ShippingDetails{
		ShipTarget: "Alice Example",
		Email:      "alice@example.com",
		Address:    "1 Harbour Street",
		City:       "Copenhagen",
		Region:     "Hovedstaden",
		PostalCode: "1050",
		Country:    "Denmark",
	}
}

func requireNoOrder(t *testing.T, repo orders.Repository, gatewaySessionID string) {
	t.Helper()
	_, err := repo.FindByPaymentSessionID(context.Background(), gatewaySessionID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
