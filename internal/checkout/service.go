package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/internal/shopsession"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Confirmation sources recorded in metrics and logs.
const (
	SourceRedirect = "redirect"
	SourceWebhook  = "webhook"
	SourceExpiry   = "expiry"
)

type customerLoader interface {
	FindByUsername(ctx context.Context, username string) (*models.Customer, error)
}

type shipperLister interface {
	List(ctx context.Context) ([]models.Shipper, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the checkout orchestrator.
type ServiceParams struct {
	Orders         orders.Repository
	Attempts       orders.AttemptRepository
	Customers      customerLoader
	Shippers       shipperLister
	Sessions       shopsession.Store
	Gateway        Gateway
	TxRunner       txRunner
	Pricing        Pricing
	PublicBaseURL  string
	PublishableKey string
	SessionTTL     time.Duration
	Metrics        *metrics.CheckoutMetrics
	Logger         *logger.Logger
	Now            func() time.Time
}

// Service turns a session cart plus shipping details into a paid order.
type Service struct {
	orders         orders.Repository
	attempts       orders.AttemptRepository
	customers      customerLoader
	shippers       shipperLister
	sessions       shopsession.Store
	gateway        Gateway
	tx             txRunner
	pricing        Pricing
	baseURL        string
	publishableKey string
	sessionTTL     time.Duration
	metrics        *metrics.CheckoutMetrics
	logg           *logger.Logger
	now            func() time.Time
}

// NewService validates the dependencies and builds the orchestrator.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Attempts == nil {
		return nil, fmt.Errorf("checkout attempt repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if params.Shippers == nil {
		return nil, fmt.Errorf("shipper lister required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if strings.TrimSpace(params.Pricing.Currency) == "" {
		return nil, fmt.Errorf("settlement currency required")
	}
	if !params.Pricing.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("exchange rate must be positive")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(params.PublicBaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("public base url required")
	}
	ttl := params.SessionTTL
	if ttl <= 0 {
		ttl = 45 * time.Minute
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:         params.Orders,
		attempts:       params.Attempts,
		customers:      params.Customers,
		shippers:       params.Shippers,
		sessions:       params.Sessions,
		gateway:        params.Gateway,
		tx:             params.TxRunner,
		pricing:        params.Pricing,
		baseURL:        baseURL,
		publishableKey: params.PublishableKey,
		sessionTTL:     ttl,
		metrics:        params.Metrics,
		logg:           params.Logger,
		now:            now,
	}, nil
}

// PrepareCheckout renders the checkout form for the session's cart, pre-filled
// from the caller's customer profile.
func (s *Service) PrepareCheckout(ctx context.Context, sessionID string, principal *auth.Principal) (*CheckoutView, error) {
	c, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	customer, err := s.resolveCustomer(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &CheckoutView{
		Cart:           c,
		Subtotal:       c.Subtotal().StringFixed(2),
		Shipping:       shippingFromCustomer(customer),
		PublishableKey: s.publishableKey,
	}, nil
}

// SubmitCheckout opens a hosted payment session for the session's cart. Repeat
// submissions of the same cart version and details reuse the open session.
func (s *Service) SubmitCheckout(ctx context.Context, sessionID string, principal *auth.Principal, details ShippingDetails) (*PaymentSessionHandle, error) {
	c, err := s.loadCart(ctx, sessionID)
	if err != nil {
		s.metrics.IncSession(metrics.OutcomeRejected)
		return nil, err
	}

	details = details.normalized()
	if err := validation.Struct(&details); err != nil {
		s.metrics.IncSession(metrics.OutcomeRejected)
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, principal)
	if err != nil {
		s.metrics.IncSession(metrics.OutcomeRejected)
		return nil, err
	}

	now := s.now().UTC()
	fp := fingerprint(sessionID, c.Version, details)

	open, err := s.attempts.FindOpenByFingerprint(ctx, fp, now)
	switch {
	case err == nil:
		s.metrics.IncSession(metrics.OutcomeReused)
		return &PaymentSessionHandle{ID: open.GatewaySessionID, URL: open.RedirectURL}, nil
	case !repo.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempts")
	}

	attempt, err := s.reserveAttempt(ctx, fp, sessionID, customer.ID, c.Version, now)
	if err != nil {
		return nil, err
	}
	if attempt.Status == enums.CheckoutAttemptAwaitingPayment {
		s.metrics.IncSession(metrics.OutcomeReused)
		return &PaymentSessionHandle{ID: attempt.GatewaySessionID, URL: attempt.RedirectURL}, nil
	}

	metadata := details.metadata()
	metadata[metaCartVer] = strconv.FormatInt(c.Version, 10)

	handle, err := s.gateway.CreateSession(ctx, PaymentSessionRequest{
		LineItems:       s.pricing.LineItems(c),
		Currency:        s.pricing.Currency,
		SuccessURL:      s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       s.baseURL + "/checkout/cancel",
		CustomerEmail:   details.Email,
		ClientReference: customer.ID.String(),
		Metadata:        metadata,
		IdempotencyKey:  attempt.IdempotencyKey,
		ExpiresAt:       attempt.ExpiresAt,
	})
	if err != nil {
		s.metrics.IncSession(metrics.OutcomeFailed)
		s.logError(ctx, "checkout.gateway_create_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "create payment session")
	}

	attached, err := s.attempts.AttachGatewaySession(ctx, attempt.ID, handle.ID, handle.URL)
	if err != nil {
		s.logError(ctx, "checkout.attempt_persist_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record checkout attempt")
	}
	if !attached {
		existing, err := s.attempts.FindByIdempotencyKey(ctx, attempt.IdempotencyKey)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
		}
		if existing.Status != enums.CheckoutAttemptAwaitingPayment {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt is no longer open")
		}
		s.metrics.IncSession(metrics.OutcomeReused)
		return &PaymentSessionHandle{ID: existing.GatewaySessionID, URL: existing.RedirectURL}, nil
	}

	s.metrics.IncSession(metrics.OutcomeCreated)
	s.logInfo(ctx, "checkout.session_created", map[string]any{"gateway_session_id": handle.ID, "cart_version": c.Version})
	return handle, nil
}

// reserveAttempt returns the pending attempt for fp, reserving a new one when
// the existing reservation can no longer be replayed to the gateway with the
// same key and expiry. A reservation whose expiry is too close to accept is
// retired; any session it may have opened lapses at that expiry.
func (s *Service) reserveAttempt(ctx context.Context, fp, sessionID string, customerID uuid.UUID, cartVersion int64, now time.Time) (*models.CheckoutAttempt, error) {
	pending, err := s.attempts.FindPendingByFingerprint(ctx, fp)
	switch {
	case err == nil:
		if pending.CustomerID == customerID && !pending.ExpiresAt.Before(now.Add(minSessionLifetime)) {
			return pending, nil
		}
		if _, err := s.attempts.TransitionStatus(ctx, pending.ID, enums.CheckoutAttemptPending, enums.CheckoutAttemptExpired); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire checkout attempt")
		}
	case !repo.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempts")
	}

	previous, err := s.attempts.CountByFingerprint(ctx, fp)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count checkout attempts")
	}
	attempt := &models.CheckoutAttempt{
		ID:             uuid.New(),
		IdempotencyKey: fmt.Sprintf("%s-%d", fp, previous),
		Fingerprint:    fp,
		WebSessionID:   sessionID,
		CustomerID:     customerID,
		CartVersion:    cartVersion,
		Status:         enums.CheckoutAttemptPending,
		ExpiresAt:      clampExpiry(now.Add(s.sessionTTL), now),
	}
	inserted, err := s.attempts.Create(ctx, attempt)
	if err != nil {
		s.logError(ctx, "checkout.attempt_persist_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record checkout attempt")
	}
	if inserted {
		return attempt, nil
	}

	existing, err := s.attempts.FindByIdempotencyKey(ctx, attempt.IdempotencyKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}
	switch existing.Status {
	case enums.CheckoutAttemptPending, enums.CheckoutAttemptAwaitingPayment:
		return existing, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt is no longer open")
}

// ConfirmPayment handles the shopper returning from the hosted payment page.
// The order is built from the gateway's confirmed session only and bound to
// the web session that opened it. A shopper returning in another browser
// still gets the order; reading the receipt checks ownership.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID, gatewaySessionID string) (*models.Order, error) {
	gatewaySessionID = strings.TrimSpace(gatewaySessionID)
	if gatewaySessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required")
	}
	attempt, err := s.attempts.FindByGatewaySessionID(ctx, gatewaySessionID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}

	order, err := s.confirm(ctx, attempt, SourceRedirect)
	if err != nil {
		return nil, err
	}
	s.bindToSession(ctx, attempt, order)
	if sessionID != attempt.WebSessionID {
		s.logWarn(ctx, "checkout.confirm_foreign_session", map[string]any{"gateway_session_id": gatewaySessionID})
	}
	return order, nil
}

// ConfirmFromWebhook confirms a session reported complete by the gateway.
// Unknown sessions and sessions still awaiting asynchronous funds are ignored.
func (s *Service) ConfirmFromWebhook(ctx context.Context, gatewaySessionID string) error {
	attempt, err := s.attempts.FindByGatewaySessionID(ctx, gatewaySessionID)
	if err != nil {
		if repo.IsNotFound(err) {
			s.logWarn(ctx, "checkout.webhook_unknown_session", map[string]any{"gateway_session_id": gatewaySessionID})
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}
	order, err := s.confirm(ctx, attempt, SourceWebhook)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
			return nil
		}
		return err
	}
	s.bindToSession(ctx, attempt, order)
	return nil
}

// CancelPayment abandons the session's open payment attempts. Each hosted
// session is expired at the gateway before the attempt is cancelled, so a
// later submit of the same cart cannot leave two payable sessions. A session
// the gateway already settled is confirmed instead. The cart is kept.
func (s *Service) CancelPayment(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	awaiting, err := s.attempts.ListAwaitingForSession(ctx, sessionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempts")
	}

	var errs error
	for i := range awaiting {
		attempt := &awaiting[i]
		if err := s.gateway.ExpireSession(ctx, attempt.GatewaySessionID); err != nil {
			settled, settleErr := s.settleUnexpirable(ctx, attempt)
			if settleErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("expire session %s: %w", attempt.GatewaySessionID, multierr.Append(err, settleErr)))
				continue
			}
			if settled {
				continue
			}
		}
		moved, err := s.attempts.TransitionStatus(ctx, attempt.ID, enums.CheckoutAttemptAwaitingPayment, enums.CheckoutAttemptCancelled)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cancel attempt %s: %w", attempt.ID, err))
			continue
		}
		if moved {
			s.metrics.IncConfirmation(SourceRedirect, metrics.OutcomeCancelled)
		}
	}
	if errs != nil {
		s.logError(ctx, "checkout.cancel_failed", errs)
		return pkgerrors.Wrap(pkgerrors.CodePayment, errs, "cancel payment session")
	}
	return nil
}

// settleUnexpirable inspects a session the gateway refused to expire. A paid
// session is confirmed and reported settled; one that already lapsed may be
// cancelled. Anything else is an error.
func (s *Service) settleUnexpirable(ctx context.Context, attempt *models.CheckoutAttempt) (bool, error) {
	gs, err := s.gateway.GetSession(ctx, attempt.GatewaySessionID)
	if err != nil {
		return false, err
	}
	switch {
	case gs.Confirmed():
		order, err := s.confirm(ctx, attempt, SourceRedirect)
		if err != nil {
			return false, err
		}
		s.bindToSession(ctx, attempt, order)
		return true, nil
	case gs.Status == GatewayStatusExpired:
		return false, nil
	}
	return false, fmt.Errorf("session still %s", gs.Status)
}

// ExpireAttempt marks an attempt expired when the gateway reports its session lapsed.
func (s *Service) ExpireAttempt(ctx context.Context, gatewaySessionID string) error {
	attempt, err := s.attempts.FindByGatewaySessionID(ctx, gatewaySessionID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}
	moved, err := s.attempts.TransitionStatus(ctx, attempt.ID, enums.CheckoutAttemptAwaitingPayment, enums.CheckoutAttemptExpired)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire checkout attempt")
	}
	if moved {
		s.metrics.IncConfirmation(SourceWebhook, metrics.OutcomeExpired)
	}
	return nil
}

// GetReceipt loads an order for display. An empty id falls back to the
// session's most recent order. Orders the caller does not own are reported
// as not found.
func (s *Service) GetReceipt(ctx context.Context, sessionID string, principal *auth.Principal, rawOrderID string) (*models.Order, error) {
	var lastOrderID *uuid.UUID
	if sessionID != "" {
		id, err := s.sessions.GetLastOrderID(ctx, sessionID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		lastOrderID = id
	}

	raw := strings.TrimSpace(rawOrderID)
	var orderID uuid.UUID
	if raw == "" {
		if lastOrderID == nil {
			return nil, errNoOrderSpecified()
		}
		orderID = *lastOrderID
	} else {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, errOrderNotFound(raw)
		}
		orderID = parsed
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, errOrderNotFound(orderID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if lastOrderID != nil && *lastOrderID == order.ID {
		return order, nil
	}
	customer, err := s.resolveCustomer(ctx, principal)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
			return nil, errOrderNotFound(orderID.String())
		}
		return nil, err
	}
	if order.CustomerID == nil || *order.CustomerID != customer.ID {
		return nil, errOrderNotFound(orderID.String())
	}
	return order, nil
}

// ListReceipts returns the caller's orders, newest first.
func (s *Service) ListReceipts(ctx context.Context, principal *auth.Principal) ([]models.Order, error) {
	customer, err := s.resolveCustomer(ctx, principal)
	if err != nil {
		return nil, err
	}
	list, err := s.orders.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// TrackPackage builds the tracking page state. Identification and carrier
// problems become form errors on the view.
func (s *Service) TrackPackage(ctx context.Context, principal *auth.Principal, carrier, trackingNumber string) (*TrackingView, error) {
	view := &TrackingView{
		SelectedCarrier:        strings.ToUpper(strings.TrimSpace(carrier)),
		SelectedTrackingNumber: strings.TrimSpace(trackingNumber),
		Carriers:               enums.Carriers(),
		Shippers:               []ShipperView{},
		Orders:                 []Receipt{},
	}

	shippers, err := s.shippers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shippers")
	}
	for _, sh := range shippers {
		view.Shippers = append(view.Shippers, ShipperView{
			ID:          sh.ID,
			CompanyName: sh.CompanyName,
			Phone:       deref(sh.Phone),
			CarrierCode: sh.CarrierCode.String(),
		})
	}

	list, err := s.ListReceipts(ctx, principal)
	switch {
	case err == nil:
		for i := range list {
			view.Orders = append(view.Orders, *ReceiptFromModel(&list[i]))
		}
	case IsFormError(err):
		view.Errors = append(view.Errors, pkgerrors.As(err).Message())
	default:
		return nil, err
	}

	if view.SelectedCarrier != "" {
		if _, err := enums.ParseCarrier(view.SelectedCarrier); err != nil {
			view.Errors = append(view.Errors, pkgerrors.As(unsupportedCarrier(carrier)).Message())
		}
	}
	return view, nil
}

func (s *Service) loadCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if sessionID == "" {
		return nil, errCartEmpty()
	}
	c, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if c.IsEmpty() {
		return nil, errCartEmpty()
	}
	return c, nil
}

func (s *Service) resolveCustomer(ctx context.Context, principal *auth.Principal) (*models.Customer, error) {
	if principal == nil || strings.TrimSpace(principal.Username) == "" {
		return nil, errNotIdentified()
	}
	customer, err := s.customers.FindByUsername(ctx, principal.Username)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, errNotIdentified()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

// confirm creates the order for a paid attempt exactly once.
func (s *Service) confirm(ctx context.Context, attempt *models.CheckoutAttempt, source string) (*models.Order, error) {
	existing, err := s.orders.FindByPaymentSessionID(ctx, attempt.GatewaySessionID)
	if err == nil {
		if attempt.Status != enums.CheckoutAttemptConfirmed {
			if err := s.attempts.MarkConfirmed(ctx, attempt.ID, existing.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark checkout attempt confirmed")
			}
		}
		s.metrics.IncConfirmation(source, metrics.OutcomeReplayed)
		return existing, nil
	}
	if !repo.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	gs, err := s.gateway.GetSession(ctx, attempt.GatewaySessionID)
	if err != nil {
		s.logError(ctx, "checkout.gateway_get_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "retrieve payment session")
	}
	if !gs.Confirmed() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, MsgPaymentNotCompleted)
	}

	order := s.buildOrder(attempt, gs)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orders.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return err
		}
		return s.attempts.WithTx(tx).MarkConfirmed(ctx, attempt.ID, order.ID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			winner, findErr := s.orders.FindByPaymentSessionID(ctx, attempt.GatewaySessionID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load order")
			}
			s.metrics.IncConfirmation(source, metrics.OutcomeReplayed)
			return winner, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.IncConfirmation(source, metrics.OutcomeConfirmed)
	s.logInfo(ctx, "checkout.order_created", map[string]any{
		"order_id":           order.ID.String(),
		"gateway_session_id": attempt.GatewaySessionID,
		"source":             source,
	})
	return order, nil
}

func (s *Service) buildOrder(attempt *models.CheckoutAttempt, gs *GatewaySession) *models.Order {
	shipping := shippingFromMetadata(gs.Metadata)
	email := gs.CustomerEmail
	if email == "" {
		email = shipping.Email
	}

	customerID := attempt.CustomerID
	if parsed, err := uuid.Parse(gs.ClientReference); err == nil {
		customerID = parsed
	}

	currency := gs.Currency
	if currency == "" {
		currency = s.pricing.Currency
	}

	order := &models.Order{
		ID:               uuid.New(),
		CustomerID:       &customerID,
		PaymentSessionID: gs.ID,
		Status:           enums.OrderStatusPaid,
		Currency:         currency,
		Email:            email,
		ShipTarget:       shipping.ShipTarget,
		Address:          shipping.Address,
		City:             shipping.City,
		Region:           shipping.Region,
		PostalCode:       shipping.PostalCode,
		Country:          shipping.Country,
	}
	for i, li := range gs.LineItems {
		quantity := li.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		unit := li.UnitAmount
		if unit == 0 && li.AmountTotal > 0 {
			unit = li.AmountTotal / quantity
		}
		order.Items = append(order.Items, models.OrderLineItem{
			ID:               uuid.New(),
			OrderID:          order.ID,
			Position:         i,
			Name:             li.Name,
			Quantity:         int(quantity),
			UnitAmountMinor:  unit,
			AmountTotalMinor: li.AmountTotal,
		})
		if li.Name == LineItemStandardShipping {
			order.ShippingMinor += li.AmountTotal
		} else {
			order.SubtotalMinor += li.AmountTotal
		}
	}
	order.TotalMinor = gs.AmountTotal
	if order.TotalMinor == 0 {
		order.TotalMinor = order.SubtotalMinor + order.ShippingMinor
	}
	return order
}

// bindToSession records the order on the paying web session and empties the
// cart it was priced from. A cart changed since submission is left alone.
func (s *Service) bindToSession(ctx context.Context, attempt *models.CheckoutAttempt, order *models.Order) {
	if attempt.WebSessionID == "" || order == nil {
		return
	}
	if err := s.sessions.SetLastOrderID(ctx, attempt.WebSessionID, order.ID); err != nil {
		s.logError(ctx, "checkout.session_bind_failed", err)
		return
	}
	c, err := s.sessions.GetCart(ctx, attempt.WebSessionID)
	if err != nil {
		s.logError(ctx, "checkout.session_cart_load_failed", err)
		return
	}
	if c != nil && c.Version == attempt.CartVersion {
		if err := s.sessions.ClearCart(ctx, attempt.WebSessionID); err != nil {
			s.logError(ctx, "checkout.session_cart_clear_failed", err)
		}
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}

func (s *Service) logWarn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}
