package checkout

import (
	"context"
	"time"
)

// PaymentLineItem is one priced line sent to the payment gateway.
type PaymentLineItem struct {
	Name                 string
	UnitAmountMinorUnits int64
	Quantity             int64
}

// PaymentSessionRequest describes a hosted payment session to open.
type PaymentSessionRequest struct {
	LineItems       []PaymentLineItem
	Currency        string
	SuccessURL      string
	CancelURL       string
	CustomerEmail   string
	ClientReference string
	Metadata        map[string]string
	// IdempotencyKey and ExpiresAt are stored with the attempt and resent
	// unchanged when a submit is retried.
	IdempotencyKey string
	ExpiresAt      time.Time
}

// Hosted sessions must expire 30 minutes to 24 hours after creation.
const (
	minSessionLifetime = 31 * time.Minute
	maxSessionLifetime = 24 * time.Hour
)

// clampExpiry keeps expiresAt inside the lifetime the gateway accepts for a
// session created at now.
func clampExpiry(expiresAt, now time.Time) time.Time {
	if lower := now.Add(minSessionLifetime); expiresAt.Before(lower) {
		return lower
	}
	if upper := now.Add(maxSessionLifetime); expiresAt.After(upper) {
		return upper
	}
	return expiresAt
}

// PaymentSessionHandle identifies an opened session and where to send the shopper.
type PaymentSessionHandle struct {
	ID  string
	URL string
}

// Gateway session statuses.
const (
	GatewayStatusOpen     = "open"
	GatewayStatusComplete = "complete"
	GatewayStatusExpired  = "expired"
)

// GatewayLineItem is a settled line as reported by the gateway.
type GatewayLineItem struct {
	Name        string
	Quantity    int64
	UnitAmount  int64
	AmountTotal int64
}

// GatewaySession is the gateway's authoritative view of a payment session.
type GatewaySession struct {
	ID              string
	Status          string
	Paid            bool
	Currency        string
	AmountTotal     int64
	CustomerEmail   string
	ClientReference string
	Metadata        map[string]string
	LineItems       []GatewayLineItem
}

// Confirmed reports whether the session completed with funds captured.
func (s *GatewaySession) Confirmed() bool {
	return s != nil && s.Status == GatewayStatusComplete && s.Paid
}

// Gateway is the narrow surface of the hosted payment provider.
type Gateway interface {
	CreateSession(ctx context.Context, req PaymentSessionRequest) (*PaymentSessionHandle, error)
	GetSession(ctx context.Context, id string) (*GatewaySession, error)
	ExpireSession(ctx context.Context, id string) error
}
