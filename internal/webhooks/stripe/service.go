package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
)

// Webhook outcome labels.
const (
	outcomeHandled = "handled"
	outcomeIgnored = "ignored"
	outcomeFailed  = "failed"
)

type checkoutSettler interface {
	ConfirmFromWebhook(ctx context.Context, gatewaySessionID string) error
	ExpireAttempt(ctx context.Context, gatewaySessionID string) error
}

type ServiceParams struct {
	Checkout checkoutSettler
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
}

// Service applies Stripe checkout session events to local checkout attempts.
type Service struct {
	checkout checkoutSettler
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	return &Service{
		checkout: params.Checkout,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	eventType := string(event.Type)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		sessionID, err := checkoutSessionID(event)
		if err != nil {
			s.metrics.IncWebhook(eventType, outcomeFailed)
			return err
		}
		if err := s.checkout.ConfirmFromWebhook(ctx, sessionID); err != nil {
			s.metrics.IncWebhook(eventType, outcomeFailed)
			return err
		}
	case stripe.EventTypeCheckoutSessionExpired:
		sessionID, err := checkoutSessionID(event)
		if err != nil {
			s.metrics.IncWebhook(eventType, outcomeFailed)
			return err
		}
		if err := s.checkout.ExpireAttempt(ctx, sessionID); err != nil {
			s.metrics.IncWebhook(eventType, outcomeFailed)
			return err
		}
	default:
		s.metrics.IncWebhook(eventType, outcomeIgnored)
		if s.logg != nil {
			s.logg.Debug(s.logg.WithField(ctx, "event_type", eventType), "stripe.webhook_ignored")
		}
		return nil
	}

	s.metrics.IncWebhook(eventType, outcomeHandled)
	return nil
}

func checkoutSessionID(event *stripe.Event) (string, error) {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
	}
	id := strings.TrimSpace(cs.ID)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}
	return id, nil
}
