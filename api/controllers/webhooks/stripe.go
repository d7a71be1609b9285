package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Checkout session events are a few KB; anything past this is not Stripe.
const maxWebhookBytes = 64 << 10

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

// EventGuard dedupes provider deliveries by event id.
type EventGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// SigningClient exposes the webhook signing secret.
type SigningClient interface {
	SigningSecret() string
}

type webhookAck struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

// StripeWebhook verifies and applies Stripe checkout session events.
//
// A nil guard disables delivery dedupe; the checkout state transitions are
// idempotent on their own, the guard only saves the repeated work. A failed
// event releases its guard entry so Stripe's redelivery is processed again.
func StripeWebhook(svc StripeWebhookService, client SigningClient, guard EventGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || client == nil || client.SigningSecret() == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe webhooks not configured"))
			return
		}

		event, err := verifyStripeEvent(r, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"stripe_event_id":   event.ID,
				"stripe_event_type": string(event.Type),
				"stripe_livemode":   event.Livemode,
			})
		}

		if guard != nil {
			seen, err := guard.CheckAndMark(ctx, event.ID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check webhook delivery"))
				return
			}
			if seen {
				if logg != nil {
					logg.Debug(ctx, "stripe.webhook.duplicate")
				}
				responses.WriteSuccess(w, webhookAck{Received: true, Duplicate: true})
				return
			}
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			if guard != nil {
				if delErr := guard.Delete(ctx, event.ID); delErr != nil && logg != nil {
					logg.Error(ctx, "stripe.webhook.guard_release_failed", delErr)
				}
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, "stripe.webhook.processed")
		}
		responses.WriteSuccess(w, webhookAck{Received: true})
	}
}

// verifyStripeEvent checks the Stripe-Signature header against the raw body.
// Events pinned to another API version are accepted; only the session id is
// read from them.
func verifyStripeEvent(r *http.Request, secret string) (stripe.Event, error) {
	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		return stripe.Event{}, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing")
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes+1))
	if err != nil {
		return stripe.Event{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable webhook body")
	}
	if len(payload) > maxWebhookBytes {
		return stripe.Event{}, pkgerrors.New(pkgerrors.CodeValidation, "webhook payload too large")
	}

	event, err := webhook.ConstructEventWithOptions(payload, sig, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe signature")
	}
	return event, nil
}
