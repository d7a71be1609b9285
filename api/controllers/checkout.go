package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	homePath     = "/"
	checkoutPath = "/checkout"
	receiptPath  = "/checkout/receipt"
)

// CheckoutService is the checkout orchestration used by the storefront handlers.
type CheckoutService interface {
	PrepareCheckout(ctx context.Context, sessionID string, principal *auth.Principal) (*checkoutsvc.CheckoutView, error)
	SubmitCheckout(ctx context.Context, sessionID string, principal *auth.Principal, details checkoutsvc.ShippingDetails) (*checkoutsvc.PaymentSessionHandle, error)
	ConfirmPayment(ctx context.Context, sessionID, gatewaySessionID string) (*models.Order, error)
	CancelPayment(ctx context.Context, sessionID string) error
	GetReceipt(ctx context.Context, sessionID string, principal *auth.Principal, rawOrderID string) (*models.Order, error)
	ListReceipts(ctx context.Context, principal *auth.Principal) ([]models.Order, error)
	TrackPackage(ctx context.Context, principal *auth.Principal, carrier, trackingNumber string) (*checkoutsvc.TrackingView, error)
}

type checkoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url,omitempty"`
}

// CheckoutView renders the checkout form pre-filled from the customer
// profile. Shoppers without a cart are sent back to the catalog.
func CheckoutView(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		view, err := svc.PrepareCheckout(ctx, middleware.SessionIDFromContext(ctx), auth.PrincipalFromContext(ctx))
		switch {
		case err == nil:
			responses.WriteSuccess(w, view)
		case pkgerrors.Is(err, pkgerrors.CodeCartEmpty):
			http.Redirect(w, r, homePath, http.StatusSeeOther)
		case checkoutsvc.IsFormError(err):
			responses.WriteSuccess(w, &checkoutsvc.CheckoutView{Errors: formErrors(err)})
		default:
			responses.WriteError(ctx, logg, w, err)
		}
	}
}

// CheckoutSubmit opens a hosted payment session and returns its identifier
// for the client-side redirect.
func CheckoutSubmit(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		var details checkoutsvc.ShippingDetails
		if err := validators.DecodeJSON(r, &details); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		handle, err := svc.SubmitCheckout(ctx, middleware.SessionIDFromContext(ctx), auth.PrincipalFromContext(ctx), details)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutSessionResponse{SessionID: handle.ID, URL: handle.URL})
	}
}

// CheckoutSuccess confirms the payment the gateway redirected back for and
// forwards to its receipt.
func CheckoutSuccess(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		order, err := svc.ConfirmPayment(ctx, middleware.SessionIDFromContext(ctx), r.URL.Query().Get("session_id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		http.Redirect(w, r, receiptPath+"?id="+url.QueryEscape(order.ID.String()), http.StatusSeeOther)
	}
}

// CheckoutCancel returns the shopper to checkout with the cart intact.
func CheckoutCancel(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		if err := svc.CancelPayment(ctx, middleware.SessionIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		http.Redirect(w, r, checkoutPath, http.StatusSeeOther)
	}
}

func formErrors(err error) []string {
	if typed := pkgerrors.As(err); typed != nil {
		return []string{typed.Message()}
	}
	return []string{err.Error()}
}
