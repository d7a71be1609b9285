package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CheckoutTracking renders the package tracking page.
func CheckoutTracking(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		carrier, number, err := trackingQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.TrackPackage(ctx, auth.PrincipalFromContext(ctx), carrier, number)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutTrackExternal redirects to the carrier's public tracking page.
func CheckoutTrackExternal(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carrier, number, err := trackingQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := checkoutsvc.ResolveExternalTrackingURL(carrier, number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

const (
	maxCarrierLen        = 16
	maxTrackingNumberLen = 64
)

func trackingQuery(r *http.Request) (string, string, error) {
	carrier, err := validators.ParseQueryString(r, "carrier", maxCarrierLen)
	if err != nil {
		return "", "", err
	}
	number, err := validators.ParseQueryString(r, "trackingNumber", maxTrackingNumberLen)
	if err != nil {
		return "", "", err
	}
	return carrier, number, nil
}
