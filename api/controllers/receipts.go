package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type receiptResponse struct {
	Receipt *checkoutsvc.Receipt `json:"receipt,omitempty"`
	Errors  []string             `json:"errors,omitempty"`
}

type receiptsResponse struct {
	Orders []checkoutsvc.Receipt `json:"orders"`
	Errors []string              `json:"errors,omitempty"`
}

// CheckoutReceipt shows one order. Missing or foreign orders render as a
// message on the page rather than a failed request.
func CheckoutReceipt(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		order, err := svc.GetReceipt(ctx, middleware.SessionIDFromContext(ctx), auth.PrincipalFromContext(ctx), r.URL.Query().Get("id"))
		switch {
		case err == nil:
			responses.WriteSuccess(w, receiptResponse{Receipt: checkoutsvc.ReceiptFromModel(order)})
		case checkoutsvc.IsFormError(err):
			responses.WriteSuccess(w, receiptResponse{Errors: formErrors(err)})
		default:
			responses.WriteError(ctx, logg, w, err)
		}
	}
}

// CheckoutReceipts lists the signed-in customer's orders.
func CheckoutReceipts(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		ctx := r.Context()

		resp := receiptsResponse{Orders: []checkoutsvc.Receipt{}}
		list, err := svc.ListReceipts(ctx, auth.PrincipalFromContext(ctx))
		switch {
		case err == nil:
			for i := range list {
				resp.Orders = append(resp.Orders, *checkoutsvc.ReceiptFromModel(&list[i]))
			}
		case checkoutsvc.IsFormError(err):
			resp.Errors = formErrors(err)
		default:
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
