package checkout

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// User-facing messages rendered on the checkout views.
const (
	MsgNotIdentified          = "I can't identify you. Please log in and try again."
	MsgCartEmpty              = "Your cart is empty."
	MsgNoOrderSpecified       = "No order specified. Please try again."
	MsgPaymentNotCompleted    = "payment not completed"
	MsgTrackingNumberRequired = "Please enter a tracking number."
)

func errNotIdentified() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, MsgNotIdentified)
}

func errCartEmpty() error {
	return pkgerrors.New(pkgerrors.CodeCartEmpty, MsgCartEmpty)
}

func errNoOrderSpecified() error {
	return pkgerrors.New(pkgerrors.CodeValidation, MsgNoOrderSpecified)
}

func errOrderNotFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Order %s was not found.", id))
}

// IsFormError reports whether err should be shown inline on a view rather
// than failing the request.
func IsFormError(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	switch typed.Code() {
	case pkgerrors.CodeUnauthorized, pkgerrors.CodeNotFound, pkgerrors.CodeValidation:
		return true
	}
	return false
}
