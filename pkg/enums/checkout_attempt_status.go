package enums

import "fmt"

// CheckoutAttemptStatus tracks a hosted payment session from creation until it settles.
type CheckoutAttemptStatus string

const (
	// CheckoutAttemptPending is reserved before the gateway call and holds the
	// idempotency key and expiry sent with it.
	CheckoutAttemptPending         CheckoutAttemptStatus = "pending"
	CheckoutAttemptAwaitingPayment CheckoutAttemptStatus = "awaiting_payment"
	CheckoutAttemptConfirmed       CheckoutAttemptStatus = "confirmed"
	CheckoutAttemptCancelled       CheckoutAttemptStatus = "cancelled"
	CheckoutAttemptExpired         CheckoutAttemptStatus = "expired"
)

var validCheckoutAttemptStatuses = []CheckoutAttemptStatus{
	CheckoutAttemptPending,
	CheckoutAttemptAwaitingPayment,
	CheckoutAttemptConfirmed,
	CheckoutAttemptCancelled,
	CheckoutAttemptExpired,
}

// String implements fmt.Stringer.
func (s CheckoutAttemptStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutAttemptStatus.
func (s CheckoutAttemptStatus) IsValid() bool {
	for _, candidate := range validCheckoutAttemptStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s CheckoutAttemptStatus) IsTerminal() bool {
	return s == CheckoutAttemptConfirmed || s == CheckoutAttemptExpired
}

// ParseCheckoutAttemptStatus converts raw input into a CheckoutAttemptStatus.
func ParseCheckoutAttemptStatus(value string) (CheckoutAttemptStatus, error) {
	for _, candidate := range validCheckoutAttemptStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout attempt status %q", value)
}
