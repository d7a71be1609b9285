package enums

import "testing"

func TestParseCarrierIsCaseInsensitive(t *testing.T) {
	tests := map[string]Carrier{
		"ups":    CarrierUPS,
		" FedEx": CarrierFedEx,
		"usps ":  CarrierUSPS,
		"Dhl":    CarrierDHL,
	}
	for raw, want := range tests {
		got, err := ParseCarrier(raw)
		if err != nil {
			t.Fatalf("ParseCarrier(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseCarrier(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseCarrier("pigeon"); err == nil {
		t.Fatal("expected unknown carrier to fail")
	}
}

func TestCheckoutAttemptStatusTerminal(t *testing.T) {
	if CheckoutAttemptAwaitingPayment.IsTerminal() {
		t.Fatal("awaiting payment must not be terminal")
	}
	if CheckoutAttemptCancelled.IsTerminal() {
		t.Fatal("cancelled attempts return to browsing")
	}
	if !CheckoutAttemptConfirmed.IsTerminal() || !CheckoutAttemptExpired.IsTerminal() {
		t.Fatal("confirmed and expired are terminal")
	}
	if _, err := ParseCheckoutAttemptStatus("bogus"); err == nil {
		t.Fatal("expected invalid status error")
	}
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("paid")
	if err != nil || got != OrderStatusPaid {
		t.Fatalf("unexpected parse result %v %v", got, err)
	}
	if OrderStatus("lost").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}
