package enums

import (
	"fmt"
	"strings"
)

// Carrier identifies a parcel carrier with a public tracking page.
type Carrier string

const (
	CarrierUPS   Carrier = "UPS"
	CarrierFedEx Carrier = "FEDEX"
	CarrierUSPS  Carrier = "USPS"
	CarrierDHL   Carrier = "DHL"
)

var validCarriers = []Carrier{
	CarrierUPS,
	CarrierFedEx,
	CarrierUSPS,
	CarrierDHL,
}

// Carriers returns every supported carrier.
func Carriers() []Carrier {
	out := make([]Carrier, len(validCarriers))
	copy(out, validCarriers)
	return out
}

// String implements fmt.Stringer.
func (c Carrier) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Carrier.
func (c Carrier) IsValid() bool {
	for _, candidate := range validCarriers {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCarrier converts raw input into a Carrier, ignoring case and surrounding space.
func ParseCarrier(value string) (Carrier, error) {
	normalized := Carrier(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid carrier %q", value)
}
