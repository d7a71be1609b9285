package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var trackingURLTemplates = map[enums.Carrier]string{
	enums.CarrierUPS:   "https://www.ups.com/track?tracknum=%s",
	enums.CarrierFedEx: "https://www.fedex.com/fedextrack/?trknbr=%s",
	enums.CarrierUSPS:  "https://tools.usps.com/go/TrackConfirmAction?tLabels=%s",
	enums.CarrierDHL:   "https://www.dhl.com/en/express/tracking.html?AWB=%s&brand=DHL",
}

// ResolveExternalTrackingURL builds the carrier's public tracking page URL.
func ResolveExternalTrackingURL(carrier, trackingNumber string) (string, error) {
	code, err := enums.ParseCarrier(carrier)
	if err != nil {
		return "", unsupportedCarrier(carrier)
	}
	template, ok := trackingURLTemplates[code]
	if !ok {
		return "", unsupportedCarrier(carrier)
	}
	number := strings.TrimSpace(trackingNumber)
	if number == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, MsgTrackingNumberRequired).
			WithDetails(map[string]string{"trackingNumber": MsgTrackingNumberRequired})
	}
	return fmt.Sprintf(template, url.QueryEscape(number)), nil
}

func unsupportedCarrier(carrier string) error {
	msg := fmt.Sprintf("Carrier %q is not supported.", strings.TrimSpace(carrier))
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails(map[string]string{"carrier": msg})
}
