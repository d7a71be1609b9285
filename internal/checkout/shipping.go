package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ShippingDetails is the contact and delivery information captured on the checkout form.
type ShippingDetails struct {
	ShipTarget string `json:"shipTarget" validate:"required,max=200" msg_required:"Please enter a name to ship to"`
	Email      string `json:"email" validate:"required,email,max=200" msg_required:"Email is required" msg_email:"Please enter a valid email address"`
	Address    string `json:"address" validate:"required,max=200" msg_required:"Address is required"`
	City       string `json:"city" validate:"required,max=200" msg_required:"City is required"`
	Region     string `json:"region" validate:"required,max=200" msg_required:"Region/State is required"`
	PostalCode string `json:"postalCode" validate:"required,max=200" msg_required:"Postal Code is required"`
	Country    string `json:"country" validate:"required,max=200" msg_required:"Country is required"`
}

// Metadata keys carrying the shipping snapshot through the payment session.
const (
	metaShipTarget = "ship_target"
	metaEmail      = "email"
	metaAddress    = "address"
	metaCity       = "city"
	metaRegion     = "region"
	metaPostalCode = "postal_code"
	metaCountry    = "country"
	metaCartVer    = "cart_version"
)

func (d ShippingDetails) normalized() ShippingDetails {
	return ShippingDetails{
		ShipTarget: strings.TrimSpace(d.ShipTarget),
		Email:      strings.TrimSpace(d.Email),
		Address:    strings.TrimSpace(d.Address),
		City:       strings.TrimSpace(d.City),
		Region:     strings.TrimSpace(d.Region),
		PostalCode: strings.TrimSpace(d.PostalCode),
		Country:    strings.TrimSpace(d.Country),
	}
}

func (d ShippingDetails) metadata() map[string]string {
	return map[string]string{
		metaShipTarget: d.ShipTarget,
		metaEmail:      d.Email,
		metaAddress:    d.Address,
		metaCity:       d.City,
		metaRegion:     d.Region,
		metaPostalCode: d.PostalCode,
		metaCountry:    d.Country,
	}
}

func shippingFromMetadata(meta map[string]string) ShippingDetails {
	return ShippingDetails{
		ShipTarget: meta[metaShipTarget],
		Email:      meta[metaEmail],
		Address:    meta[metaAddress],
		City:       meta[metaCity],
		Region:     meta[metaRegion],
		PostalCode: meta[metaPostalCode],
		Country:    meta[metaCountry],
	}
}

// shippingFromCustomer pre-fills the form; missing profile fields become "".
func shippingFromCustomer(c *models.Customer) ShippingDetails {
	if c == nil {
		return ShippingDetails{}
	}
	return ShippingDetails{
		ShipTarget: deref(c.ContactName),
		Email:      deref(c.Email),
		Address:    deref(c.Address),
		City:       deref(c.City),
		Region:     deref(c.Region),
		PostalCode: deref(c.PostalCode),
		Country:    deref(c.Country),
	}
}

// fingerprint identifies one (session, cart version, shipping) submission.
func fingerprint(sessionID string, cartVersion int64, d ShippingDetails) string {
	h := sha256.New()
	for _, part := range []string{
		sessionID,
		strconv.FormatInt(cartVersion, 10),
		d.ShipTarget,
		strings.ToLower(d.Email),
		d.Address,
		d.City,
		d.Region,
		d.PostalCode,
		d.Country,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
