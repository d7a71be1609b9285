package checkout

import (
	"context"
	"errors"

	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
)

type stripeGateway struct {
	api *stripe.Client
}

// NewStripeGateway adapts Stripe hosted checkout sessions to Gateway. Calls
// authenticate with the client's secret key.
func NewStripeGateway(client *pkgstripe.Client) (Gateway, error) {
	if client == nil || client.API() == nil {
		return nil, errors.New("stripe client required")
	}
	return &stripeGateway{api: client.API()}, nil
}

func (g *stripeGateway) CreateSession(ctx context.Context, req PaymentSessionRequest) (*PaymentSessionHandle, error) {
	created, err := g.api.V1CheckoutSessions.Create(ctx, sessionParams(req))
	if err != nil {
		return nil, err
	}
	return &PaymentSessionHandle{ID: created.ID, URL: created.URL}, nil
}

func (g *stripeGateway) GetSession(ctx context.Context, id string) (*GatewaySession, error) {
	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("line_items")
	fetched, err := g.api.V1CheckoutSessions.Retrieve(ctx, id, params)
	if err != nil {
		return nil, err
	}
	return sessionFromStripe(fetched), nil
}

func (g *stripeGateway) ExpireSession(ctx context.Context, id string) error {
	_, err := g.api.V1CheckoutSessions.Expire(ctx, id, &stripe.CheckoutSessionExpireParams{})
	return err
}

// sessionParams is a pure function of req: a retried request must carry the
// same parameters as the first one under its idempotency key.
func sessionParams(req PaymentSessionRequest) *stripe.CheckoutSessionCreateParams {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ClientReference != "" {
		params.ClientReferenceID = stripe.String(req.ClientReference)
	}
	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(item.UnitAmountMinorUnits),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	return params
}

func sessionFromStripe(s *stripe.CheckoutSession) *GatewaySession {
	if s == nil {
		return nil
	}
	out := &GatewaySession{
		ID:              s.ID,
		Status:          string(s.Status),
		Paid:            s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Currency:        string(s.Currency),
		AmountTotal:     s.AmountTotal,
		CustomerEmail:   s.CustomerEmail,
		ClientReference: s.ClientReferenceID,
		Metadata:        s.Metadata,
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			if li == nil {
				continue
			}
			item := GatewayLineItem{
				Name:        li.Description,
				Quantity:    li.Quantity,
				AmountTotal: li.AmountTotal,
			}
			if li.Price != nil {
				item.UnitAmount = li.Price.UnitAmount
			}
			out.LineItems = append(out.LineItems, item)
		}
	}
	return out
}
