package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Gateway is the subset of the payment provider the league uses.
type Gateway interface {
	GetPrice(ctx context.Context, priceID string) (Price, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
}

type CheckoutRequest struct {
	PriceID    string
	UserID     string
	Email      string
	SuccessURL string
	CancelURL  string
}

// StripeGateway talks to the Stripe API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) GetPrice(ctx context.Context, priceID string) (Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	price, err := g.api.Prices.Get(priceID, params)
	if err != nil {
		return Price{}, err
	}
	if price.UnitAmount <= 0 {
		return Price{}, errors.New("price has no unit amount")
	}
	return Price{
		AmountCents: price.UnitAmount,
		Currency:    strings.ToLower(string(price.Currency)),
		Source:      PriceSourceProvider,
	}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, req.UserID)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}
