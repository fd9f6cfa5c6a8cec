// Package stripe adapts the Stripe API to the payment gateway ports.
package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// Compile-time check: Gateway implements domain.PaymentGateway.
var _ domain.PaymentGateway = (*Gateway)(nil)

// Gateway implements domain.PaymentGateway with subscription-mode checkout sessions.
type Gateway struct {
	api *client.API
}

// NewGateway creates a gateway for secretKey. A nil backends uses Stripe's
// production endpoints.
func NewGateway(secretKey string, backends *stripe.Backends) *Gateway {
	return &Gateway{api: client.New(secretKey, backends)}
}

// FindOrCreateCustomer returns the first customer with email, creating one
// when none exists.
func (g *Gateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(email)}
	list.Context = ctx
	list.Limit = stripe.Int64(1)

	iter := g.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("listing customers: %w", err)
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	if name != "" {
		params.Name = stripe.String(name)
	}
	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("creating customer: %w", err)
	}
	return c.ID, nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(req.Quantity),
		}},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("creating checkout session: %w", err)
	}
	return domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// GetSession re-fetches a session with its line items expanded.
func (g *Gateway) GetSession(ctx context.Context, id string) (domain.SessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return domain.SessionDetails{}, fmt.Errorf("fetching checkout session %s: %w", id, err)
	}
	return sessionDetails(s), nil
}

func (g *Gateway) GetSubscription(ctx context.Context, id string) (domain.SubscriptionDetails, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(id, params)
	if err != nil {
		return domain.SubscriptionDetails{}, fmt.Errorf("fetching subscription %s: %w", id, err)
	}
	out := domain.SubscriptionDetails{ID: sub.ID, Status: string(sub.Status)}
	if sub.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	return out, nil
}

func sessionDetails(s *stripe.CheckoutSession) domain.SessionDetails {
	d := domain.SessionDetails{
		ID:            s.ID,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.Customer != nil {
		d.CustomerID = s.Customer.ID
	}
	if d.CustomerEmail == "" && s.CustomerDetails != nil {
		d.CustomerEmail = s.CustomerDetails.Email
	}
	if s.Subscription != nil {
		d.SubscriptionID = s.Subscription.ID
	}
	if s.LineItems != nil {
		for _, item := range s.LineItems.Data {
			d.Quantity += item.Quantity
		}
	}
	return d
}
