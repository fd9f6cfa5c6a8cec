package domain

import "time"

// EventCheckoutCompleted is the only gateway event kind that materializes an order.
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutRequest is what the checkout builder asks the gateway to create.
type CheckoutRequest struct {
	PriceID       string
	Quantity      int64
	Metadata      map[string]string
	CustomerID    string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the gateway's handle for one pending purchase.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent is a verified webhook delivery from the gateway.
type PaymentEvent struct {
	ID            string
	Type          string
	SessionID     string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// SessionDetails is the re-fetched checkout session.
type SessionDetails struct {
	ID             string
	Quantity       int64
	AmountTotal    int64
	Currency       string
	CustomerID     string
	CustomerEmail  string
	PaymentStatus  string
	SubscriptionID string
	Metadata       map[string]string
}

// SubscriptionDetails describes the recurring billing behind a session.
type SubscriptionDetails struct {
	ID               string
	Status           string
	CurrentPeriodEnd time.Time
}
