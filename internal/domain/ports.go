package domain

import (
	"context"
	"time"
)

// OrderRepository defines the persistence contract for orders.
type OrderRepository interface {
	// Create inserts a new order. It returns ErrOrderExists when the id is taken.
	Create(ctx context.Context, order Order) error
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (Order, error)
	Lookup(ctx context.Context, query LookupQuery) ([]Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int, error)
	UpdateProgress(ctx context.Context, id string, update ProgressUpdate, at time.Time) (Order, error)
}

// LookupQuery is the public order search: an exact or partial order id,
// an exact customer email, or both.
type LookupQuery struct {
	Email    string
	OrderRef string
}

// ListFilter holds optional criteria for the administrative listing.
type ListFilter struct {
	Search string
	Status *OrderStatus
	Limit  int
	Offset int
}

// PayloadStore is the short-lived side storage for intake payloads.
type PayloadStore interface {
	Put(ctx context.Context, payload TransientPayload) error
	// Get returns ErrPayloadNotFound when the key is absent or expired.
	Get(ctx context.Context, sessionKey string) (TransientPayload, error)
	Delete(ctx context.Context, sessionKey string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// Event names emitted after an order changes.
type Event string

const (
	EventOrderMaterialized Event = "order.materialized"
)

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, order Order) error
}

// PaymentGateway is the hosted-checkout collaborator.
type PaymentGateway interface {
	FindOrCreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetSession(ctx context.Context, id string) (SessionDetails, error)
	GetSubscription(ctx context.Context, id string) (SubscriptionDetails, error)
}

// EventVerifier authenticates and decodes a webhook delivery.
// It returns ErrInvalidSignature when the signature does not match.
type EventVerifier interface {
	Verify(payload []byte, signature string) (PaymentEvent, error)
}

// NameResolver asks the name-resolution service about one host.
type NameResolver interface {
	Resolve(ctx context.Context, host string) (ResolveStatus, error)
}
