package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// OrderEventArgs carries a snapshot of the order at the time the event was
// published, so the worker never needs to query the database. Only one job
// per order id and event is ever enqueued.
type OrderEventArgs struct {
	Event           string `json:"event" river:"unique"`
	OrderID         string `json:"order_id" river:"unique"`
	Email           string `json:"email"`
	CompanyName     string `json:"company_name"`
	PackageType     string `json:"package_type"`
	NumberOfDomains int    `json:"number_of_domains"`
	TotalAccounts   int    `json:"total_accounts"`
	StoredAccounts  int    `json:"stored_accounts"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (OrderEventArgs) Kind() string { return string(domain.EventOrderMaterialized) }

// InsertOpts deduplicates repeated publishes for the same order.
func (OrderEventArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{UniqueOpts: river.UniqueOpts{ByArgs: true}}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues an order event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, order domain.Order) error {
	_, err := p.client.Insert(ctx, OrderEventArgs{
		Event:           string(event),
		OrderID:         order.ID,
		Email:           order.Customer.Email,
		CompanyName:     order.Customer.CompanyName,
		PackageType:     string(order.PackageType),
		NumberOfDomains: order.NumberOfDomains,
		TotalAccounts:   order.TotalAccounts,
		StoredAccounts:  len(order.Accounts),
		AmountTotal:     order.AmountTotal,
		Currency:        order.Currency,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
