package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderService serves the order lookup page and the administrative console.
type OrderService struct {
	repo  domain.OrderRepository
	clock clock.Clock
}

// NewOrderService creates a service backed by repo.
func NewOrderService(repo domain.OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{repo: repo, clock: clk}
}

// Lookup finds orders for the public lookup page. An order id alone must
// match exactly; with an email it may be partial.
func (s *OrderService) Lookup(ctx context.Context, email, orderRef string) ([]domain.Order, error) {
	q := domain.LookupQuery{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		OrderRef: strings.TrimSpace(orderRef),
	}
	if q.Email == "" && q.OrderRef == "" {
		return nil, domain.ErrInvalidLookup
	}
	return s.repo.Lookup(ctx, q)
}

// GetByID returns an order by its id.
func (s *OrderService) GetByID(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of orders and the total number of matches.
func (s *OrderService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Order, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	filter.Limit = min(filter.Limit, maxPageSize)
	filter.Offset = max(filter.Offset, 0)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

// UpdateProgress stores status, percentage and label together. The values
// are not required to agree with each other.
func (s *OrderService) UpdateProgress(ctx context.Context, id string, update domain.ProgressUpdate) (domain.Order, error) {
	if err := update.Validate(); err != nil {
		return domain.Order{}, err
	}
	return s.repo.UpdateProgress(ctx, id, update, s.clock.Now())
}

// AccountsCSV exports the stored account identities of one order.
func (s *OrderService) AccountsCSV(ctx context.Context, id string) ([]byte, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"first_name", "last_name", "login"}); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, a := range order.Accounts {
		if err := w.Write([]string{a.FirstName, a.LastName, a.Login}); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
