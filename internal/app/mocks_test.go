package app_test

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/neomorfeo/sendstack/internal/domain"
)

var discardLogger = slog.New(slog.DiscardHandler)

// --- Mocks ---

type mockRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	createErr error
	existsErr error
	creates   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: make(map[string]domain.Order)}
}

func (m *mockRepo) Create(_ context.Context, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.orders[o.ID]; ok {
		return domain.ErrOrderExists
	}
	m.orders[o.ID] = o
	m.creates++
	return nil
}

func (m *mockRepo) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.orders[id]
	return ok, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockRepo) Lookup(_ context.Context, q domain.LookupQuery) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if q.Email != "" && !strings.EqualFold(o.Customer.Email, q.Email) {
			continue
		}
		if q.OrderRef != "" && q.Email == "" && o.ID != q.OrderRef {
			continue
		}
		if q.OrderRef != "" && !strings.Contains(o.ID, q.OrderRef) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockRepo) List(_ context.Context, f domain.ListFilter) ([]domain.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateProgress(_ context.Context, id string, u domain.ProgressUpdate, at time.Time) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	o.Status, o.ProgressPercentage, o.ProgressStatus = u.Status, u.ProgressPercentage, u.ProgressStatus
	o.UpdatedAt = at
	m.orders[id] = o
	return o, nil
}

type mockPayloads struct {
	mu      sync.Mutex
	items   map[string]domain.TransientPayload
	putErr  error
	getErr  error
	deleted []string
}

func newMockPayloads() *mockPayloads {
	return &mockPayloads{items: make(map[string]domain.TransientPayload)}
}

func (m *mockPayloads) Put(_ context.Context, p domain.TransientPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.items[p.SessionKey] = p
	return nil
}

func (m *mockPayloads) Get(_ context.Context, key string) (domain.TransientPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.TransientPayload{}, m.getErr
	}
	p, ok := m.items[key]
	if !ok {
		return domain.TransientPayload{}, domain.ErrPayloadNotFound
	}
	return p, nil
}

func (m *mockPayloads) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockPayloads) PurgeExpired(context.Context, time.Time) (int, error) { return 0, nil }

type publishedEvent struct {
	event domain.Event
	order domain.Order
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, o domain.Order) error {
	m.events = append(m.events, publishedEvent{event: e, order: o})
	return m.err
}

type mockGateway struct {
	customerErr  error
	createErr    error
	sessionErr   error
	subErr       error
	session      domain.SessionDetails
	subscription domain.SubscriptionDetails
	requests     []domain.CheckoutRequest
}

func (m *mockGateway) FindOrCreateCustomer(_ context.Context, email, _ string) (string, error) {
	if m.customerErr != nil {
		return "", m.customerErr
	}
	return "cus_" + email, nil
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	m.requests = append(m.requests, req)
	if m.createErr != nil {
		return domain.CheckoutSession{}, m.createErr
	}
	return domain.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (m *mockGateway) GetSession(_ context.Context, id string) (domain.SessionDetails, error) {
	if m.sessionErr != nil {
		return domain.SessionDetails{}, m.sessionErr
	}
	s := m.session
	s.ID = id
	return s, nil
}

func (m *mockGateway) GetSubscription(_ context.Context, id string) (domain.SubscriptionDetails, error) {
	if m.subErr != nil {
		return domain.SubscriptionDetails{}, m.subErr
	}
	s := m.subscription
	s.ID = id
	return s, nil
}

// mockVerifier accepts signature "valid" and decodes nothing: it returns event.
type mockVerifier struct {
	event domain.PaymentEvent
}

func (m *mockVerifier) Verify(_ []byte, sig string) (domain.PaymentEvent, error) {
	if sig != "valid" {
		return domain.PaymentEvent{}, domain.ErrInvalidSignature
	}
	return m.event, nil
}

// mockResolver answers from a fixed table; unknown hosts are NXDOMAIN.
type mockResolver struct {
	mu      sync.Mutex
	taken   []string
	failing []string
	calls   []string
}

func (m *mockResolver) Resolve(_ context.Context, host string) (domain.ResolveStatus, error) {
	m.mu.Lock()
	m.calls = append(m.calls, host)
	m.mu.Unlock()
	if slices.Contains(m.failing, host) {
		return 0, errors.New("servfail")
	}
	if slices.Contains(m.taken, host) {
		return domain.Resolved, nil
	}
	return domain.NoSuchName, nil
}
