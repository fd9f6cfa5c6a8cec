package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/neomorfeo/sendstack/internal/app"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

var webhookNow = time.Date(2026, 4, 2, 9, 5, 0, 0, time.UTC)

type materializerFixture struct {
	repo      *mockRepo
	payloads  *mockPayloads
	publisher *mockPublisher
	gateway   *mockGateway
	verifier  *mockVerifier
	svc       *app.OrderMaterializer
}

func newMaterializerFixture() *materializerFixture {
	f := &materializerFixture{
		repo:      newMockRepo(),
		payloads:  newMockPayloads(),
		publisher: &mockPublisher{},
		gateway: &mockGateway{
			session: domain.SessionDetails{
				Quantity:       3,
				PaymentStatus:  "paid",
				CustomerID:     "cus_1",
				SubscriptionID: "sub_1",
			},
			subscription: domain.SubscriptionDetails{
				Status:           "active",
				CurrentPeriodEnd: time.Date(2026, 5, 2, 9, 5, 0, 0, time.UTC),
			},
		},
		verifier: &mockVerifier{event: domain.PaymentEvent{
			ID:            "evt_1",
			Type:          domain.EventCheckoutCompleted,
			SessionID:     "cs_123",
			AmountTotal:   10000,
			Currency:      "usd",
			CustomerEmail: "jo@example.com",
			Metadata: map[string]string{
				domain.MetaFirstName:       "Jo",
				domain.MetaLastName:        "Lee",
				domain.MetaPackageType:     "byod",
				domain.MetaNumberOfDomains: "3",
				domain.MetaDomains:         "a.com,b.com,c.com",
				domain.MetaDNSProvider:     "cloudflare",
			},
		}},
	}
	f.svc = app.NewOrderMaterializer(f.verifier, f.gateway, f.repo, f.payloads, f.publisher, clock.NewFixed(webhookNow), discardLogger)
	return f
}

func TestMaterializer_CreatesOrder(t *testing.T) {
	f := newMaterializerFixture()
	f.payloads.items["cs_123"] = domain.TransientPayload{
		SessionKey: "cs_123",
		Payload: domain.IntakePayload{
			Accounts: []domain.AccountIdentity{{FirstName: "Jo", LastName: "Lee", Login: "jo.lee@a.com"}},
			DNS:      &domain.DNSCredentials{Provider: "cloudflare", Username: "jo", Password: "pw"},
		},
	}

	outcome, err := f.svc.HandleEvent(context.Background(), []byte("{}"), "valid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != app.OutcomeCreated {
		t.Fatalf("outcome = %q, want %q", outcome, app.OutcomeCreated)
	}

	o, err := f.repo.GetByID(context.Background(), "cs_123")
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if o.TotalAccounts != 150 {
		t.Errorf("TotalAccounts = %d, want 150", o.TotalAccounts)
	}
	if o.PricePerDomain != 3333 {
		t.Errorf("PricePerDomain = %d, want 3333", o.PricePerDomain)
	}
	if o.Customer.Email != "jo@example.com" {
		t.Errorf("Email = %q", o.Customer.Email)
	}
	if len(o.Domains) != 3 {
		t.Errorf("Domains = %v", o.Domains)
	}
	if len(o.Accounts) != 1 || o.DNS.Password != "pw" {
		t.Errorf("payload not applied: accounts=%d dns=%+v", len(o.Accounts), o.DNS)
	}
	if o.Billing.SubscriptionStatus != "active" || o.Billing.CurrentPeriodEnd == nil {
		t.Errorf("Billing = %+v", o.Billing)
	}
	if !o.CreatedAt.Equal(webhookNow) {
		t.Errorf("CreatedAt = %v", o.CreatedAt)
	}

	if len(f.payloads.deleted) != 1 || f.payloads.deleted[0] != "cs_123" {
		t.Errorf("payload deletes = %v", f.payloads.deleted)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].event != domain.EventOrderMaterialized {
		t.Errorf("events = %v", f.publisher.events)
	}
}

func TestMaterializer_DuplicateDelivery(t *testing.T) {
	f := newMaterializerFixture()
	ctx := context.Background()

	if _, err := f.svc.HandleEvent(ctx, nil, "valid"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	outcome, err := f.svc.HandleEvent(ctx, nil, "valid")
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if outcome != app.OutcomeDuplicate {
		t.Errorf("outcome = %q, want %q", outcome, app.OutcomeDuplicate)
	}
	if f.repo.creates != 1 {
		t.Errorf("creates = %d, want 1", f.repo.creates)
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("events = %d, want 1", len(f.publisher.events))
	}
}

func TestMaterializer_ConcurrentDeliveries(t *testing.T) {
	f := newMaterializerFixture()

	var wg sync.WaitGroup
	outcomes := make([]app.Outcome, 8)
	for i := range outcomes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.svc.HandleEvent(context.Background(), nil, "valid")
			if err != nil {
				t.Errorf("delivery %d: %v", i, err)
			}
			outcomes[i] = outcome
		}()
	}
	wg.Wait()

	if f.repo.creates != 1 {
		t.Fatalf("creates = %d, want 1", f.repo.creates)
	}
	created := 0
	for _, o := range outcomes {
		if o == app.OutcomeCreated {
			created++
		}
	}
	if created != 1 {
		t.Errorf("created outcomes = %d, want 1", created)
	}
}

func TestMaterializer_InvalidSignature(t *testing.T) {
	f := newMaterializerFixture()

	_, err := f.svc.HandleEvent(context.Background(), nil, "forged")
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if f.repo.creates != 0 {
		t.Error("nothing should be written")
	}
}

func TestMaterializer_IgnoresOtherEvents(t *testing.T) {
	f := newMaterializerFixture()
	f.verifier.event.Type = "invoice.paid"

	outcome, err := f.svc.HandleEvent(context.Background(), nil, "valid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != app.OutcomeIgnored {
		t.Errorf("outcome = %q, want %q", outcome, app.OutcomeIgnored)
	}
}

func TestMaterializer_MissingPayloadStillCreates(t *testing.T) {
	f := newMaterializerFixture()

	outcome, err := f.svc.HandleEvent(context.Background(), nil, "valid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != app.OutcomeCreated {
		t.Fatalf("outcome = %q", outcome)
	}
	o, _ := f.repo.GetByID(context.Background(), "cs_123")
	if len(o.Accounts) != 0 {
		t.Errorf("Accounts = %d, want 0", len(o.Accounts))
	}
	if o.DNS.Provider != "cloudflare" {
		t.Errorf("DNS provider from metadata = %q", o.DNS.Provider)
	}
	if len(f.payloads.deleted) != 0 {
		t.Error("nothing to delete when no payload was stashed")
	}
}

func TestMaterializer_RetryableFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *materializerFixture)
	}{
		{name: "existence check", setup: func(f *materializerFixture) { f.repo.existsErr = errors.New("db down") }},
		{name: "session fetch", setup: func(f *materializerFixture) { f.gateway.sessionErr = errors.New("timeout") }},
		{name: "subscription fetch", setup: func(f *materializerFixture) { f.gateway.subErr = errors.New("timeout") }},
		{name: "payload read", setup: func(f *materializerFixture) { f.payloads.getErr = errors.New("database is locked") }},
		{name: "insert", setup: func(f *materializerFixture) { f.repo.createErr = errors.New("disk I/O error") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMaterializerFixture()
			f.payloads.items["cs_123"] = domain.TransientPayload{SessionKey: "cs_123"}
			tt.setup(f)

			_, err := f.svc.HandleEvent(context.Background(), nil, "valid")
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, domain.ErrInvalidSignature) {
				t.Error("failure must not look like a signature error")
			}
			if _, ok := f.payloads.items["cs_123"]; !ok {
				t.Error("payload must survive for the retry")
			}
			if len(f.publisher.events) != 0 {
				t.Error("no event on failure")
			}
		})
	}
}

func TestMaterializer_PayloadReadFailureKeepsIdentitiesForRetry(t *testing.T) {
	f := newMaterializerFixture()
	f.payloads.items["cs_123"] = domain.TransientPayload{
		SessionKey: "cs_123",
		Payload: domain.IntakePayload{
			Accounts: []domain.AccountIdentity{{FirstName: "Jo", LastName: "Lee", Login: "jo.lee@a.com"}},
		},
	}
	f.payloads.getErr = errors.New("database is locked")

	if _, err := f.svc.HandleEvent(context.Background(), nil, "valid"); err == nil {
		t.Fatal("expected error on payload read failure")
	}
	if exists, _ := f.repo.Exists(context.Background(), "cs_123"); exists {
		t.Fatal("order must not be created without its payload")
	}

	f.payloads.getErr = nil
	outcome, err := f.svc.HandleEvent(context.Background(), nil, "valid")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if outcome != app.OutcomeCreated {
		t.Fatalf("outcome = %q, want %q", outcome, app.OutcomeCreated)
	}
	o, _ := f.repo.GetByID(context.Background(), "cs_123")
	if len(o.Accounts) != 1 {
		t.Errorf("Accounts = %d, want 1", len(o.Accounts))
	}
}

func TestMaterializer_PublishFailureIsNotFatal(t *testing.T) {
	f := newMaterializerFixture()
	f.publisher.err = errors.New("queue full")

	outcome, err := f.svc.HandleEvent(context.Background(), nil, "valid")
	if err != nil || outcome != app.OutcomeCreated {
		t.Fatalf("outcome = %q, err = %v", outcome, err)
	}
}

func TestMaterializer_FallbacksFromSession(t *testing.T) {
	f := newMaterializerFixture()
	f.verifier.event.Metadata = map[string]string{
		domain.MetaDomains: "a.com,b.com,trunc...",
	}
	f.gateway.session.SubscriptionID = ""
	f.gateway.session.Quantity = 0

	if _, err := f.svc.HandleEvent(context.Background(), nil, "valid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o, _ := f.repo.GetByID(context.Background(), "cs_123")
	if o.NumberOfDomains != 0 || o.PricePerDomain != 0 {
		t.Errorf("NumberOfDomains = %d, PricePerDomain = %d", o.NumberOfDomains, o.PricePerDomain)
	}
	if len(o.Domains) != 2 {
		t.Errorf("Domains = %v, want truncated tail dropped", o.Domains)
	}
	if o.Billing.SubscriptionStatus != "" || o.Billing.CurrentPeriodEnd != nil {
		t.Errorf("Billing = %+v", o.Billing)
	}
}
