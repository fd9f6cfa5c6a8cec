package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// Outcome reports what a webhook delivery did.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeCreated   Outcome = "created"
)

// OrderMaterializer creates the durable order for a confirmed payment.
// Deliveries are idempotent: replaying an event for an existing order is a
// successful no-op.
type OrderMaterializer struct {
	verifier  domain.EventVerifier
	gateway   domain.PaymentGateway
	orders    domain.OrderRepository
	payloads  domain.PayloadStore
	publisher domain.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewOrderMaterializer creates a materializer with the given adapters.
func NewOrderMaterializer(
	verifier domain.EventVerifier,
	gateway domain.PaymentGateway,
	orders domain.OrderRepository,
	payloads domain.PayloadStore,
	publisher domain.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) *OrderMaterializer {
	return &OrderMaterializer{
		verifier:  verifier,
		gateway:   gateway,
		orders:    orders,
		payloads:  payloads,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// HandleEvent verifies and applies one webhook delivery. Signature failures
// wrap domain.ErrInvalidSignature; any other error means nothing was
// persisted and the delivery should be retried.
func (m *OrderMaterializer) HandleEvent(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	event, err := m.verifier.Verify(payload, signature)
	if err != nil {
		return "", err
	}
	if event.Type != domain.EventCheckoutCompleted {
		return OutcomeIgnored, nil
	}
	if event.SessionID == "" {
		m.logger.WarnContext(ctx, "checkout event without session id", slog.String("event_id", event.ID))
		return OutcomeIgnored, nil
	}
	log := m.logger.With(slog.String("session_id", event.SessionID))

	exists, err := m.orders.Exists(ctx, event.SessionID)
	if err != nil {
		return "", fmt.Errorf("checking existing order: %w", err)
	}
	if exists {
		log.InfoContext(ctx, "duplicate checkout delivery")
		return OutcomeDuplicate, nil
	}

	session, err := m.gateway.GetSession(ctx, event.SessionID)
	if err != nil {
		return "", fmt.Errorf("fetching checkout session: %w", err)
	}
	billing := domain.Billing{
		PaymentStatus:  session.PaymentStatus,
		CustomerID:     session.CustomerID,
		SubscriptionID: session.SubscriptionID,
	}
	if session.SubscriptionID != "" {
		sub, err := m.gateway.GetSubscription(ctx, session.SubscriptionID)
		if err != nil {
			return "", fmt.Errorf("fetching subscription: %w", err)
		}
		billing.SubscriptionStatus = sub.Status
		if !sub.CurrentPeriodEnd.IsZero() {
			end := sub.CurrentPeriodEnd.UTC()
			billing.CurrentPeriodEnd = &end
		}
	}

	stash, found, err := m.readPayload(ctx, log, event.SessionID)
	if err != nil {
		return "", err
	}

	order := domain.NewOrder(buildOrderParams(event, session, billing, stash, m.clock))
	if err := m.orders.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderExists) {
			log.InfoContext(ctx, "concurrent delivery already created the order")
			return OutcomeDuplicate, nil
		}
		return "", fmt.Errorf("creating order: %w", err)
	}

	if found {
		if err := m.payloads.Delete(ctx, event.SessionID); err != nil {
			log.WarnContext(ctx, "deleting intake payload failed", slog.String("error", err.Error()))
		}
	}
	if err := m.publisher.Publish(ctx, domain.EventOrderMaterialized, order); err != nil {
		log.WarnContext(ctx, "publishing order event failed", slog.String("error", err.Error()))
	}

	log.InfoContext(ctx, "order materialized",
		slog.Int("number_of_domains", order.NumberOfDomains),
		slog.Int("accounts", len(order.Accounts)),
	)
	return OutcomeCreated, nil
}

// readPayload returns the stashed intake payload. Absence is expected and
// yields found=false; any other read failure is returned so the delivery is
// retried before the order exists.
func (m *OrderMaterializer) readPayload(ctx context.Context, log *slog.Logger, key string) (domain.IntakePayload, bool, error) {
	stash, err := m.payloads.Get(ctx, key)
	switch {
	case err == nil:
		return stash.Payload, true, nil
	case errors.Is(err, domain.ErrPayloadNotFound):
		log.InfoContext(ctx, "no intake payload for session, identities must be supplied later")
		return domain.IntakePayload{}, false, nil
	default:
		return domain.IntakePayload{}, false, fmt.Errorf("reading intake payload: %w", err)
	}
}

func buildOrderParams(event domain.PaymentEvent, session domain.SessionDetails, billing domain.Billing, stash domain.IntakePayload, clk clock.Clock) domain.NewOrderParams {
	meta := event.Metadata
	if len(meta) == 0 {
		meta = session.Metadata
	}

	email := meta[domain.MetaEmail]
	if email == "" {
		email = event.CustomerEmail
	}
	if email == "" {
		email = session.CustomerEmail
	}

	numberOfDomains, err := strconv.Atoi(meta[domain.MetaNumberOfDomains])
	if err != nil || numberOfDomains <= 0 {
		numberOfDomains = int(session.Quantity)
	}

	domains := stash.Domains
	if len(domains) == 0 {
		domains = splitDomains(meta[domain.MetaDomains])
	}

	dns := domain.DNSCredentials{
		Provider: meta[domain.MetaDNSProvider],
		Username: meta[domain.MetaDNSUsername],
	}
	if stash.DNS != nil {
		dns = *stash.DNS
	}

	amount, currency := event.AmountTotal, event.Currency
	if amount == 0 {
		amount = session.AmountTotal
	}
	if currency == "" {
		currency = session.Currency
	}

	return domain.NewOrderParams{
		ID: event.SessionID,
		Customer: domain.Customer{
			FirstName:   meta[domain.MetaFirstName],
			LastName:    meta[domain.MetaLastName],
			Email:       email,
			Phone:       meta[domain.MetaPhone],
			CompanyName: meta[domain.MetaCompanyName],
			Website:     meta[domain.MetaWebsite],
		},
		PackageType:     domain.PackageType(meta[domain.MetaPackageType]),
		NumberOfDomains: numberOfDomains,
		Quantity:        session.Quantity,
		AmountTotal:     amount,
		Currency:        currency,
		Domains:         domains,
		Accounts:        stash.Accounts,
		DNS:             dns,
		Billing:         billing,
		Now:             clk.Now(),
	}
}

// splitDomains parses the comma-joined metadata list. A truncated value loses
// its last, partial entry.
func splitDomains(v string) []string {
	if v == "" {
		return nil
	}
	truncated := strings.HasSuffix(v, domain.EllipsisMarker)
	parts := strings.Split(strings.TrimSuffix(v, domain.EllipsisMarker), ",")
	if truncated {
		parts = parts[:len(parts)-1]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
