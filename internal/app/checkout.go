package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"
)

// CheckoutConfig holds the gateway settings the checkout builder needs.
type CheckoutConfig struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
	PayloadTTL time.Duration
}

// CheckoutResult is the redirect handed back to the browser. Degraded is set
// when a best-effort step failed and the checkout went ahead without it.
type CheckoutResult struct {
	SessionID string
	URL       string
	Degraded  bool
}

// CheckoutService turns a validated intake submission into a hosted checkout.
type CheckoutService struct {
	gateway  domain.PaymentGateway
	payloads domain.PayloadStore
	clock    clock.Clock
	logger   *slog.Logger
	cfg      CheckoutConfig
}

// NewCheckoutService creates a checkout builder. A zero PayloadTTL means domain.PayloadTTL.
func NewCheckoutService(gateway domain.PaymentGateway, payloads domain.PayloadStore, clk clock.Clock, logger *slog.Logger, cfg CheckoutConfig) *CheckoutService {
	if cfg.PayloadTTL <= 0 {
		cfg.PayloadTTL = domain.PayloadTTL
	}
	return &CheckoutService{
		gateway:  gateway,
		payloads: payloads,
		clock:    clk,
		logger:   logger,
		cfg:      cfg,
	}
}

// Create registers a checkout session for sub. Only a failure to create the
// session itself is returned; customer lookup and payload storage failures
// are logged and mark the result degraded.
func (s *CheckoutService) Create(ctx context.Context, sub intake.Submission) (CheckoutResult, error) {
	var result CheckoutResult
	contact := sub.Form.Contact

	customerID, err := s.gateway.FindOrCreateCustomer(ctx, contact.Email, contact.FirstName+" "+contact.LastName)
	if err != nil {
		s.logger.WarnContext(ctx, "customer lookup failed, continuing with email only",
			slog.String("email", contact.Email),
			slog.String("error", err.Error()),
		)
		customerID = ""
		result.Degraded = true
	}

	req := domain.CheckoutRequest{
		PriceID:    s.cfg.PriceID,
		Quantity:   int64(sub.Form.NumberOfDomains),
		Metadata:   BuildMetadata(sub).Map(),
		CustomerID: customerID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	}
	if customerID == "" {
		req.CustomerEmail = contact.Email
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return CheckoutResult{}, &domain.CheckoutError{Stage: "create session", Err: err}
	}
	result.SessionID = session.ID
	result.URL = session.URL

	payload := domain.IntakePayload{Accounts: sub.Accounts, Domains: sub.Domains}
	if !sub.Form.DNS.IsZero() {
		dns := sub.Form.DNS
		payload.DNS = &dns
	}
	if payload.IsEmpty() {
		return result, nil
	}

	err = s.payloads.Put(ctx, domain.TransientPayload{
		SessionKey: session.ID,
		Payload:    payload,
		ExpiresAt:  s.clock.Now().Add(s.cfg.PayloadTTL),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "storing intake payload failed, order will lack identities",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		result.Degraded = true
	}
	return result, nil
}

// BuildMetadata flattens the scalar intake fields into bounded gateway
// metadata. Account identities and the DNS password never go here.
func BuildMetadata(sub intake.Submission) *domain.Metadata {
	f := sub.Form
	m := domain.NewMetadata()
	m.Set(domain.MetaFirstName, f.Contact.FirstName)
	m.Set(domain.MetaLastName, f.Contact.LastName)
	m.Set(domain.MetaEmail, f.Contact.Email)
	m.Set(domain.MetaPhone, f.Contact.Phone)
	m.Set(domain.MetaCompanyName, f.Company.Name)
	m.Set(domain.MetaWebsite, f.Company.Website)
	m.Set(domain.MetaPackageType, string(f.PackageType))
	m.Set(domain.MetaNumberOfDomains, strconv.Itoa(f.NumberOfDomains))
	m.Set(domain.MetaDomains, strings.Join(sub.Domains, ","))
	m.Set(domain.MetaDNSProvider, f.DNS.Provider)
	m.Set(domain.MetaDNSUsername, f.DNS.Username)
	m.Set(domain.MetaAccountsCount, strconv.Itoa(len(sub.Accounts)))
	return m
}
