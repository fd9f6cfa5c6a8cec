package http

import (
	"time"

	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"
)

const timeLayout = "2006-01-02T15:04:05Z"

// AccountBody is one mailbox identity on the wire.
type AccountBody struct {
	FirstName string `json:"first_name,omitempty" doc:"Display first name"`
	LastName  string `json:"last_name,omitempty" doc:"Display last name"`
	Login     string `json:"login,omitempty" doc:"Mailbox username, optionally with @domain"`
}

func toAccountBodies(accounts []domain.AccountIdentity) []AccountBody {
	out := make([]AccountBody, len(accounts))
	for i, a := range accounts {
		out[i] = AccountBody(a)
	}
	return out
}

func toAccounts(bodies []AccountBody) []domain.AccountIdentity {
	out := make([]domain.AccountIdentity, len(bodies))
	for i, b := range bodies {
		out[i] = domain.AccountIdentity(b)
	}
	return out
}

// AvailabilityBody is one candidate verdict.
type AvailabilityBody struct {
	Domain    string `json:"domain" doc:"Candidate domain name"`
	Available bool   `json:"available" doc:"Whether the name looks unregistered"`
}

// DNSBody carries the BYOD customer's DNS provider login.
type DNSBody struct {
	Provider string `json:"provider,omitempty" doc:"DNS provider name"`
	Username string `json:"username,omitempty" doc:"DNS provider username"`
	Password string `json:"password,omitempty" doc:"DNS provider password"`
}

// FormBody is the browser-held intake form. Every field is optional on the
// wire so partially filled steps can be validated.
type FormBody struct {
	FirstName       string             `json:"first_name,omitempty"`
	LastName        string             `json:"last_name,omitempty"`
	Email           string             `json:"email,omitempty"`
	Phone           string             `json:"phone,omitempty"`
	CompanyName     string             `json:"company_name,omitempty"`
	Website         string             `json:"website,omitempty"`
	PackageType     string             `json:"package_type,omitempty" doc:"byod or full-package"`
	NumberOfDomains int                `json:"number_of_domains,omitempty"`
	CustomDomains   []string           `json:"custom_domains,omitempty" doc:"Domains the customer already owns (byod)"`
	SelectedDomains []string           `json:"selected_domains,omitempty" doc:"Domains picked from search results (full-package)"`
	SearchedDomains []AvailabilityBody `json:"searched_domains,omitempty"`
	DNS             *DNSBody           `json:"dns,omitempty"`
}

func (b FormBody) toForm() intake.Form {
	f := intake.Form{
		Contact: intake.Contact{
			FirstName: b.FirstName,
			LastName:  b.LastName,
			Email:     b.Email,
			Phone:     b.Phone,
		},
		Company: intake.Company{
			Name:    b.CompanyName,
			Website: b.Website,
		},
		PackageType:     domain.PackageType(b.PackageType),
		NumberOfDomains: b.NumberOfDomains,
		CustomDomains:   b.CustomDomains,
		SelectedDomains: b.SelectedDomains,
	}
	for _, r := range b.SearchedDomains {
		f.SearchedDomains = append(f.SearchedDomains, domain.AvailabilityResult(r))
	}
	if b.DNS != nil {
		f.DNS = domain.DNSCredentials(*b.DNS)
	}
	return f
}

// PublicOrder is the redacted projection served by the order lookup page.
type PublicOrder struct {
	ID                 string   `json:"id" doc:"Order id (checkout session key)"`
	CompanyName        string   `json:"company_name"`
	PackageType        string   `json:"package_type"`
	NumberOfDomains    int      `json:"number_of_domains"`
	TotalAccounts      int      `json:"total_accounts"`
	Domains            []string `json:"domains"`
	Status             string   `json:"status"`
	ProgressPercentage int      `json:"progress_percentage"`
	ProgressStatus     string   `json:"progress_status"`
	CreatedAt          string   `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt          string   `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toPublicOrder(o domain.Order) PublicOrder {
	return PublicOrder{
		ID:                 o.ID,
		CompanyName:        o.Customer.CompanyName,
		PackageType:        string(o.PackageType),
		NumberOfDomains:    o.NumberOfDomains,
		TotalAccounts:      o.TotalAccounts,
		Domains:            nonNil(o.Domains),
		Status:             string(o.Status),
		ProgressPercentage: o.ProgressPercentage,
		ProgressStatus:     o.ProgressStatus,
		CreatedAt:          o.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:          o.UpdatedAt.UTC().Format(timeLayout),
	}
}

// AdminOrder is the full order as the administrative console sees it.
// The DNS password is never returned.
type AdminOrder struct {
	PublicOrder
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Website            string  `json:"website"`
	AccountsPerDomain  int     `json:"accounts_per_domain"`
	StoredAccounts     int     `json:"stored_accounts" doc:"Identities captured at intake"`
	AmountTotal        int64   `json:"amount_total" doc:"Charged amount in minor currency units"`
	Currency           string  `json:"currency"`
	PricePerDomain     int64   `json:"price_per_domain"`
	DNSProvider        string  `json:"dns_provider,omitempty"`
	DNSUsername        string  `json:"dns_username,omitempty"`
	PaymentStatus      string  `json:"payment_status"`
	CustomerID         string  `json:"customer_id,omitempty"`
	SubscriptionID     string  `json:"subscription_id,omitempty"`
	SubscriptionStatus string  `json:"subscription_status,omitempty"`
	CurrentPeriodEnd   *string `json:"current_period_end,omitempty"`
}

func toAdminOrder(o domain.Order) AdminOrder {
	out := AdminOrder{
		PublicOrder:        toPublicOrder(o),
		FirstName:          o.Customer.FirstName,
		LastName:           o.Customer.LastName,
		Email:              o.Customer.Email,
		Phone:              o.Customer.Phone,
		Website:            o.Customer.Website,
		AccountsPerDomain:  o.AccountsPerDomain,
		StoredAccounts:     len(o.Accounts),
		AmountTotal:        o.AmountTotal,
		Currency:           o.Currency,
		PricePerDomain:     o.PricePerDomain,
		DNSProvider:        o.DNS.Provider,
		DNSUsername:        o.DNS.Username,
		PaymentStatus:      o.Billing.PaymentStatus,
		CustomerID:         o.Billing.CustomerID,
		SubscriptionID:     o.Billing.SubscriptionID,
		SubscriptionStatus: o.Billing.SubscriptionStatus,
	}
	if o.Billing.CurrentPeriodEnd != nil {
		end := o.Billing.CurrentPeriodEnd.UTC().Format(time.RFC3339)
		out.CurrentPeriodEnd = &end
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
