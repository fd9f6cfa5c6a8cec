package domain

import "time"

// AccountsPerDomain is the fixed number of mailbox identities provisioned per domain.
const AccountsPerDomain = 50

// MaxDomains bounds how many domains a single order may carry.
const MaxDomains = 100

// PackageType selects where an order's domains come from.
type PackageType string

const (
	// PackageBYOD means the customer brings existing domains.
	PackageBYOD PackageType = "byod"
	// PackageFull means new domains are selected and registered through the service.
	PackageFull PackageType = "full-package"
)

// Valid reports whether p is a known package type.
func (p PackageType) Valid() bool {
	return p == PackageBYOD || p == PackageFull
}

// OrderStatus is the fulfillment state shown to customers and administrators.
type OrderStatus string

const (
	StatusInReview   OrderStatus = "in-review"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusFailed     OrderStatus = "failed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusOnHold     OrderStatus = "on-hold"
)

// OrderStatuses lists every status an administrator may assign.
// There is deliberately no transition graph: any status may follow any other.
var OrderStatuses = []OrderStatus{
	StatusInReview,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
	StatusOnHold,
}

// Valid reports whether s is one of OrderStatuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// InitialProgressStatus is the progress label every new order starts with.
const InitialProgressStatus = "Order received"

// AccountIdentity is one mailbox to provision. Login is a bare username until
// the intake boundary completes it with a domain.
type AccountIdentity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     string `json:"login"`
}

// IsBlank reports whether every field of the identity is empty.
func (a AccountIdentity) IsBlank() bool {
	return a.FirstName == "" && a.LastName == "" && a.Login == ""
}

// DNSCredentials grant the fulfillment team access to a BYOD customer's DNS provider.
type DNSCredentials struct {
	Provider string `json:"provider"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// IsZero reports whether no credential field is set.
func (c DNSCredentials) IsZero() bool {
	return c.Provider == "" && c.Username == "" && c.Password == ""
}

// Customer holds the contact details captured by the intake wizard.
type Customer struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	CompanyName string
	Website     string
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// Billing carries payment and subscription metadata copied from the gateway.
type Billing struct {
	PaymentStatus      string
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string
	CurrentPeriodEnd   *time.Time
}

// Order is the durable record of a paid intake. It is created once when the
// payment is confirmed and afterwards only its status and progress change.
type Order struct {
	ID                 string
	Customer           Customer
	PackageType        PackageType
	NumberOfDomains    int
	AccountsPerDomain  int
	TotalAccounts      int
	AmountTotal        int64
	Currency           string
	PricePerDomain     int64
	Domains            []string
	Accounts           []AccountIdentity
	DNS                DNSCredentials
	Status             OrderStatus
	ProgressPercentage int
	ProgressStatus     string
	Billing            Billing
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrderParams is everything the materializer knows about a confirmed payment.
type NewOrderParams struct {
	ID              string
	Customer        Customer
	PackageType     PackageType
	NumberOfDomains int
	Quantity        int64
	AmountTotal     int64
	Currency        string
	Domains         []string
	Accounts        []AccountIdentity
	DNS             DNSCredentials
	Billing         Billing
	Now             time.Time
}

// NewOrder builds an order in the initial "in-review" state and computes the
// derived billing fields.
func NewOrder(p NewOrderParams) Order {
	now := p.Now.UTC()
	return Order{
		ID:                 p.ID,
		Customer:           p.Customer,
		PackageType:        p.PackageType,
		NumberOfDomains:    p.NumberOfDomains,
		AccountsPerDomain:  AccountsPerDomain,
		TotalAccounts:      TotalAccounts(p.NumberOfDomains),
		AmountTotal:        p.AmountTotal,
		Currency:           p.Currency,
		PricePerDomain:     PricePerDomain(p.AmountTotal, p.Quantity),
		Domains:            p.Domains,
		Accounts:           p.Accounts,
		DNS:                p.DNS,
		Status:             StatusInReview,
		ProgressPercentage: 0,
		ProgressStatus:     InitialProgressStatus,
		Billing:            p.Billing,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// TotalAccounts is the number of mailboxes an order with n domains provisions.
func TotalAccounts(numberOfDomains int) int {
	return numberOfDomains * AccountsPerDomain
}

// PricePerDomain divides the charged amount by the purchased quantity using
// integer division. A zero quantity yields zero.
func PricePerDomain(amountTotal, quantity int64) int64 {
	if quantity <= 0 {
		return 0
	}
	return amountTotal / quantity
}

// ProgressUpdate is the only mutation allowed on a stored order.
type ProgressUpdate struct {
	Status             OrderStatus
	ProgressPercentage int
	ProgressStatus     string
}

// MaxProgressStatusLength bounds the free-text progress label.
const MaxProgressStatusLength = 200

// Validate checks each field on its own. Status and percentage are not
// required to agree with each other.
func (u ProgressUpdate) Validate() error {
	if !u.Status.Valid() {
		return &ProgressError{Field: "status", Reason: "unknown status " + string(u.Status)}
	}
	if u.ProgressPercentage < 0 || u.ProgressPercentage > 100 {
		return &ProgressError{Field: "progress_percentage", Reason: "must be between 0 and 100"}
	}
	if len([]rune(u.ProgressStatus)) > MaxProgressStatusLength {
		return &ProgressError{Field: "progress_status", Reason: "too long"}
	}
	return nil
}
