package domain

import "time"

// PayloadTTL is how long a stashed intake payload stays readable.
const PayloadTTL = 24 * time.Hour

// IntakePayload is the part of an intake submission that does not fit in
// gateway metadata: the account identities, the full domain list and the
// DNS credentials.
type IntakePayload struct {
	Accounts []AccountIdentity `json:"accounts,omitempty"`
	Domains  []string          `json:"domains,omitempty"`
	DNS      *DNSCredentials   `json:"dns,omitempty"`
}

// IsEmpty reports whether there is nothing worth stashing.
func (p IntakePayload) IsEmpty() bool {
	return len(p.Accounts) == 0 && len(p.Domains) == 0 && (p.DNS == nil || p.DNS.IsZero())
}

// TransientPayload is an IntakePayload parked under a checkout session key
// until the paid order is materialized. An absent payload is an expected
// outcome, not a failure.
type TransientPayload struct {
	SessionKey string
	Payload    IntakePayload
	ExpiresAt  time.Time
}

// Expired reports whether the payload should be treated as deleted at now.
func (t TransientPayload) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
