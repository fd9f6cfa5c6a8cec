package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// Compile-time check: Verifier implements domain.EventVerifier.
var _ domain.EventVerifier = (*Verifier)(nil)

// Verifier checks the Stripe-Signature header against the endpoint secret.
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for one webhook endpoint secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify authenticates payload and decodes it. Checkout session events carry
// the session fields; other kinds only their id and type.
func (v *Verifier) Verify(payload []byte, signature string) (domain.PaymentEvent, error) {
	if signature == "" {
		return domain.PaymentEvent{}, fmt.Errorf("%w: missing signature header", domain.ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := domain.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != domain.EventCheckoutCompleted {
		return out, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("decoding checkout session: %w", err)
	}
	out.SessionID = session.ID
	out.AmountTotal = session.AmountTotal
	out.Currency = string(session.Currency)
	out.CustomerEmail = session.CustomerEmail
	if out.CustomerEmail == "" && session.CustomerDetails != nil {
		out.CustomerEmail = session.CustomerDetails.Email
	}
	out.Metadata = session.Metadata
	return out, nil
}
