package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"
)

// --- Checkout ---

type CreateCheckoutInput struct {
	Body struct {
		Form     FormBody      `json:"form"`
		Accounts []AccountBody `json:"accounts,omitempty"`
	}
}

type CreateCheckoutOutput struct {
	Body struct {
		SessionID string `json:"session_id" doc:"Checkout session key; becomes the order id"`
		URL       string `json:"url" doc:"Hosted payment page to redirect to"`
	}
}

// --- Webhook ---

type WebhookInput struct {
	Signature string `header:"Stripe-Signature" doc:"Gateway signature header"`
	RawBody   []byte
}

type WebhookOutput struct {
	Body struct {
		Received bool   `json:"received"`
		Outcome  string `json:"outcome" enum:"created,duplicate,ignored"`
	}
}

func registerCheckout(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-checkout",
		Method:      http.MethodPost,
		Path:        "/api/v1/checkout",
		Summary:     "Validate an intake and open a hosted checkout",
		Tags:        []string{"Checkout"},
	}, func(ctx context.Context, input *CreateCheckoutInput) (*CreateCheckoutOutput, error) {
		sub, err := intake.Replay(ctx, svc.Navigator, svc.Generator, svc.Validator,
			input.Body.Form.toForm(), toAccounts(input.Body.Accounts))
		if err != nil {
			return nil, toHumaError(err)
		}

		result, err := svc.Checkout.Create(ctx, sub)
		if err != nil {
			svc.Logger.ErrorContext(ctx, "checkout failed",
				slog.String("email", sub.Form.Contact.Email),
				slog.String("error", err.Error()),
			)
			return nil, toHumaError(err)
		}
		svc.Metrics.ObserveCheckout(result.Degraded)

		out := &CreateCheckoutOutput{}
		out.Body.SessionID = result.SessionID
		out.Body.URL = result.URL
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "stripe-webhook",
		Method:      http.MethodPost,
		Path:        "/api/v1/webhooks/stripe",
		Summary:     "Receive payment gateway events",
		Tags:        []string{"Webhooks"},
	}, func(ctx context.Context, input *WebhookInput) (*WebhookOutput, error) {
		outcome, err := svc.Materializer.HandleEvent(ctx, input.RawBody, input.Signature)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidSignature) {
				svc.Metrics.ObserveWebhook("rejected")
				return nil, toHumaError(err)
			}
			// Any non-2xx makes the gateway retry; the materializer is idempotent.
			svc.Metrics.ObserveWebhook("failed")
			svc.Logger.ErrorContext(ctx, "webhook processing failed", slog.String("error", err.Error()))
			return nil, huma.Error500InternalServerError("webhook processing failed")
		}
		svc.Metrics.ObserveWebhook(string(outcome))

		out := &WebhookOutput{}
		out.Body.Received = true
		out.Body.Outcome = string(outcome)
		return out, nil
	})
}
