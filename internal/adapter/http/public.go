package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"
)

// --- Availability ---

type AvailabilityInput struct {
	Query string `query:"q" required:"true" minLength:"1" maxLength:"253" doc:"Name or domain to check"`
}

type AvailabilityOutput struct {
	Body []AvailabilityBody
}

// --- Credentials ---

type GenerateCredentialsInput struct {
	Body struct {
		FirstName       string `json:"first_name" minLength:"1" maxLength:"100"`
		LastName        string `json:"last_name" minLength:"1" maxLength:"100"`
		NumberOfDomains int    `json:"number_of_domains" minimum:"1" maximum:"100"`
	}
}

type GenerateCredentialsOutput struct {
	Body struct {
		Accounts []AccountBody `json:"accounts"`
	}
}

// --- Step validation ---

type ValidateStepInput struct {
	Body struct {
		Step     int           `json:"step" minimum:"1" maximum:"5" doc:"Wizard step to validate"`
		Form     FormBody      `json:"form"`
		Accounts []AccountBody `json:"accounts,omitempty"`
	}
}

type ValidateStepOutput struct {
	Body struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors" doc:"Field to message; empty when valid"`
	}
}

// --- Order lookup ---

type LookupInput struct {
	Email   string `query:"email" required:"false" maxLength:"254" doc:"Customer email (exact)"`
	OrderID string `query:"order_id" required:"false" maxLength:"255" doc:"Order id; partial when combined with email"`
}

type LookupOutput struct {
	Body struct {
		Orders []PublicOrder `json:"orders"`
	}
}

func registerPublic(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "check-availability",
		Method:      http.MethodGet,
		Path:        "/api/v1/domains/availability",
		Summary:     "Check domain availability",
		Tags:        []string{"Intake"},
	}, func(ctx context.Context, input *AvailabilityInput) (*AvailabilityOutput, error) {
		results, err := svc.Probe.Check(ctx, input.Query)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &AvailabilityOutput{Body: make([]AvailabilityBody, len(results))}
		available := 0
		for i, r := range results {
			out.Body[i] = AvailabilityBody(r)
			if r.Available {
				available++
			}
		}
		svc.Metrics.ObserveAvailability(available, len(results)-available)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "generate-credentials",
		Method:      http.MethodPost,
		Path:        "/api/v1/credentials/generate",
		Summary:     "Generate mailbox identities from a name",
		Tags:        []string{"Intake"},
	}, func(_ context.Context, input *GenerateCredentialsInput) (*GenerateCredentialsOutput, error) {
		seed := credentials.Seed{FirstName: input.Body.FirstName, LastName: input.Body.LastName}
		rows := svc.Generator.Generate(seed, domain.TotalAccounts(input.Body.NumberOfDomains))

		out := &GenerateCredentialsOutput{}
		out.Body.Accounts = toAccountBodies(rows)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-intake-step",
		Method:      http.MethodPost,
		Path:        "/api/v1/intake/validate",
		Summary:     "Validate one wizard step",
		Tags:        []string{"Intake"},
	}, func(_ context.Context, input *ValidateStepInput) (*ValidateStepOutput, error) {
		fields := svc.Validator.Fields(intake.Step(input.Body.Step), input.Body.Form.toForm(), toAccounts(input.Body.Accounts))

		out := &ValidateStepOutput{}
		out.Body.Valid = len(fields) == 0
		out.Body.Errors = fields
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lookup-orders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/lookup",
		Summary:     "Look up orders by email and/or order id",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *LookupInput) (*LookupOutput, error) {
		orders, err := svc.Orders.Lookup(ctx, input.Email, input.OrderID)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &LookupOutput{}
		out.Body.Orders = make([]PublicOrder, len(orders))
		for i, o := range orders {
			out.Body.Orders[i] = toPublicOrder(o)
		}
		return out, nil
	})
}
