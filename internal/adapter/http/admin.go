package http

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/sendstack/internal/adapter/jwttoken"
	"github.com/neomorfeo/sendstack/internal/domain"
)

const bearerScheme = "adminBearer"

type adminSubjectKey struct{}

// --- List Orders ---

type ListOrdersInput struct {
	Search string `query:"q" required:"false" maxLength:"200" doc:"Free-text search over id, name, email and company"`
	Status string `query:"status" required:"false" doc:"Filter by exact status"`
	Limit  int    `query:"limit" required:"false" default:"20" minimum:"0" maximum:"100" doc:"Page size"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListOrdersOutput struct {
	Body struct {
		Orders []AdminOrder `json:"orders"`
		Total  int          `json:"total" doc:"Matches before pagination"`
	}
}

// --- Get Order ---

type GetOrderInput struct {
	ID string `path:"id" doc:"Order ID"`
}

type GetOrderOutput struct {
	Body AdminOrder
}

// --- Update Progress ---

type UpdateProgressInput struct {
	ID   string `path:"id" doc:"Order ID"`
	Body struct {
		Status             string `json:"status" enum:"in-review,processing,completed,failed,cancelled,on-hold"`
		ProgressPercentage int    `json:"progress_percentage" minimum:"0" maximum:"100"`
		ProgressStatus     string `json:"progress_status" maxLength:"200"`
	}
}

type UpdateProgressOutput struct {
	Body AdminOrder
}

// --- Accounts CSV ---

type AccountsCSVOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func registerAdmin(api huma.API, svc Services) {
	if oapi := api.OpenAPI(); oapi.Components != nil {
		if oapi.Components.SecuritySchemes == nil {
			oapi.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
		}
		oapi.Components.SecuritySchemes[bearerScheme] = &huma.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		}
	}
	guard := huma.Middlewares{requireAdmin(api, svc.Tokens)}
	security := []map[string][]string{{bearerScheme: {}}}

	huma.Register(api, huma.Operation{
		OperationID: "admin-list-orders",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/orders",
		Summary:     "List orders",
		Tags:        []string{"Admin"},
		Security:    security,
		Middlewares: guard,
	}, func(ctx context.Context, input *ListOrdersInput) (*ListOrdersOutput, error) {
		filter := domain.ListFilter{
			Search: input.Search,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.OrderStatus(input.Status)
			if !s.Valid() {
				return nil, huma.Error422UnprocessableEntity("unknown status " + input.Status)
			}
			filter.Status = &s
		}

		orders, total, err := svc.Orders.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &ListOrdersOutput{}
		out.Body.Orders = make([]AdminOrder, len(orders))
		for i, o := range orders {
			out.Body.Orders[i] = toAdminOrder(o)
		}
		out.Body.Total = total
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-get-order",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/orders/{id}",
		Summary:     "Get an order by ID",
		Tags:        []string{"Admin"},
		Security:    security,
		Middlewares: guard,
	}, func(ctx context.Context, input *GetOrderInput) (*GetOrderOutput, error) {
		order, err := svc.Orders.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetOrderOutput{Body: toAdminOrder(order)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-update-progress",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/orders/{id}",
		Summary:     "Set status and progress",
		Tags:        []string{"Admin"},
		Security:    security,
		Middlewares: guard,
	}, func(ctx context.Context, input *UpdateProgressInput) (*UpdateProgressOutput, error) {
		order, err := svc.Orders.UpdateProgress(ctx, input.ID, domain.ProgressUpdate{
			Status:             domain.OrderStatus(input.Body.Status),
			ProgressPercentage: input.Body.ProgressPercentage,
			ProgressStatus:     input.Body.ProgressStatus,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		subject, _ := ctx.Value(adminSubjectKey{}).(string)
		svc.Logger.InfoContext(ctx, "order progress updated",
			slog.String("order_id", order.ID),
			slog.String("status", string(order.Status)),
			slog.Int("progress_percentage", order.ProgressPercentage),
			slog.String("admin", subject),
		)
		return &UpdateProgressOutput{Body: toAdminOrder(order)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-export-accounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/orders/{id}/accounts.csv",
		Summary:     "Export stored account identities as CSV",
		Tags:        []string{"Admin"},
		Security:    security,
		Middlewares: guard,
	}, func(ctx context.Context, input *GetOrderInput) (*AccountsCSVOutput, error) {
		data, err := svc.Orders.AccountsCSV(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AccountsCSVOutput{
			ContentType:        "text/csv; charset=utf-8",
			ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": input.ID + "-accounts.csv"}),
			Body:               data,
		}, nil
	})
}

// requireAdmin rejects requests without a valid admin bearer token.
func requireAdmin(api huma.API, tokens *jwttoken.Service) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		if !ok || token == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next(huma.WithValue(ctx, adminSubjectKey{}, claims.Subject))
	}
}
