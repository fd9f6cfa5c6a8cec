package http

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/sendstack/internal/adapter/jwttoken"
	"github.com/neomorfeo/sendstack/internal/adapter/metrics"
	"github.com/neomorfeo/sendstack/internal/app"
	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"
)

// Services bundles everything the HTTP surface calls into.
type Services struct {
	Probe        *app.AvailabilityProbe
	Checkout     *app.CheckoutService
	Materializer *app.OrderMaterializer
	Orders       *app.OrderService
	Generator    *credentials.Generator
	Validator    *intake.Validator
	Navigator    intake.Navigator
	Tokens       *jwttoken.Service
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// Register adds all public, checkout, webhook and admin routes to the Huma API.
func Register(api huma.API, svc Services) {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}
	registerPublic(api, svc)
	registerCheckout(api, svc)
	registerAdmin(api, svc)
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return huma.Error404NotFound("order not found")
	case errors.Is(err, domain.ErrOrderExists):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrInvalidLookup),
		errors.Is(err, domain.ErrInvalidQuery):
		return huma.Error400BadRequest(err.Error())
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return huma.Error422UnprocessableEntity(
			fmt.Sprintf("step %d is invalid", valErr.Step),
			fieldDetails(valErr.Fields)...,
		)
	}

	var progErr *domain.ProgressError
	if errors.As(err, &progErr) {
		return huma.Error422UnprocessableEntity(progErr.Error(), &huma.ErrorDetail{
			Location: "body." + progErr.Field,
			Message:  progErr.Reason,
		})
	}

	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		return huma.Error422UnprocessableEntity(stepErr.Error())
	}

	var coErr *domain.CheckoutError
	if errors.As(err, &coErr) {
		return huma.Error502BadGateway("payment gateway unavailable")
	}

	return huma.Error500InternalServerError("internal server error")
}

func fieldDetails(fields map[string]string) []error {
	details := make([]error, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		details = append(details, &huma.ErrorDetail{Location: "body." + k, Message: fields[k]})
	}
	return details
}
