package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, order domain.Order) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("order.id", order.ID),
			attribute.String("order.package_type", string(order.PackageType)),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event, order)
	recordError(span, err)
	return err
}

// TracingResolver wraps a domain.NameResolver. One span per candidate host.
type TracingResolver struct {
	next   domain.NameResolver
	tracer trace.Tracer
}

var _ domain.NameResolver = (*TracingResolver)(nil)

func NewTracingResolver(next domain.NameResolver) *TracingResolver {
	return &TracingResolver{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingResolver) Resolve(ctx context.Context, host string) (domain.ResolveStatus, error) {
	ctx, span := r.tracer.Start(ctx, "NameResolver.Resolve",
		trace.WithAttributes(attribute.String("dns.host", host)),
	)
	defer span.End()

	status, err := r.next.Resolve(ctx, host)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.String("dns.status", status.String()))
	}
	return status, err
}
