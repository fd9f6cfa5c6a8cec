package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/sendstack/internal/domain"
)

const tracerName = "github.com/neomorfeo/sendstack/internal/adapter/otel"

// TracingOrderRepository wraps a domain.OrderRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingOrderRepository struct {
	next   domain.OrderRepository
	tracer trace.Tracer
}

// Compile-time check: TracingOrderRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*TracingOrderRepository)(nil)

// NewTracingOrderRepository creates a tracing decorator around the given repository.
func NewTracingOrderRepository(next domain.OrderRepository) *TracingOrderRepository {
	return &TracingOrderRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingOrderRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create",
		trace.WithAttributes(
			attribute.String("order.id", order.ID),
			attribute.String("order.package_type", string(order.PackageType)),
			attribute.Int("order.number_of_domains", order.NumberOfDomains),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, order)
	recordError(span, err)
	return err
}

func (r *TracingOrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Exists",
		trace.WithAttributes(attribute.String("order.id", id)),
	)
	defer span.End()

	ok, err := r.next.Exists(ctx, id)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Bool("result.exists", ok))
	}
	return ok, err
}

func (r *TracingOrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID",
		trace.WithAttributes(attribute.String("order.id", id)),
	)
	defer span.End()

	order, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return order, err
}

// Lookup does not put the email on the span; only which criteria were used.
func (r *TracingOrderRepository) Lookup(ctx context.Context, q domain.LookupQuery) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Lookup",
		trace.WithAttributes(
			attribute.Bool("lookup.by_email", q.Email != ""),
			attribute.Bool("lookup.by_order_ref", q.OrderRef != ""),
		),
	)
	defer span.End()

	orders, err := r.next.Lookup(ctx, q)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(orders)))
	}
	return orders, err
}

func (r *TracingOrderRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Order, int, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
			attribute.Bool("filter.search", filter.Search != ""),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	orders, total, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(
			attribute.Int("result.count", len(orders)),
			attribute.Int("result.total", total),
		)
	}
	return orders, total, err
}

func (r *TracingOrderRepository) UpdateProgress(ctx context.Context, id string, u domain.ProgressUpdate, at time.Time) (domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateProgress",
		trace.WithAttributes(
			attribute.String("order.id", id),
			attribute.String("order.status", string(u.Status)),
			attribute.Int("order.progress_percentage", u.ProgressPercentage),
		),
	)
	defer span.End()

	order, err := r.next.UpdateProgress(ctx, id, u, at)
	recordError(span, err)
	return order, err
}

// TracingPayloadStore wraps a domain.PayloadStore with OpenTelemetry tracing.
type TracingPayloadStore struct {
	next   domain.PayloadStore
	tracer trace.Tracer
}

var _ domain.PayloadStore = (*TracingPayloadStore)(nil)

func NewTracingPayloadStore(next domain.PayloadStore) *TracingPayloadStore {
	return &TracingPayloadStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingPayloadStore) Put(ctx context.Context, p domain.TransientPayload) error {
	ctx, span := s.tracer.Start(ctx, "PayloadStore.Put",
		trace.WithAttributes(
			attribute.String("payload.session_key", p.SessionKey),
			attribute.Int("payload.accounts", len(p.Payload.Accounts)),
		),
	)
	defer span.End()

	err := s.next.Put(ctx, p)
	recordError(span, err)
	return err
}

func (s *TracingPayloadStore) Get(ctx context.Context, key string) (domain.TransientPayload, error) {
	ctx, span := s.tracer.Start(ctx, "PayloadStore.Get",
		trace.WithAttributes(attribute.String("payload.session_key", key)),
	)
	defer span.End()

	p, err := s.next.Get(ctx, key)
	recordError(span, err)
	return p, err
}

func (s *TracingPayloadStore) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "PayloadStore.Delete",
		trace.WithAttributes(attribute.String("payload.session_key", key)),
	)
	defer span.End()

	err := s.next.Delete(ctx, key)
	recordError(span, err)
	return err
}

func (s *TracingPayloadStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "PayloadStore.PurgeExpired")
	defer span.End()

	n, err := s.next.PurgeExpired(ctx, now)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.purged", n))
	}
	return n, err
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
