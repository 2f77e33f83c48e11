package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/common/observability"
	"cars-api/internal/models"
	"cars-api/internal/repository/search"
)

// InstrumentedCarRepository wraps a CarRepository with spans and store metrics.
// Results and errors pass through untouched.
type InstrumentedCarRepository struct {
	next CarRepository
	obs  *observability.Observability
}

func NewInstrumentedCarRepository(next CarRepository, obs *observability.Observability) *InstrumentedCarRepository {
	return &InstrumentedCarRepository{next: next, obs: obs}
}

func (r *InstrumentedCarRepository) FindAll(ctx context.Context, req models.PageRequest) (models.Page[models.Car], error) {
	ctx, span := r.obs.Tracer().Start(ctx, "CarRepository.FindAll", trace.WithAttributes(
		attribute.Int("page.number", req.Page),
		attribute.Int("page.size", req.Size),
	))
	start := time.Now()

	page, err := r.next.FindAll(ctx, req)
	finish(ctx, span, r.obs, "sql", "findAll", start, err)
	return page, err
}

func (r *InstrumentedCarRepository) FindByID(ctx context.Context, id int64) (models.Car, error) {
	ctx, span := r.obs.Tracer().Start(ctx, "CarRepository.FindByID", trace.WithAttributes(
		attribute.Int64("car.id", id),
	))
	start := time.Now()

	car, err := r.next.FindByID(ctx, id)
	finish(ctx, span, r.obs, "sql", "findById", start, err)
	return car, err
}

// InstrumentedCarSearchRepository wraps a search.CarSearchRepository the same way.
type InstrumentedCarSearchRepository struct {
	next search.CarSearchRepository
	obs  *observability.Observability
}

func NewInstrumentedCarSearchRepository(next search.CarSearchRepository, obs *observability.Observability) *InstrumentedCarSearchRepository {
	return &InstrumentedCarSearchRepository{next: next, obs: obs}
}

func (r *InstrumentedCarSearchRepository) Search(ctx context.Context, query string, req models.PageRequest) (models.Page[models.Car], error) {
	ctx, span := r.obs.Tracer().Start(ctx, "CarSearchRepository.Search", trace.WithAttributes(
		attribute.Int("page.number", req.Page),
		attribute.Int("page.size", req.Size),
	))
	start := time.Now()

	page, err := r.next.Search(ctx, query, req)
	finish(ctx, span, r.obs, "elasticsearch", "search", start, err)
	return page, err
}

func finish(ctx context.Context, span trace.Span, obs *observability.Observability, store, operation string, start time.Time, err error) {
	status := "ok"
	switch {
	case apperrors.IsNotFound(err):
		status = "not_found"
	case err != nil:
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	obs.RecordStoreQuery(ctx, store, operation, status, time.Since(start))
}
