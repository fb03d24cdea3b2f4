package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository reads trip context. The pipeline never writes trips.
type Repository interface {
	GetTripContext(ctx context.Context, tripID uuid.UUID) (*types.TripContext, error)
}

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger  *slog.Logger
	db      Querier
	metrics *metrics.AppMetrics
}

func NewRepositoryImpl(db Querier, logger *slog.Logger, m *metrics.AppMetrics) *RepositoryImpl {
	return &RepositoryImpl{
		logger:  logger,
		db:      db,
		metrics: m,
	}
}

const getTripContextQuery = `SELECT place, country, start_date, end_date FROM trips WHERE id = $1`

func (r *RepositoryImpl) GetTripContext(ctx context.Context, tripID uuid.UUID) (*types.TripContext, error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "GetTripContext", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
		attribute.String("db.system", "postgresql"),
	))
	defer span.End()

	start := time.Now()
	var (
		trip               types.TripContext
		startDate, endDate *time.Time
	)
	err := r.db.QueryRow(ctx, getTripContextQuery, tripID).Scan(&trip.Place, &trip.Country, &startDate, &endDate)
	r.metrics.RecordDbQuery(ctx, "get_trip_context", time.Since(start).Seconds(), ignoreNoRows(err))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "trip not found")
			return nil, fmt.Errorf("%w: %s", types.ErrTripNotFound, tripID)
		}
		r.logger.ErrorContext(ctx, "Failed to load trip context", slog.String("trip_id", tripID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to load trip context: %w", err)
	}

	trip.StartDate = startDate
	trip.EndDate = endDate
	span.SetStatus(codes.Ok, "trip context loaded")
	return &trip, nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
