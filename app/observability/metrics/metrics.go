package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Fields are public so packages can record on them directly.
type AppMetrics struct {
	GeocodeTierTotal               metric.Int64Counter
	GeocodeExternalDurationSeconds metric.Float64Histogram
	ExtractedMentionsTotal         metric.Int64Counter
	SessionEntitiesAddedTotal      metric.Int64Counter
	MapEventsPublishedTotal        metric.Int64Counter
	MapEventsDroppedTotal          metric.Int64Counter
	DbQueryDurationSeconds         metric.Float64Histogram
	DbQueryErrorsTotal             metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ItineraryMapSync")
		var err error
		m := &AppMetrics{}

		m.GeocodeTierTotal, err = meter.Int64Counter(
			"geocode_tier_total",
			metric.WithDescription("Geocoding lookups by the tier that produced the coordinate"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_tier_total: %v", err)
		}

		m.GeocodeExternalDurationSeconds, err = meter.Float64Histogram(
			"geocode_external_duration_seconds",
			metric.WithDescription("Duration of external geocoding service calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_external_duration_seconds: %v", err)
		}

		m.ExtractedMentionsTotal, err = meter.Int64Counter(
			"extracted_mentions_total",
			metric.WithDescription("Raw entity mentions found in itinerary text"),
			metric.WithUnit("{mention}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create extracted_mentions_total: %v", err)
		}

		m.SessionEntitiesAddedTotal, err = meter.Int64Counter(
			"session_entities_added_total",
			metric.WithDescription("Canonical entities added to map sessions"),
			metric.WithUnit("{entity}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_entities_added_total: %v", err)
		}

		m.MapEventsPublishedTotal, err = meter.Int64Counter(
			"map_events_published_total",
			metric.WithDescription("Map events delivered to a sink"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create map_events_published_total: %v", err)
		}

		m.MapEventsDroppedTotal, err = meter.Int64Counter(
			"map_events_dropped_total",
			metric.WithDescription("Map events dropped because no consumer was ready"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create map_events_dropped_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

// The recorders below accept a nil receiver so services built without
// metrics (tests, the CLI) can call them unconditionally.

func (m *AppMetrics) RecordGeocodeTier(ctx context.Context, tier string) {
	if m == nil {
		return
	}
	m.GeocodeTierTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

func (m *AppMetrics) RecordGeocodeExternal(ctx context.Context, seconds float64, ok bool) {
	if m == nil {
		return
	}
	m.GeocodeExternalDurationSeconds.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("found", ok)))
}

func (m *AppMetrics) RecordMentions(ctx context.Context, entityType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ExtractedMentionsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("type", entityType)))
}

func (m *AppMetrics) RecordSessionAdds(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.SessionEntitiesAddedTotal.Add(ctx, int64(n))
}

func (m *AppMetrics) RecordMapEvent(ctx context.Context, eventType string, delivered bool) {
	if m == nil {
		return
	}
	if delivered {
		m.MapEventsPublishedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
		return
	}
	m.MapEventsDroppedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}

func (m *AppMetrics) RecordDbQuery(ctx context.Context, query string, seconds float64, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("query", query))
	m.DbQueryDurationSeconds.Record(ctx, seconds, attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
