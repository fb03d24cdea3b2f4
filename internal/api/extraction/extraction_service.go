package extraction

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service finds place mentions in itinerary text.
type Service interface {
	Extract(ctx context.Context, text string) []types.RawEntityMention
}

type ServiceImpl struct {
	logger  *slog.Logger
	metrics *metrics.AppMetrics
}

// NewServiceImpl builds an extractor. m may be nil.
func NewServiceImpl(logger *slog.Logger, m *metrics.AppMetrics) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		metrics: m,
	}
}

func (s *ServiceImpl) Extract(ctx context.Context, text string) []types.RawEntityMention {
	ctx, span := otel.Tracer("EntityExtractor").Start(ctx, "Extract", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	mentions := ExtractMentions(text)
	span.SetAttributes(attribute.Int("mentions.count", len(mentions)))

	if len(mentions) == 0 {
		s.logger.DebugContext(ctx, "No entity markers found in text")
		return mentions
	}

	byType := make(map[types.EntityType]int)
	for _, m := range mentions {
		byType[m.Type]++
	}
	for t, n := range byType {
		s.metrics.RecordMentions(ctx, string(t), n)
	}
	s.logger.DebugContext(ctx, "Extracted entity mentions",
		slog.Int("count", len(mentions)),
		slog.Int("hotels", byType[types.EntityHotel]),
		slog.Int("restaurants", byType[types.EntityRestaurant]),
		slog.Int("attractions", byType[types.EntityAttraction]+byType[types.EntityEveningVenue]))
	return mentions
}
