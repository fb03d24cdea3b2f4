package itinerary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/dedup"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/disambiguation"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/extraction"
	generativeAI "github.com/FACorreiaa/go-itinerary-mapsync/internal/api/generative_ai"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/geocoding"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsession"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsync"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

var ErrStreamUnavailable = errors.New("itinerary text stream is not configured")

// TextStreamer supplies model-written itinerary text in chunks.
type TextStreamer interface {
	GenerateItineraryStream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

type ResolveRequest struct {
	Text        string `json:"text"`
	City        string `json:"city"`
	Country     string `json:"country,omitempty"`
	Incremental bool   `json:"incremental"`
	ItineraryID string `json:"itinerary_id,omitempty"`
}

type AdviceRequest struct {
	Query   string `json:"query"`
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

type StreamRequest struct {
	Prompt      string `json:"prompt"`
	City        string `json:"city"`
	Country     string `json:"country,omitempty"`
	ItineraryID string `json:"itinerary_id,omitempty"`
}

type ResolveResult struct {
	Mentions []types.RawEntityMention `json:"mentions"`
	Entities []types.CanonicalEntity  `json:"entities"`
	Added    []types.CanonicalEntity  `json:"added"`
	Location types.ResolvedLocation   `json:"location"`
	Events   []types.MapEvent         `json:"events"`
}

// Service runs text through extraction, dedup and geocoding into a map
// session, publishing what changed. Callers own the session and must not use
// it from two goroutines at once.
type Service interface {
	Resolve(ctx context.Context, sess *mapsession.Session, req ResolveRequest) (ResolveResult, error)
	ResolveAdvice(ctx context.Context, sess *mapsession.Session, req AdviceRequest) (ResolveResult, error)
	StreamItinerary(ctx context.Context, sess *mapsession.Session, req StreamRequest, sink mapsync.Sink) error
	ShowRoute(ctx context.Context, sess *mapsession.Session, day int) (types.MapEvent, bool)
	FlyTo(ctx context.Context, sess *mapsession.Session, target types.FlyToLocation) types.MapEvent
	Reset(ctx context.Context, sess *mapsession.Session, itineraryID string) types.MapEvent
	RefineEntity(ctx context.Context, sess *mapsession.Session, entityID, city string) (types.CanonicalEntity, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	extractor      extraction.Service
	deduplicator   dedup.Service
	geocoder       geocoding.Service
	disambiguation disambiguation.Service
	emitter        *mapsync.Emitter
	streamer       TextStreamer
	metrics        *metrics.AppMetrics
}

func NewServiceImpl(
	logger *slog.Logger,
	extractor extraction.Service,
	deduplicator dedup.Service,
	geocoder geocoding.Service,
	disambiguationService disambiguation.Service,
	emitter *mapsync.Emitter,
	streamer TextStreamer,
	m *metrics.AppMetrics,
) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		extractor:      extractor,
		deduplicator:   deduplicator,
		geocoder:       geocoder,
		disambiguation: disambiguationService,
		emitter:        emitter,
		streamer:       streamer,
		metrics:        m,
	}
}

// locate settles the city/country context. A conflicting pairing stops the
// run, every other outcome lets it proceed.
func (s *ServiceImpl) locate(ctx context.Context, city, country string) (types.ResolvedLocation, error) {
	if strings.TrimSpace(city) == "" {
		return types.ResolvedLocation{Country: country, Confidence: types.ConfidenceLow}, nil
	}
	loc := s.disambiguation.Resolve(ctx, types.LocationQuery{Place: city, Country: country})
	if loc.NeedsConfirmation() {
		return loc, &types.ConflictError{Place: loc.Place, Conflict: *loc.Conflict}
	}
	return loc, nil
}

func geocodeContext(loc types.ResolvedLocation) string {
	if loc.Place == "" {
		return ""
	}
	if loc.Country == "" {
		return loc.Place
	}
	return loc.Place + ", " + loc.Country
}

// Resolve extracts the places in req.Text and brings the session up to date.
// In full mode the session is replaced and a full entity event is published;
// in incremental mode only entities the session has not seen are added and
// published.
func (s *ServiceImpl) Resolve(ctx context.Context, sess *mapsession.Session, req ResolveRequest) (ResolveResult, error) {
	ctx, span := otel.Tracer("ItineraryPipeline").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.String("city", req.City),
		attribute.Bool("incremental", req.Incremental),
		attribute.Int("text.length", len(req.Text)),
	))
	defer span.End()

	loc, err := s.locate(ctx, req.City, req.Country)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "location conflict")
		return ResolveResult{Location: loc}, err
	}

	result := ResolveResult{Location: loc}
	result.Mentions = s.extractor.Extract(ctx, req.Text)

	var known []types.CanonicalEntity
	if req.Incremental {
		known = sess.List()
	}
	entities := s.deduplicator.Deduplicate(ctx, result.Mentions, known)
	result.Entities = s.geocoder.GeocodeBatch(ctx, entities, geocodeContext(loc))

	if req.Incremental {
		result.Added = sess.Merge(result.Entities)
		if ev, ok := s.emitter.EmitIncremental(ctx, sess, result.Added); ok {
			result.Events = append(result.Events, ev)
		}
	} else {
		itineraryID := req.ItineraryID
		if itineraryID == "" {
			itineraryID = sess.ItineraryID
		}
		result.Added = sess.Replace(itineraryID, result.Entities)
		result.Events = append(result.Events, s.emitter.EmitReplace(ctx, sess))
	}
	s.metrics.RecordSessionAdds(ctx, len(result.Added))

	s.logger.InfoContext(ctx, "Itinerary resolved",
		slog.String("session_id", sess.ID.String()),
		slog.Bool("incremental", req.Incremental),
		slog.Int("mentions", len(result.Mentions)),
		slog.Int("entities", len(result.Entities)),
		slog.Int("added", len(result.Added)))
	span.SetAttributes(
		attribute.Int("mentions.count", len(result.Mentions)),
		attribute.Int("added.count", len(result.Added)),
	)
	span.SetStatus(codes.Ok, "resolved")
	return result, nil
}

// ResolveAdvice merges the places named in an advice answer into the session
// and moves the map to the first one that was added.
func (s *ServiceImpl) ResolveAdvice(ctx context.Context, sess *mapsession.Session, req AdviceRequest) (ResolveResult, error) {
	ctx, span := otel.Tracer("ItineraryPipeline").Start(ctx, "ResolveAdvice", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.String("city", req.City),
	))
	defer span.End()

	result, err := s.Resolve(ctx, sess, ResolveRequest{
		Text:        req.Query,
		City:        req.City,
		Country:     req.Country,
		Incremental: true,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "advice resolution failed")
		return result, err
	}

	for _, e := range result.Added {
		if c, ok := e.Coordinates(); ok {
			lat, lng := c.Lat, c.Lng
			result.Events = append(result.Events, s.FlyTo(ctx, sess, types.FlyToLocation{Lat: &lat, Lng: &lng}))
			break
		}
	}
	span.SetStatus(codes.Ok, "advice resolved")
	return result, nil
}

// StreamItinerary asks the model for an itinerary and resolves it day by day
// as the text arrives. Every chunk, entity update and the final outcome are
// published to sink as well as to the emitter's own sinks.
func (s *ServiceImpl) StreamItinerary(ctx context.Context, sess *mapsession.Session, req StreamRequest, sink mapsync.Sink) error {
	ctx, span := otel.Tracer("ItineraryPipeline").Start(ctx, "StreamItinerary", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.String("city", req.City),
	))
	defer span.End()

	emitter := s.emitter
	if sink != nil {
		emitter = s.emitter.WithSink(sink)
	}
	run := *s
	run.emitter = emitter
	sessionID := sess.ID.String()

	if s.streamer == nil {
		emitter.EmitError(ctx, sessionID, ErrStreamUnavailable)
		span.SetStatus(codes.Error, "no streamer")
		return ErrStreamUnavailable
	}

	loc, err := s.locate(ctx, req.City, req.Country)
	if err != nil {
		emitter.EmitError(ctx, sessionID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "location conflict")
		return err
	}

	run.Reset(ctx, sess, req.ItineraryID)

	resolveBlock := func(block string) {
		if strings.TrimSpace(block) == "" {
			return
		}
		// The city was settled above; pass the resolved pair along.
		if _, err := run.Resolve(ctx, sess, ResolveRequest{
			Text:        block,
			City:        loc.Place,
			Country:     loc.Country,
			Incremental: true,
		}); err != nil {
			s.logger.WarnContext(ctx, "Skipping itinerary block", slog.Any("error", err))
		}
	}

	var blocks dayBlocks
	prompt := generativeAI.ItineraryPrompt(req.Prompt, loc.Place, loc.Country)
	for chunk, err := range s.streamer.GenerateItineraryStream(ctx, prompt) {
		if err != nil {
			resolveBlock(blocks.Flush())
			emitter.EmitError(ctx, sessionID, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "stream failed")
			return fmt.Errorf("failed to stream itinerary: %w", err)
		}
		emitter.EmitChunk(ctx, sessionID, chunk)
		for _, block := range blocks.Write(chunk) {
			resolveBlock(block)
		}
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return ctx.Err()
		}
	}
	resolveBlock(blocks.Flush())

	emitter.EmitComplete(ctx, sessionID)
	span.SetAttributes(attribute.Int("entities.count", sess.Len()))
	span.SetStatus(codes.Ok, "stream completed")
	return nil
}

// ShowRoute publishes the route for one day of the session, if it has at
// least two located entities.
func (s *ServiceImpl) ShowRoute(ctx context.Context, sess *mapsession.Session, day int) (types.MapEvent, bool) {
	return s.emitter.EmitRoute(ctx, sess.ID.String(), day, sess.Day(day))
}

func (s *ServiceImpl) FlyTo(ctx context.Context, sess *mapsession.Session, target types.FlyToLocation) types.MapEvent {
	return s.emitter.EmitFlyTo(ctx, sess.ID.String(), target)
}

// Reset empties the session for a different itinerary and tells the map to
// tear everything down.
func (s *ServiceImpl) Reset(ctx context.Context, sess *mapsession.Session, itineraryID string) types.MapEvent {
	if itineraryID == "" {
		itineraryID = sess.ItineraryID
	}
	sess.Replace(itineraryID, nil)
	s.logger.InfoContext(ctx, "Map session reset",
		slog.String("session_id", sess.ID.String()),
		slog.String("itinerary_id", itineraryID))
	return s.emitter.EmitClear(ctx, sess.ID.String())
}

// RefineEntity retries only the external geocoding tiers for one entity. On
// a hit the coordinates are overwritten and the approximate flag cleared; a
// miss leaves the entity untouched.
func (s *ServiceImpl) RefineEntity(ctx context.Context, sess *mapsession.Session, entityID, city string) (types.CanonicalEntity, error) {
	ctx, span := otel.Tracer("ItineraryPipeline").Start(ctx, "RefineEntity", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.String("entity.id", entityID),
	))
	defer span.End()

	entity, ok := sess.Entity(entityID)
	if !ok {
		span.SetStatus(codes.Error, "entity not found")
		return types.CanonicalEntity{}, fmt.Errorf("%w: %s", types.ErrEntityNotFound, entityID)
	}

	query := entity.Address
	if query == "" {
		query = entity.Name
	}
	res, found := s.geocoder.GeocodeExact(ctx, query, city)
	span.SetAttributes(attribute.Bool("refine.found", found))
	if !found {
		s.logger.InfoContext(ctx, "No exact location found, keeping current coordinates",
			slog.String("entity_id", entityID),
			slog.String("name", entity.Name))
		return entity, nil
	}

	updated, err := sess.OverrideLocation(entityID, res.Coordinates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "override failed")
		return types.CanonicalEntity{}, err
	}
	s.emitter.EmitReplace(ctx, sess)
	span.SetStatus(codes.Ok, "entity refined")
	return updated, nil
}
