package mapsync

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsession"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// dayColors are cycled per itinerary day.
var dayColors = []string{"#2563eb", "#dc2626", "#16a34a", "#9333ea", "#ea580c", "#0891b2", "#db2777"}

// Emitter turns session changes into map events. It describes what to draw
// and never draws anything itself.
type Emitter struct {
	sink   Sink
	logger *slog.Logger
}

func NewEmitter(sink Sink, logger *slog.Logger) *Emitter {
	return &Emitter{sink: sink, logger: logger}
}

// WithSink returns an emitter that also publishes to extra.
func (e *Emitter) WithSink(extra Sink) *Emitter {
	return &Emitter{sink: Fanout(e.sink, extra), logger: e.logger}
}

func (e *Emitter) publish(ctx context.Context, event types.MapEvent) types.MapEvent {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if e.sink != nil {
		e.sink.Publish(ctx, event)
	}
	return event
}

// EmitReplace publishes the whole session as a full replace.
func (e *Emitter) EmitReplace(ctx context.Context, sess *mapsession.Session) types.MapEvent {
	_, span := otel.Tracer("MapSync").Start(ctx, "EmitReplace", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.Int("entities.count", sess.Len()),
	))
	defer span.End()

	return e.publish(ctx, types.MapEvent{
		Type:      types.MapEventEntities,
		SessionID: sess.ID.String(),
		Entities:  &types.EntityUpdate{Entities: sess.Entities()},
	})
}

// EmitIncremental publishes only the entities just added to the session,
// with the animate hint. Nothing is published when added is empty.
func (e *Emitter) EmitIncremental(ctx context.Context, sess *mapsession.Session, added []types.CanonicalEntity) (types.MapEvent, bool) {
	_, span := otel.Tracer("MapSync").Start(ctx, "EmitIncremental", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.Int("added.count", len(added)),
	))
	defer span.End()

	if len(added) == 0 {
		e.logger.DebugContext(ctx, "No new entities to publish", slog.String("session_id", sess.ID.String()))
		return types.MapEvent{}, false
	}

	var set types.EntitySet
	for _, a := range added {
		if !sess.Seen(a.Key()) {
			// Only entities held by the session may reach the map.
			continue
		}
		set.Add(a)
	}
	if set.Len() == 0 {
		return types.MapEvent{}, false
	}
	return e.publish(ctx, types.MapEvent{
		Type:      types.MapEventEntities,
		SessionID: sess.ID.String(),
		Entities:  &types.EntityUpdate{Entities: set, Incremental: true, AnimateNew: true},
	}), true
}

// BuildRoute orders a day's entities by time slot (unlabeled last, stable
// otherwise) and keeps those with coordinates. It reports false when fewer
// than two points remain.
func BuildRoute(day int, entities []types.CanonicalEntity) (types.RouteDisplay, bool) {
	ordered := slices.Clone(entities)
	slices.SortStableFunc(ordered, func(a, b types.CanonicalEntity) int {
		return a.TimeSlot.Rank() - b.TimeSlot.Rank()
	})

	points := make([]types.RoutePoint, 0, len(ordered))
	for _, ent := range ordered {
		c, ok := ent.Coordinates()
		if !ok {
			continue
		}
		points = append(points, types.RoutePoint{Lat: c.Lat, Lng: c.Lng, Name: ent.Name})
	}
	if len(points) < 2 {
		return types.RouteDisplay{}, false
	}

	color := dayColors[0]
	if day > 0 {
		color = dayColors[(day-1)%len(dayColors)]
	}
	return types.RouteDisplay{
		DayIndex: day,
		Points:   points,
		Style: types.RouteStyle{
			Color:      color,
			Width:      4,
			Opacity:    0.8,
			Animate:    true,
			ShowArrows: true,
		},
	}, true
}

// EmitRoute publishes a route for one day, or nothing if the day has fewer
// than two locatable entities.
func (e *Emitter) EmitRoute(ctx context.Context, sessionID string, day int, entities []types.CanonicalEntity) (types.MapEvent, bool) {
	_, span := otel.Tracer("MapSync").Start(ctx, "EmitRoute", trace.WithAttributes(
		attribute.Int("day", day),
		attribute.Int("entities.count", len(entities)),
	))
	defer span.End()

	route, ok := BuildRoute(day, entities)
	if !ok {
		e.logger.WarnContext(ctx, "Not enough located entities for a route",
			slog.String("session_id", sessionID),
			slog.Int("day", day),
			slog.Int("entities", len(entities)))
		span.SetAttributes(attribute.Bool("route.emitted", false))
		return types.MapEvent{}, false
	}
	span.SetAttributes(attribute.Bool("route.emitted", true))
	return e.publish(ctx, types.MapEvent{
		Type:      types.MapEventRoute,
		SessionID: sessionID,
		Route:     &route,
	}), true
}

func (e *Emitter) EmitFlyTo(ctx context.Context, sessionID string, target types.FlyToLocation) types.MapEvent {
	return e.publish(ctx, types.MapEvent{
		Type:      types.MapEventFlyTo,
		SessionID: sessionID,
		FlyTo:     &target,
	})
}

// EmitClear tells the surface to tear down every marker and route.
func (e *Emitter) EmitClear(ctx context.Context, sessionID string) types.MapEvent {
	return e.publish(ctx, types.MapEvent{Type: types.MapEventClear, SessionID: sessionID})
}

func (e *Emitter) EmitChunk(ctx context.Context, sessionID, chunk string) types.MapEvent {
	return e.publish(ctx, types.MapEvent{Type: types.MapEventChunk, SessionID: sessionID, Chunk: chunk})
}

func (e *Emitter) EmitError(ctx context.Context, sessionID string, err error) types.MapEvent {
	return e.publish(ctx, types.MapEvent{Type: types.MapEventError, SessionID: sessionID, Error: err.Error()})
}

func (e *Emitter) EmitComplete(ctx context.Context, sessionID string) types.MapEvent {
	return e.publish(ctx, types.MapEvent{Type: types.MapEventComplete, SessionID: sessionID})
}
