package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/disambiguation"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/intent"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsession"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsync"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/timeref"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/trip"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

type HandlerImpl struct {
	logger         *slog.Logger
	service        Service
	sessions       *mapsession.Store
	broadcaster    *mapsync.Broadcaster
	disambiguation disambiguation.Service
	timeResolver   timeref.Service
	validator      intent.Service
	trips          trip.Repository
	metrics        *metrics.AppMetrics
}

type HandlerDeps struct {
	Service        Service
	Sessions       *mapsession.Store
	Broadcaster    *mapsync.Broadcaster
	Disambiguation disambiguation.Service
	TimeResolver   timeref.Service
	Validator      intent.Service
	Trips          trip.Repository // optional
	Metrics        *metrics.AppMetrics
}

func NewHandlerImpl(deps HandlerDeps, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:         logger,
		service:        deps.Service,
		sessions:       deps.Sessions,
		broadcaster:    deps.Broadcaster,
		disambiguation: deps.Disambiguation,
		timeResolver:   deps.TimeResolver,
		validator:      deps.Validator,
		trips:          deps.Trips,
		metrics:        deps.Metrics,
	}
}

// Routes mounts every endpoint of the handler on r.
func (h *HandlerImpl) Routes(r chi.Router) {
	r.Post("/locations/disambiguate", h.Disambiguate)
	r.Post("/time/resolve", h.ResolveTime)
	r.Post("/intents/{intent}/validate", h.ValidateIntent)

	r.Route("/map/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/itinerary", h.ResolveItinerary)
			r.Post("/advice", h.ResolveAdvice)
			r.Post("/reset", h.ResetSession)
			r.Post("/fly-to", h.FlyTo)
			r.Post("/routes/{day}", h.ShowRoute)
			r.Post("/entities/{entityID}/refine", h.RefineEntity)
			r.Get("/events", h.Events)
			r.Post("/stream", h.StreamItinerary)
		})
	})
}

type conflictBody struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error"`
	Conflict  types.LocationConflict `json:"conflict"`
	RequestID string                 `json:"request_id,omitempty"`
}

// writeError maps pipeline errors onto HTTP statuses.
func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var conflict *types.ConflictError
	switch {
	case errors.As(err, &conflict):
		api.WriteJSONResponse(w, r, http.StatusConflict, conflictBody{
			Error:     conflict.Error(),
			Conflict:  conflict.Conflict,
			RequestID: middleware.GetReqID(r.Context()),
		})
	case errors.Is(err, types.ErrSessionNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Map session not found")
	case errors.Is(err, types.ErrEntityNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Entity not found")
	case errors.Is(err, types.ErrTripNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
	case errors.Is(err, types.ErrUnknownIntent):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func sessionIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id: %w", err)
	}
	return id, nil
}

// Disambiguate godoc
// @Summary      Disambiguate a place
// @Description  Standardizes the country and flags place/country pairings that need confirmation.
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        query body types.LocationQuery true "Place and optional country"
// @Success      200 {object} types.ResolvedLocation
// @Failure      400 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /locations/disambiguate [post]
func (h *HandlerImpl) Disambiguate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Disambiguate")
	defer span.End()

	var query types.LocationQuery
	if err := api.DecodeJSONBody(w, r, &query); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(query.Place) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place is required")
		return
	}

	resolved := h.disambiguation.Resolve(ctx, query)
	span.SetStatus(codes.Ok, "resolved")
	api.WriteJSONResponse(w, r, http.StatusOK, resolved)
}

type timeRequest struct {
	Text string `json:"text"`
}

// ResolveTime godoc
// @Summary      Resolve a time expression
// @Description  Finds "now", "today", "tomorrow" or "this weekend" in English or Hebrew text.
// @Tags         Time
// @Accept       json
// @Produce      json
// @Param        request body timeRequest true "Free text"
// @Success      200 {object} types.TimeReference
// @Failure      400 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /time/resolve [post]
func (h *HandlerImpl) ResolveTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ResolveTime")
	defer span.End()

	var req timeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.timeResolver.Resolve(ctx, req.Text))
}

type validateRequest struct {
	Data         types.IntentData `json:"data"`
	TripID       *uuid.UUID       `json:"trip_id,omitempty"`
	OriginalText string           `json:"original_text,omitempty"`
}

// ValidateIntent godoc
// @Summary      Validate intent fields
// @Description  Normalizes and back-fills intent data and reports the fields still missing.
// @Tags         Intents
// @Accept       json
// @Produce      json
// @Param        intent  path string          true "Intent name"
// @Param        request body validateRequest true "Collected data"
// @Success      200 {object} types.ValidationResult
// @Failure      400 {object} types.ErrorBody
// @Failure      404 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /intents/{intent}/validate [post]
func (h *HandlerImpl) ValidateIntent(w http.ResponseWriter, r *http.Request) {
	name := types.IntentName(chi.URLParam(r, "intent"))
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ValidateIntent", trace.WithAttributes(
		attribute.String("intent", string(name)),
	))
	defer span.End()

	var req validateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var tripCtx *types.TripContext
	if req.TripID != nil && h.trips != nil {
		t, err := h.trips.GetTripContext(ctx, *req.TripID)
		if err != nil {
			h.writeError(w, r, span, err)
			return
		}
		tripCtx = t
	}

	result, err := h.validator.Validate(ctx, name, req.Data, tripCtx, types.ValidationOptions{OriginalText: req.OriginalText})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("complete", result.IsComplete))
	span.SetStatus(codes.Ok, "validated")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

type createSessionRequest struct {
	ItineraryID string `json:"itinerary_id"`
}

type sessionResponse struct {
	SessionID   uuid.UUID       `json:"session_id"`
	ItineraryID string          `json:"itinerary_id"`
	Entities    types.EntitySet `json:"entities"`
}

// CreateSession godoc
// @Summary      Create a map session
// @Tags         Map
// @Accept       json
// @Produce      json
// @Param        request body createSessionRequest true "Itinerary being viewed"
// @Success      201 {object} sessionResponse
// @Failure      400 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /map/sessions [post]
func (h *HandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateSession")
	defer span.End()

	var req createSessionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sess := h.sessions.Create(ctx, req.ItineraryID)
	span.SetStatus(codes.Ok, "created")
	api.WriteJSONResponse(w, r, http.StatusCreated, sessionResponse{
		SessionID:   sess.ID,
		ItineraryID: sess.ItineraryID,
		Entities:    sess.Entities(),
	})
}

// GetSession godoc
// @Summary      Get the entities of a map session
// @Tags         Map
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} sessionResponse
// @Failure      404 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID} [get]
func (h *HandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetSession")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	entities, meta, err := h.sessions.Snapshot(id)
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, sessionResponse{SessionID: id, ItineraryID: meta.ItineraryID, Entities: entities})
}

func (h *HandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.sessions.Delete(id)
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ResolveItinerary godoc
// @Summary      Resolve itinerary text onto the map
// @Description  Extracts, deduplicates and geocodes the places in the text. Full mode replaces the session; incremental mode only adds.
// @Tags         Map
// @Accept       json
// @Produce      json
// @Param        sessionID path string         true "Session ID"
// @Param        request   body ResolveRequest true "Itinerary text"
// @Success      200 {object} ResolveResult
// @Failure      404 {object} types.ErrorBody
// @Failure      409 {object} conflictBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID}/itinerary [post]
func (h *HandlerImpl) ResolveItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ResolveItinerary")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req ResolveRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var result ResolveResult
	err = h.sessions.With(id, func(sess *mapsession.Session) error {
		var err error
		result, err = h.service.Resolve(ctx, sess, req)
		return err
	})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	span.SetStatus(codes.Ok, "resolved")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// ResolveAdvice godoc
// @Summary      Add the places of an advice answer to the map
// @Tags         Map
// @Accept       json
// @Produce      json
// @Param        sessionID path string        true "Session ID"
// @Param        request   body AdviceRequest true "Advice text"
// @Success      200 {object} ResolveResult
// @Failure      404 {object} types.ErrorBody
// @Failure      409 {object} conflictBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID}/advice [post]
func (h *HandlerImpl) ResolveAdvice(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ResolveAdvice")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req AdviceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var result ResolveResult
	err = h.sessions.With(id, func(sess *mapsession.Session) error {
		var err error
		result, err = h.service.ResolveAdvice(ctx, sess, req)
		return err
	})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ResetSession")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req createSessionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var event types.MapEvent
	err = h.sessions.With(id, func(sess *mapsession.Session) error {
		event = h.service.Reset(ctx, sess, req.ItineraryID)
		return nil
	})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, event)
}

func (h *HandlerImpl) FlyTo(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "FlyTo")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var target types.FlyToLocation
	if err := api.DecodeJSONBody(w, r, &target); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if target.Place == "" && (target.Lat == nil || target.Lng == nil) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "either place or lat/lng is required")
		return
	}

	var event types.MapEvent
	err = h.sessions.With(id, func(sess *mapsession.Session) error {
		event = h.service.FlyTo(ctx, sess, target)
		return nil
	})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, event)
}

// ShowRoute godoc
// @Summary      Draw the route of one day
// @Description  Publishes a route for the day's located entities ordered by time slot. Nothing is published with fewer than two points.
// @Tags         Map
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Param        day       path int    true "Day number"
// @Success      200 {object} types.MapEvent
// @Success      204 "Not enough located entities"
// @Failure      404 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID}/routes/{day} [post]
func (h *HandlerImpl) ShowRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ShowRoute")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid day")
		return
	}

	var (
		event   types.MapEvent
		emitted bool
	)
	err = h.sessions.With(id, func(sess *mapsession.Session) error {
		event, emitted = h.service.ShowRoute(ctx, sess, day)
		return nil
	})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	if !emitted {
		api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, event)
}

type refineRequest struct {
	City string `json:"city"`
}

// RefineEntity godoc
// @Summary      Look an entity up again
// @Description  Retries the external geocoder for one entity and clears its approximate flag on success.
// @Tags         Map
// @Accept       json
// @Produce      json
// @Param        sessionID path string        true "Session ID"
// @Param        entityID  path string        true "Entity ID"
// @Param        request   body refineRequest true "City context"
// @Success      200 {object} types.CanonicalEntity
// @Failure      404 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID}/entities/{entityID}/refine [post]
func (h *HandlerImpl) RefineEntity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "RefineEntity")
	defer span.End()

	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req refineRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var entity types.CanonicalEntity
	err = h.sessions.With(id, func(sess *mapsession.Session) error {
		var err error
		entity, err = h.service.RefineEntity(ctx, sess, chi.URLParam(r, "entityID"), req.City)
		return err
	})
	if err != nil {
		h.writeError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, entity)
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func (h *HandlerImpl) writeSSE(w http.ResponseWriter, flusher http.Flusher, event types.MapEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal map event", slog.Any("error", err))
		return
	}
	fmt.Fprintf(w, "id: %s\n", event.EventID)
	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// Events godoc
// @Summary      Subscribe to map events
// @Description  Server-sent events for every update published on the session. The current entities are sent first.
// @Tags         Map
// @Produce      text/event-stream
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} types.MapEvent
// @Failure      404 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID}/events [get]
func (h *HandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	events, cancel := h.broadcaster.Subscribe(id.String())
	defer cancel()

	// A session in the middle of a run gets no initial snapshot; the run's
	// own events bring the subscriber up to date.
	entities, busy, err := h.sessions.TrySnapshot(id)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Map session not found")
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if !busy {
		h.writeSSE(w, flusher, types.MapEvent{
			Type:      types.MapEventEntities,
			EventID:   uuid.NewString(),
			SessionID: id.String(),
			Entities:  &types.EntityUpdate{Entities: entities},
		})
	}

	h.logger.InfoContext(ctx, "Map event subscriber connected", slog.String("session_id", id.String()))
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			h.writeSSE(w, flusher, event)
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "Map event subscriber disconnected", slog.String("session_id", id.String()))
			return
		}
	}
}

// StreamItinerary godoc
// @Summary      Generate an itinerary and map it while it streams
// @Description  Server-sent events carrying the model text chunks and the map updates of each finished day.
// @Tags         Map
// @Accept       json
// @Produce      text/event-stream
// @Param        sessionID path string        true "Session ID"
// @Param        request   body StreamRequest true "Prompt and destination"
// @Success      200 {object} types.MapEvent
// @Failure      404 {object} types.ErrorBody
// @Security     BearerAuth
// @Router       /map/sessions/{sessionID}/stream [post]
func (h *HandlerImpl) StreamItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := sessionIDParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req StreamRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !h.sessions.Exists(id) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Map session not found")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	events := make(chan types.MapEvent, 16)
	sink := mapsync.NewChannelSink(events, h.logger, h.metrics)
	go func() {
		defer close(events)
		err := h.sessions.With(id, func(sess *mapsession.Session) error {
			return h.service.StreamItinerary(ctx, sess, req, sink)
		})
		if err != nil {
			h.logger.WarnContext(ctx, "Itinerary stream ended with error",
				slog.String("session_id", id.String()),
				slog.Any("error", err))
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			h.writeSSE(w, flusher, event)
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "Client disconnected", slog.String("session_id", id.String()))
			return
		}
	}
}
