package intent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/disambiguation"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/textutil"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/timeref"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

const isoDate = "2006-01-02"

var _ Service = (*ServiceImpl)(nil)

// Service checks that an intent carries every field it needs, filling what it
// can from the trip context and the user's own words.
type Service interface {
	Validate(ctx context.Context, name types.IntentName, data types.IntentData,
		trip *types.TripContext, opts types.ValidationOptions) (types.ValidationResult, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	locations    disambiguation.Service
	timeResolver timeref.Service
	schemas      map[types.IntentName]*gojsonschema.Schema
}

func NewServiceImpl(logger *slog.Logger, locations disambiguation.Service, timeResolver timeref.Service) (*ServiceImpl, error) {
	schemas := make(map[types.IntentName]*gojsonschema.Schema, len(intentFields))
	for name, spec := range intentFields {
		schema, err := compileSchema(name, spec)
		if err != nil {
			return nil, err
		}
		schemas[name] = schema
	}
	return &ServiceImpl{
		logger:       logger,
		locations:    locations,
		timeResolver: timeResolver,
		schemas:      schemas,
	}, nil
}

func (s *ServiceImpl) Validate(ctx context.Context, name types.IntentName, data types.IntentData,
	trip *types.TripContext, opts types.ValidationOptions) (types.ValidationResult, error) {
	ctx, span := otel.Tracer("FieldValidator").Start(ctx, "Validate", trace.WithAttributes(
		attribute.String("intent", string(name)),
	))
	defer span.End()

	spec, ok := intentFields[name]
	if !ok {
		span.SetStatus(codes.Error, "unknown intent")
		return types.ValidationResult{}, fmt.Errorf("%w: %s", types.ErrUnknownIntent, name)
	}

	enhanced := Normalize(data)
	result := types.ValidationResult{EnhancedData: enhanced, MissingFields: []string{}}

	if spec.DateField != "" && opts.OriginalText != "" {
		if ref := s.timeResolver.Resolve(ctx, opts.OriginalText); ref.IsRelative() {
			result.TimeReference = ref
			if enhanced.String(spec.DateField) == "" {
				enhanced[spec.DateField] = ref.Date
			}
		}
	}

	backfillFromTrip(enhanced, spec, trip)

	if slices.Contains(spec.Required, "place") && enhanced.String("place") != "" {
		resolved := s.locations.Resolve(ctx, types.LocationQuery{
			Place:   enhanced.String("place"),
			Country: enhanced.String("country"),
		})
		enhanced["place"] = resolved.Place
		if resolved.Country != "" {
			enhanced["country"] = resolved.Country
		}
		if resolved.CountryCode != "" {
			enhanced["country_code"] = resolved.CountryCode
		}
		if resolved.NeedsConfirmation() {
			result.Conflict = resolved.Conflict
			result.MissingFields = []string{types.LocationConfirmationField}
			span.SetAttributes(attribute.Bool("location.conflict", true))
			return result, nil
		}
	}

	missing, err := s.missingFields(name, spec, enhanced)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema validation failed")
		return types.ValidationResult{}, err
	}
	result.MissingFields = missing
	result.IsComplete = len(missing) == 0

	span.SetAttributes(
		attribute.Bool("intent.complete", result.IsComplete),
		attribute.StringSlice("intent.missing_fields", missing),
	)
	span.SetStatus(codes.Ok, "validated")
	s.logger.DebugContext(ctx, "Validated intent",
		slog.String("intent", string(name)),
		slog.Bool("complete", result.IsComplete),
		slog.Any("missing", missing))
	return result, nil
}

func (s *ServiceImpl) missingFields(name types.IntentName, spec fieldSpec, data types.IntentData) ([]string, error) {
	doc := make(map[string]interface{}, len(data))
	for k, v := range data {
		if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}
		if v == nil {
			continue
		}
		doc[k] = v
	}

	res, err := s.schemas[name].Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	if res.Valid() {
		return []string{}, nil
	}

	failed := make(map[string]bool)
	for _, desc := range res.Errors() {
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				failed[prop] = true
			}
			continue
		}
		// A present field of the wrong shape is as unusable as a missing one.
		failed[desc.Field()] = true
	}

	missing := make([]string, 0, len(failed))
	for _, field := range spec.required() {
		if failed[field] {
			missing = append(missing, field)
		}
	}
	return missing, nil
}

// Normalize flattens a "collected" wrapper and maps aliased field names onto
// the canonical flat shape. Canonical names already present win over aliases.
func Normalize(data types.IntentData) types.IntentData {
	flat := make(types.IntentData, len(data))
	merge := func(src map[string]interface{}) {
		for k, v := range src {
			if k == "collected" {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(k))
			if canonical, ok := fieldAliases[key]; ok {
				if _, exists := src[canonical]; exists {
					continue
				}
				key = canonical
			}
			if str, ok := v.(string); ok {
				v = strings.TrimSpace(str)
			}
			if existing, ok := flat[key]; ok && existing != "" && existing != nil {
				continue
			}
			flat[key] = v
		}
	}

	merge(data)
	switch nested := data["collected"].(type) {
	case map[string]interface{}:
		merge(nested)
	case types.IntentData:
		merge(nested)
	}
	return flat
}

func backfillFromTrip(data types.IntentData, spec fieldSpec, trip *types.TripContext) {
	if trip == nil {
		return
	}
	if data.String("place") == "" && trip.Place != "" {
		data["place"] = trip.Place
	}
	// The trip's country only describes the trip's own place; any other place
	// gets its country from the disambiguator.
	samePlace := textutil.Fold(data.String("place")) == textutil.Fold(trip.Place)
	if data.String("country") == "" && trip.Country != "" && samePlace {
		data["country"] = trip.Country
	}
	if trip.StartDate == nil {
		return
	}
	if slices.Contains(spec.Required, "start_date") && data.String("start_date") == "" {
		data["start_date"] = trip.StartDate.Format(isoDate)
	}
	if spec.DateField == "date" && data.String("date") == "" {
		data["date"] = trip.StartDate.Format(isoDate)
	}
}
