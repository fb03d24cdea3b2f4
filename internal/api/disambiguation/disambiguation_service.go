package disambiguation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/textutil"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service resolves free-text place names into a standard (place, country,
// country code) tuple and flags pairings that need user confirmation.
type Service interface {
	Resolve(ctx context.Context, query types.LocationQuery) types.ResolvedLocation
	StandardizeCountry(country string) string
	CountryCode(country string) string
}

type ServiceImpl struct {
	logger *slog.Logger
	places map[string]ambiguousPlace
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	places := make(map[string]ambiguousPlace, len(ambiguousPlaces))
	for _, p := range ambiguousPlaces {
		places[textutil.Fold(p.Name)] = p
	}
	return &ServiceImpl{
		logger: logger,
		places: places,
	}
}

// StandardizeCountry maps a known country spelling to its standard name. Unknown
// spellings are returned trimmed but otherwise untouched.
func (s *ServiceImpl) StandardizeCountry(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return ""
	}
	if std, ok := countryAliases[textutil.Fold(country)]; ok {
		return std
	}
	return country
}

func (s *ServiceImpl) CountryCode(country string) string {
	return countryCodes[s.StandardizeCountry(country)]
}

func (s *ServiceImpl) lookupPlace(place string) (ambiguousPlace, bool) {
	key := textutil.Fold(place)
	if alias, ok := placeAliases[key]; ok {
		key = alias
	}
	p, ok := s.places[key]
	return p, ok
}

func (s *ServiceImpl) Resolve(ctx context.Context, query types.LocationQuery) types.ResolvedLocation {
	_, span := otel.Tracer("Disambiguation").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("place", query.Place),
		attribute.String("country", query.Country),
	))
	defer span.End()

	place := strings.TrimSpace(query.Place)
	country := s.StandardizeCountry(query.Country)

	entry, ok := s.lookupPlace(place)
	if !ok {
		// Unknown places keep whatever country the caller gave us, if any.
		span.SetAttributes(attribute.Bool("place.known", false))
		return types.ResolvedLocation{
			Place:       place,
			Country:     country,
			CountryCode: countryCodes[country],
			Confidence:  types.ConfidenceLow,
		}
	}
	span.SetAttributes(attribute.Bool("place.known", true))

	resolved := types.ResolvedLocation{Place: entry.Name}

	switch {
	case country == "":
		resolved.Country = entry.Primary
		resolved.Confidence = types.ConfidenceMedium
		if len(entry.Alternatives) == 0 {
			resolved.Confidence = types.ConfidenceHigh
		}
	case country == entry.Primary:
		resolved.Country = country
		resolved.Confidence = types.ConfidenceHigh
	case slices.Contains(entry.Alternatives, country):
		resolved.Country = country
		resolved.Confidence = types.ConfidenceMedium
	default:
		resolved.Country = country
		resolved.Confidence = types.ConfidenceLow
		resolved.Conflict = &types.LocationConflict{
			SuggestedCountry:     entry.Primary,
			AlternativeCountries: append([]string(nil), entry.Alternatives...),
			Message:              conflictMessage(entry, country),
		}
		s.logger.InfoContext(ctx, "Location conflict detected",
			slog.String("place", entry.Name),
			slog.String("given_country", country),
			slog.String("suggested_country", entry.Primary))
	}

	resolved.CountryCode = countryCodes[resolved.Country]
	return resolved
}

func conflictMessage(entry ambiguousPlace, given string) string {
	msg := fmt.Sprintf("%s is not known in %s. Did you mean %s, %s?", entry.Name, given, entry.Name, entry.Primary)
	if len(entry.Alternatives) > 0 {
		msg += fmt.Sprintf(" It also exists in: %s.", strings.Join(entry.Alternatives, ", "))
	}
	return msg
}
