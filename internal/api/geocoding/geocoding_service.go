package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

const kmPerDegree = 111.32

type Config struct {
	// Fallback is used when not even the destination city can be located.
	Fallback     types.Coordinates
	FallbackName string
	// CityJitter bounds the random offset, in degrees, added to city-table hits.
	CityJitter float64
	// RingJitter bounds the offset added to synthetic ring points.
	RingJitter    float64
	RingPoints    int     // points per ring
	RingBandKm    float64 // radius step between rings
	MaxConcurrent int     // concurrent lookups per batch
	Seed          uint64
}

func DefaultConfig() Config {
	return Config{
		Fallback:      types.Coordinates{Lat: 48.8566, Lng: 2.3522},
		FallbackName:  "Paris",
		CityJitter:    0.005,
		RingJitter:    0.0015,
		RingPoints:    8,
		RingBandKm:    0.8,
		MaxConcurrent: 8,
		Seed:          uint64(time.Now().UnixNano()),
	}
}

var _ Service = (*ServiceImpl)(nil)

// Service turns names and addresses into coordinates. It never fails to
// produce a coordinate; quality is reported through the tier.
type Service interface {
	Geocode(ctx context.Context, query, city string, index int) types.GeocodeResult
	GeocodeBatch(ctx context.Context, entities []types.CanonicalEntity, city string) []types.CanonicalEntity
	GeocodeExact(ctx context.Context, query, city string) (types.GeocodeResult, bool)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  Client
	metrics *metrics.AppMetrics
	config  Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewServiceImpl builds a geocoder. client and m may be nil; without a client
// every lookup skips the external tiers.
func NewServiceImpl(logger *slog.Logger, client Client, m *metrics.AppMetrics, config Config) *ServiceImpl {
	if config.RingPoints <= 0 {
		config.RingPoints = 8
	}
	if config.RingBandKm <= 0 {
		config.RingBandKm = 0.8
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 8
	}
	return &ServiceImpl{
		logger:  logger,
		client:  client,
		metrics: m,
		config:  config,
		rng:     rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15)),
	}
}

// Geocode resolves query in the context of city. index is the entity's
// position in its batch and selects the synthetic ring point if every other
// tier fails.
func (s *ServiceImpl) Geocode(ctx context.Context, query, city string, index int) types.GeocodeResult {
	ctx, span := otel.Tracer("Geocoder").Start(ctx, "Geocode", trace.WithAttributes(
		attribute.String("query", query),
		attribute.String("city", city),
	))
	defer span.End()

	res := s.geocode(ctx, query, city, index)
	res.IsApproximateLocation = res.Tier.IsFallback()

	span.SetAttributes(attribute.String("geocode.tier", res.Tier.String()))
	s.metrics.RecordGeocodeTier(ctx, res.Tier.String())
	return res
}

func (s *ServiceImpl) geocode(ctx context.Context, query, city string, index int) types.GeocodeResult {
	if c, name, ok := knownCity(query); ok {
		s.logger.DebugContext(ctx, "Matched well-known city", slog.String("city", name))
		return types.GeocodeResult{Coordinates: s.jitter(c, s.config.CityJitter), Tier: types.TierKnownCity}
	}

	if res, ok := s.GeocodeExact(ctx, query, city); ok {
		return res
	}

	return s.ringPoint(ctx, city, index)
}

// GeocodeExact runs only the external tiers: the cleaned address, then its
// text before the first comma.
func (s *ServiceImpl) GeocodeExact(ctx context.Context, query, city string) (types.GeocodeResult, bool) {
	if s.client == nil {
		return types.GeocodeResult{}, false
	}
	cleaned := CleanAddress(query)
	if cleaned == "" {
		return types.GeocodeResult{}, false
	}

	full := withCity(cleaned, city)
	if c, ok := s.search(ctx, full); ok {
		return types.GeocodeResult{Coordinates: c, Tier: types.TierExternal}, true
	}

	head, _, _ := strings.Cut(cleaned, ",")
	if simplified := withCity(strings.TrimSpace(head), city); simplified != full && head != "" {
		if c, ok := s.search(ctx, simplified); ok {
			return types.GeocodeResult{Coordinates: c, Tier: types.TierExternalSimplified}, true
		}
	}
	return types.GeocodeResult{}, false
}

func (s *ServiceImpl) search(ctx context.Context, q string) (types.Coordinates, bool) {
	start := time.Now()
	results, err := s.client.Search(ctx, q)
	found := err == nil && len(results) > 0
	s.metrics.RecordGeocodeExternal(ctx, time.Since(start).Seconds(), found)

	if err != nil {
		s.logger.WarnContext(ctx, "External geocoding failed", slog.String("query", q), slog.Any("error", err))
		return types.Coordinates{}, false
	}
	if !found {
		s.logger.DebugContext(ctx, "External geocoding returned no results", slog.String("query", q))
		return types.Coordinates{}, false
	}
	return results[0], true
}

// ringPoint places entity index on concentric rings around the city center.
// Each ring holds RingPoints evenly spaced points; successive rings grow by
// RingBandKm and are rotated by half a step.
func (s *ServiceImpl) ringPoint(ctx context.Context, city string, index int) types.GeocodeResult {
	center, tier := s.cityCenter(ctx, city)

	if index < 0 {
		index = 0
	}
	n := s.config.RingPoints
	band := index / n
	step := 2 * math.Pi / float64(n)
	angle := float64(index%n)*step + float64(band)*step/2
	radiusKm := s.config.RingBandKm * float64(band+1)

	latRad := center.Lat * math.Pi / 180
	p := types.Coordinates{
		Lat: center.Lat + (radiusKm/kmPerDegree)*math.Cos(angle),
		Lng: center.Lng + (radiusKm/(kmPerDegree*math.Max(math.Cos(latRad), 0.01)))*math.Sin(angle),
	}
	return types.GeocodeResult{Coordinates: s.jitter(p, s.config.RingJitter), Tier: tier}
}

// cityCenter resolves the destination's center, falling back to the global
// fallback city. The returned tier is TierSyntheticRing unless the global
// fallback had to be used.
func (s *ServiceImpl) cityCenter(ctx context.Context, city string) (types.Coordinates, types.GeocodeTier) {
	if c, _, ok := knownCity(city); ok {
		return c, types.TierSyntheticRing
	}
	if s.client != nil && strings.TrimSpace(city) != "" {
		if c, ok := s.search(ctx, CleanAddress(city)); ok {
			return c, types.TierSyntheticRing
		}
	}
	s.logger.WarnContext(ctx, "Using global fallback city",
		slog.String("city", city),
		slog.String("fallback", s.config.FallbackName),
		slog.Any("error", fmt.Errorf("%w: center of %q", types.ErrGeocodeExhausted, city)))
	return s.config.Fallback, types.TierGlobalFallback
}

func (s *ServiceImpl) jitter(c types.Coordinates, maxDeg float64) types.Coordinates {
	if maxDeg <= 0 {
		return c
	}
	s.mu.Lock()
	dLat := (s.rng.Float64()*2 - 1) * maxDeg
	dLng := (s.rng.Float64()*2 - 1) * maxDeg
	s.mu.Unlock()
	return types.Coordinates{Lat: c.Lat + dLat, Lng: c.Lng + dLng}
}

// GeocodeBatch fills coordinates for every entity that lacks them. Lookups run
// concurrently and results keep the input order. If any lookup in the batch
// needed a fallback tier, every entity geocoded in this batch is marked
// approximate. Entities that arrive with coordinates are never looked up and
// keep their flag unchanged.
func (s *ServiceImpl) GeocodeBatch(ctx context.Context, entities []types.CanonicalEntity, city string) []types.CanonicalEntity {
	ctx, span := otel.Tracer("Geocoder").Start(ctx, "GeocodeBatch", trace.WithAttributes(
		attribute.Int("entities.count", len(entities)),
		attribute.String("city", city),
	))
	defer span.End()

	// Callers may give up on a batch; lookups already started still finish.
	ctx = context.WithoutCancel(ctx)

	out := make([]types.CanonicalEntity, len(entities))
	copy(out, entities)
	results := make([]*types.GeocodeResult, len(entities))

	var g errgroup.Group
	g.SetLimit(s.config.MaxConcurrent)
	for i := range out {
		if out[i].HasCoordinates() {
			continue
		}
		query := out[i].Address
		if query == "" {
			query = out[i].Name
		}
		g.Go(func() error {
			res := s.Geocode(ctx, query, city, i)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	degraded := false
	for _, r := range results {
		if r != nil && r.Tier.IsFallback() {
			degraded = true
			break
		}
	}

	geocoded := 0
	for i, r := range results {
		if r == nil {
			continue
		}
		geocoded++
		out[i].SetCoordinates(r.Coordinates)
		out[i].IsApproximateLocation = r.IsApproximateLocation || degraded
	}

	span.SetAttributes(attribute.Int("geocoded.count", geocoded), attribute.Bool("batch.degraded", degraded))
	if degraded {
		s.logger.InfoContext(ctx, "Batch geocoded with fallback tiers",
			slog.String("city", city),
			slog.Int("geocoded", geocoded))
	}
	return out
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	specialChars  = regexp.MustCompile(`[^\p{L}\p{N}\s,.'-]`)
)

// CleanAddress strips parenthetical content, replaces special characters with
// spaces and collapses whitespace. Commas are kept for the simplified tier.
func CleanAddress(address string) string {
	s := parenthetical.ReplaceAllString(address, " ")
	s = specialChars.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.Trim(s, " ,")
}

func withCity(query, city string) string {
	city = strings.TrimSpace(city)
	if city == "" || strings.Contains(strings.ToLower(query), strings.ToLower(city)) {
		return query
	}
	return query + ", " + city
}
