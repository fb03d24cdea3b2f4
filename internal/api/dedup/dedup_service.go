package dedup

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/extraction"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service collapses raw mentions into one canonical entity per place.
type Service interface {
	// Deduplicate returns the canonical entities referenced by mentions, in
	// first-mention order. known are entities from earlier batches of the same
	// session; a mention that matches one reuses its identity.
	Deduplicate(ctx context.Context, mentions []types.RawEntityMention, known []types.CanonicalEntity) []types.CanonicalEntity
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// batch accumulates canonical entities for one Deduplicate call.
type batch struct {
	entities []*types.CanonicalEntity
	byKey    map[string]*types.CanonicalEntity
	known    []types.CanonicalEntity
}

func newBatch(known []types.CanonicalEntity) *batch {
	return &batch{
		byKey: make(map[string]*types.CanonicalEntity),
		known: known,
	}
}

// adopt brings an entity into the batch output, returning the batch copy.
func (b *batch) adopt(e types.CanonicalEntity) *types.CanonicalEntity {
	if existing, ok := b.byKey[e.Key()]; ok {
		return existing
	}
	cp := e
	b.entities = append(b.entities, &cp)
	b.byKey[cp.Key()] = &cp
	return &cp
}

func (b *batch) knownByKey(key string) (types.CanonicalEntity, bool) {
	for _, e := range b.known {
		if e.Key() == key {
			return e, true
		}
	}
	return types.CanonicalEntity{}, false
}

// candidates lists batch entities first, then known entities not yet adopted.
func (b *batch) candidates() []types.CanonicalEntity {
	out := make([]types.CanonicalEntity, 0, len(b.entities)+len(b.known))
	for _, e := range b.entities {
		out = append(out, *e)
	}
	for _, e := range b.known {
		if _, ok := b.byKey[e.Key()]; !ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *ServiceImpl) Deduplicate(ctx context.Context, mentions []types.RawEntityMention, known []types.CanonicalEntity) []types.CanonicalEntity {
	ctx, span := otel.Tracer("Deduplicator").Start(ctx, "Deduplicate", trace.WithAttributes(
		attribute.Int("mentions.count", len(mentions)),
		attribute.Int("known.count", len(known)),
	))
	defer span.End()

	b := newBatch(known)

	var phrased []types.RawEntityMention
	for _, m := range mentions {
		// A marker already names the place; only free-text phrases are attached.
		if m.Marker == "" && extraction.IsCheckPhrase(m.Name) {
			phrased = append(phrased, m)
			continue
		}
		s.addOrdinary(b, m)
	}

	for _, m := range phrased {
		s.attachPhrased(ctx, b, m)
	}

	out := make([]types.CanonicalEntity, 0, len(b.entities))
	for _, e := range b.entities {
		out = append(out, *e)
	}
	span.SetAttributes(attribute.Int("entities.count", len(out)))
	return out
}

func (s *ServiceImpl) addOrdinary(b *batch, m types.RawEntityMention) {
	norm := NormalizeName(m.Name)
	if norm == "" {
		return
	}
	key := types.EntityKey(m.Type, norm)

	if e, ok := b.byKey[key]; ok {
		fill(e, m)
		return
	}
	if e, ok := b.knownByKey(key); ok {
		fill(b.adopt(e), m)
		return
	}
	fill(b.adopt(newEntity(m.Name, norm, m.Type)), m)
}

func (s *ServiceImpl) attachPhrased(ctx context.Context, b *batch, m types.RawEntityMention) {
	place, _ := extraction.StripCheckPhrase(m.Name)
	norm := NormalizeName(place)

	match, how := findMatch(b.candidates(), place, norm)
	if match != nil {
		s.logger.DebugContext(ctx, "Attached check-in/out mention",
			slog.String("mention", m.Name),
			slog.String("entity", match.Name),
			slog.String("rule", how))
		fill(b.adopt(*match), m)
		return
	}

	if place == "" || isGenericHotelRef(norm) {
		// "check out of the hotel" with no hotel in sight names nothing.
		return
	}
	hotel := m
	hotel.Type = types.EntityHotel
	fill(b.adopt(newEntity(place, norm, types.EntityHotel)), hotel)
}

// findMatch applies the attach rules in order: exact normalized name, word
// overlap, then hotel-keyword match against hotel-like entities.
func findMatch(candidates []types.CanonicalEntity, place, norm string) (*types.CanonicalEntity, string) {
	if norm != "" {
		for i := range candidates {
			if candidates[i].NormalizedName == norm {
				return &candidates[i], "exact"
			}
		}
		for i := range candidates {
			if wordsOverlap(candidates[i].NormalizedName, norm) {
				return &candidates[i], "overlap"
			}
		}
	}

	var hotels []*types.CanonicalEntity
	for i := range candidates {
		if candidates[i].Type == types.EntityHotel || isHotelLike(candidates[i].Name) {
			hotels = append(hotels, &candidates[i])
		}
	}
	if len(hotels) == 0 {
		return nil, ""
	}

	if isGenericHotelRef(norm) {
		return hotels[len(hotels)-1], "generic"
	}
	if !isHotelLike(place) {
		return nil, ""
	}
	for _, h := range hotels {
		if strings.Contains(h.NormalizedName, norm) || strings.Contains(norm, h.NormalizedName) {
			return h, "keyword"
		}
	}
	return nil, ""
}

func newEntity(name, norm string, t types.EntityType) types.CanonicalEntity {
	e := types.CanonicalEntity{
		ID:             uuid.NewString(),
		Name:           name,
		NormalizedName: norm,
		Type:           t.Container(),
	}
	if t != t.Container() {
		e.SubType = t
	}
	return e
}

// fill copies what the mention knows into e without overwriting anything e
// already has.
func fill(e *types.CanonicalEntity, m types.RawEntityMention) {
	if !e.HasCoordinates() && m.InlineCoordinates != nil {
		e.SetCoordinates(*m.InlineCoordinates)
	}
	if e.DayIndex == 0 {
		e.DayIndex = m.DayIndex
	}
	if e.TimeSlot == "" {
		e.TimeSlot = m.TimeSlot
	}
}
