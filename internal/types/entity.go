package types

import "fmt"

type EntityType string

const (
	EntityHotel        EntityType = "hotel"
	EntityRestaurant   EntityType = "restaurant"
	EntityAttraction   EntityType = "attraction"
	EntityEveningVenue EntityType = "evening_venue"
)

// Container returns the entity-set bucket the type is stored in. Evening
// venues share the attraction container.
func (t EntityType) Container() EntityType {
	if t == EntityEveningVenue {
		return EntityAttraction
	}
	return t
}

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// Rank orders slots for route construction; unlabeled sorts last.
func (s TimeSlot) Rank() int {
	switch s {
	case SlotMorning:
		return 0
	case SlotAfternoon:
		return 1
	case SlotEvening:
		return 2
	default:
		return 3
	}
}

// RawEntityMention is one place mention found in itinerary text.
type RawEntityMention struct {
	Marker            string       `json:"marker"`
	Name              string       `json:"name"`
	Type              EntityType   `json:"type"`
	InlineCoordinates *Coordinates `json:"inline_coordinates,omitempty"`
	DayIndex          int          `json:"day_index,omitempty"`
	TimeSlot          TimeSlot     `json:"time_slot,omitempty"`
}

// CanonicalEntity is the single deduplicated representation of a place within
// a session. Identity is (Type, NormalizedName).
type CanonicalEntity struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	NormalizedName        string     `json:"normalized_name"`
	Type                  EntityType `json:"type"`
	SubType               EntityType `json:"sub_type,omitempty"`
	Address               string     `json:"address,omitempty"`
	Lat                   *float64   `json:"lat,omitempty"`
	Lng                   *float64   `json:"lng,omitempty"`
	IsApproximateLocation bool       `json:"is_approximate_location"`
	DayIndex              int        `json:"day_index,omitempty"`
	TimeSlot              TimeSlot   `json:"time_slot,omitempty"`
	IsNew                 bool       `json:"is_new,omitempty"`
}

// Key is the session identity of the entity.
func (e CanonicalEntity) Key() string {
	return EntityKey(e.Type, e.NormalizedName)
}

func EntityKey(t EntityType, normalizedName string) string {
	return fmt.Sprintf("%s:%s", t.Container(), normalizedName)
}

// HasCoordinates reports whether both coordinates are present.
func (e CanonicalEntity) HasCoordinates() bool {
	return e.Lat != nil && e.Lng != nil
}

func (e CanonicalEntity) Coordinates() (Coordinates, bool) {
	if !e.HasCoordinates() {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *e.Lat, Lng: *e.Lng}, true
}

// SetCoordinates stores a copy of c on the entity.
func (e *CanonicalEntity) SetCoordinates(c Coordinates) {
	lat, lng := c.Lat, c.Lng
	e.Lat = &lat
	e.Lng = &lng
}

// EntitySet groups canonical entities by container.
type EntitySet struct {
	Hotels      []CanonicalEntity `json:"hotels"`
	Restaurants []CanonicalEntity `json:"restaurants"`
	Attractions []CanonicalEntity `json:"attractions"`
}

func (s *EntitySet) Add(e CanonicalEntity) {
	switch e.Type.Container() {
	case EntityHotel:
		s.Hotels = append(s.Hotels, e)
	case EntityRestaurant:
		s.Restaurants = append(s.Restaurants, e)
	default:
		s.Attractions = append(s.Attractions, e)
	}
}

func (s EntitySet) Len() int {
	return len(s.Hotels) + len(s.Restaurants) + len(s.Attractions)
}

// All flattens the set in hotel, restaurant, attraction order.
func (s EntitySet) All() []CanonicalEntity {
	all := make([]CanonicalEntity, 0, s.Len())
	all = append(all, s.Hotels...)
	all = append(all, s.Restaurants...)
	all = append(all, s.Attractions...)
	return all
}
