package mapsession

import (
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// Session is the set of entities currently shown on one viewer's map. It is
// owned by whoever runs the pipeline for that viewer and passed explicitly to
// every call; entities are only ever added within a session.
//
// A Session is not safe for concurrent use.
type Session struct {
	ID          uuid.UUID
	ItineraryID string
	StartedAt   time.Time

	entities []types.CanonicalEntity
	index    map[string]int
}

func New(itineraryID string) *Session {
	return &Session{
		ID:          uuid.New(),
		ItineraryID: itineraryID,
		StartedAt:   time.Now(),
		index:       make(map[string]int),
	}
}

// Len is the number of distinct entities in the session.
func (s *Session) Len() int {
	return len(s.entities)
}

// Seen reports whether an entity with key has already been added.
func (s *Session) Seen(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Entities returns a copy of the session contents grouped by container, in
// insertion order. IsNew is cleared on the copies.
func (s *Session) Entities() types.EntitySet {
	var set types.EntitySet
	for _, e := range s.entities {
		e.IsNew = false
		set.Add(e)
	}
	return set
}

// List returns a copy of the session contents in insertion order.
func (s *Session) List() []types.CanonicalEntity {
	out := make([]types.CanonicalEntity, len(s.entities))
	copy(out, s.entities)
	for i := range out {
		out[i].IsNew = false
	}
	return out
}

// Entity looks an entity up by ID.
func (s *Session) Entity(id string) (types.CanonicalEntity, bool) {
	for _, e := range s.entities {
		if e.ID == id {
			return e, true
		}
	}
	return types.CanonicalEntity{}, false
}

// Replace discards everything and starts over with entities. The session gets
// a fresh start time; duplicates within entities are dropped.
func (s *Session) Replace(itineraryID string, entities []types.CanonicalEntity) []types.CanonicalEntity {
	s.ItineraryID = itineraryID
	s.StartedAt = time.Now()
	s.entities = nil
	s.index = make(map[string]int, len(entities))
	return s.Merge(entities)
}

// Merge appends the entities whose key has not been seen and returns them,
// marked IsNew. Entities already present are not returned again; they only
// pick up coordinates if the session copy has none.
func (s *Session) Merge(entities []types.CanonicalEntity) []types.CanonicalEntity {
	var added []types.CanonicalEntity
	for _, e := range entities {
		key := e.Key()
		if i, ok := s.index[key]; ok {
			existing := &s.entities[i]
			if !existing.HasCoordinates() {
				if c, ok := e.Coordinates(); ok {
					existing.SetCoordinates(c)
					existing.IsApproximateLocation = e.IsApproximateLocation
				}
			}
			continue
		}
		e.IsNew = true
		s.index[key] = len(s.entities)
		s.entities = append(s.entities, e)
		added = append(added, e)
	}
	return added
}

// OverrideLocation replaces an entity's coordinates with an exact lookup and
// clears its approximate flag.
func (s *Session) OverrideLocation(id string, c types.Coordinates) (types.CanonicalEntity, error) {
	for i := range s.entities {
		if s.entities[i].ID != id {
			continue
		}
		s.entities[i].SetCoordinates(c)
		s.entities[i].IsApproximateLocation = false
		return s.entities[i], nil
	}
	return types.CanonicalEntity{}, types.ErrEntityNotFound
}

// Day returns the entities planned for a given day, in insertion order.
func (s *Session) Day(day int) []types.CanonicalEntity {
	var out []types.CanonicalEntity
	for _, e := range s.entities {
		if e.DayIndex == day {
			out = append(out, e)
		}
	}
	return out
}
