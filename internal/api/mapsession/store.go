package mapsession

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// entry pairs a session with the lock that serializes pipeline runs on it.
type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store keeps live sessions in memory with a sliding TTL. Sessions are never
// persisted.
type Store struct {
	logger *slog.Logger
	cache  *cache.Cache
	ttl    time.Duration
}

func NewStore(logger *slog.Logger, ttl, cleanupInterval time.Duration) *Store {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(key string, _ interface{}) {
		logger.Debug("Map session expired", slog.String("session_id", key))
	})
	return &Store{
		logger: logger,
		cache:  c,
		ttl:    ttl,
	}
}

// Create starts a session for an itinerary and returns it.
func (s *Store) Create(ctx context.Context, itineraryID string) *Session {
	sess := New(itineraryID)
	s.cache.Set(sess.ID.String(), &entry{session: sess}, cache.DefaultExpiration)
	s.logger.InfoContext(ctx, "Map session created",
		slog.String("session_id", sess.ID.String()),
		slog.String("itinerary_id", itineraryID))
	return sess
}

func (s *Store) lookup(id uuid.UUID) (*entry, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, id)
	}
	e := v.(*entry)
	// Sliding expiry: every access pushes the deadline back.
	s.cache.Set(id.String(), e, cache.DefaultExpiration)
	return e, nil
}

// With runs fn with exclusive access to the session. Calls for the same
// session are serialized; different sessions proceed independently.
func (s *Store) With(id uuid.UUID, fn func(*Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Snapshot returns a copy of the session's entities.
func (s *Store) Snapshot(id uuid.UUID) (types.EntitySet, *Session, error) {
	var (
		set  types.EntitySet
		meta *Session
	)
	err := s.With(id, func(sess *Session) error {
		set = sess.Entities()
		meta = &Session{ID: sess.ID, ItineraryID: sess.ItineraryID, StartedAt: sess.StartedAt}
		return nil
	})
	return set, meta, err
}

// TrySnapshot is Snapshot without waiting: busy reports that a pipeline run
// currently holds the session.
func (s *Store) TrySnapshot(id uuid.UUID) (set types.EntitySet, busy bool, err error) {
	e, err := s.lookup(id)
	if err != nil {
		return set, false, err
	}
	if !e.mu.TryLock() {
		return set, true, nil
	}
	defer e.mu.Unlock()
	return e.session.Entities(), false, nil
}

// Exists reports whether the session is live, refreshing its expiry.
func (s *Store) Exists(id uuid.UUID) bool {
	_, err := s.lookup(id)
	return err == nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
}

func (s *Store) Count() int {
	return s.cache.ItemCount()
}
