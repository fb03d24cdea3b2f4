package mapsession

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

func entity(name string, t types.EntityType) types.CanonicalEntity {
	return types.CanonicalEntity{ID: uuid.NewString(), Name: name, NormalizedName: name, Type: t}
}

func TestSession_MergeMonotonic(t *testing.T) {
	sess := New("itinerary-1")

	calls := [][]types.CanonicalEntity{
		{entity("sunset", types.EntityHotel), entity("luna", types.EntityRestaurant)},
		{entity("luna", types.EntityRestaurant), entity("alfama", types.EntityAttraction)},
		{entity("sunset", types.EntityHotel), entity("alfama", types.EntityAttraction), entity("fado", types.EntityAttraction)},
		{entity("luna", types.EntityAttraction)},
	}

	distinct := map[string]bool{}
	emitted := map[string]int{}
	for _, batch := range calls {
		for _, e := range batch {
			distinct[e.Key()] = true
		}
		for _, added := range sess.Merge(batch) {
			assert.True(t, added.IsNew)
			emitted[added.Key()]++
		}
	}

	assert.Equal(t, len(distinct), sess.Len())
	for key, n := range emitted {
		assert.Equal(t, 1, n, "entity %s emitted more than once", key)
	}
	assert.Len(t, emitted, len(distinct))
}

func TestSession_MergeFillsMissingCoordinates(t *testing.T) {
	sess := New("itinerary-1")
	first := entity("sunset", types.EntityHotel)
	sess.Merge([]types.CanonicalEntity{first})

	located := first
	located.SetCoordinates(types.Coordinates{Lat: 34.1, Lng: -118.3})
	located.IsApproximateLocation = true
	assert.Empty(t, sess.Merge([]types.CanonicalEntity{located}))

	got, ok := sess.Entity(first.ID)
	require.True(t, ok)
	assert.Equal(t, 34.1, *got.Lat)
	assert.True(t, got.IsApproximateLocation)

	moved := first
	moved.SetCoordinates(types.Coordinates{Lat: 1, Lng: 1})
	sess.Merge([]types.CanonicalEntity{moved})
	got, _ = sess.Entity(first.ID)
	assert.Equal(t, 34.1, *got.Lat, "existing coordinates are kept")
}

func TestSession_ReplaceDiscardsPriorEntities(t *testing.T) {
	sess := New("itinerary-1")
	sess.Merge([]types.CanonicalEntity{entity("sunset", types.EntityHotel), entity("luna", types.EntityRestaurant)})

	added := sess.Replace("itinerary-2", []types.CanonicalEntity{entity("alfama", types.EntityAttraction)})
	require.Len(t, added, 1)
	assert.Equal(t, 1, sess.Len())
	assert.Equal(t, "itinerary-2", sess.ItineraryID)
	assert.False(t, sess.Seen(types.EntityKey(types.EntityHotel, "sunset")))

	set := sess.Entities()
	assert.Empty(t, set.Hotels)
	require.Len(t, set.Attractions, 1)
	assert.False(t, set.Attractions[0].IsNew)
}

func TestSession_OverrideLocation(t *testing.T) {
	sess := New("itinerary-1")
	e := entity("sunset", types.EntityHotel)
	e.SetCoordinates(types.Coordinates{Lat: 48.85, Lng: 2.35})
	e.IsApproximateLocation = true
	sess.Merge([]types.CanonicalEntity{e})

	updated, err := sess.OverrideLocation(e.ID, types.Coordinates{Lat: 34.09, Lng: -118.36})
	require.NoError(t, err)
	assert.False(t, updated.IsApproximateLocation)
	assert.Equal(t, 34.09, *updated.Lat)

	_, err = sess.OverrideLocation("missing", types.Coordinates{})
	assert.ErrorIs(t, err, types.ErrEntityNotFound)
}

func TestSession_Day(t *testing.T) {
	sess := New("itinerary-1")
	a, b, c := entity("a", types.EntityAttraction), entity("b", types.EntityRestaurant), entity("c", types.EntityHotel)
	a.DayIndex, b.DayIndex, c.DayIndex = 1, 2, 1
	sess.Merge([]types.CanonicalEntity{a, b, c})

	day1 := sess.Day(1)
	require.Len(t, day1, 2)
	assert.Equal(t, "a", day1[0].Name)
	assert.Equal(t, "c", day1[1].Name)
}

func TestStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore(logger, time.Minute, time.Minute)

	sess := store.Create(t.Context(), "itinerary-1")
	assert.Equal(t, 1, store.Count())

	err := store.With(sess.ID, func(s *Session) error {
		s.Merge([]types.CanonicalEntity{entity("luna", types.EntityRestaurant)})
		return nil
	})
	require.NoError(t, err)

	set, meta, err := store.Snapshot(sess.ID)
	require.NoError(t, err)
	assert.Len(t, set.Restaurants, 1)
	assert.Equal(t, "itinerary-1", meta.ItineraryID)

	sentinel := errors.New("boom")
	assert.ErrorIs(t, store.With(sess.ID, func(*Session) error { return sentinel }), sentinel)

	store.Delete(sess.ID)
	err = store.With(sess.ID, func(*Session) error { return nil })
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}
