package geocoding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Search(ctx context.Context, query string) ([]types.Coordinates, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Coordinates), args.Error(1)
}

var errServiceDown = errors.New("service unavailable")

func setupGeocodingTest(client Client) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultConfig()
	cfg.Seed = 42
	return NewServiceImpl(logger, client, nil, cfg)
}

func distanceKm(a, b types.Coordinates) float64 {
	dLat := (a.Lat - b.Lat) * kmPerDegree
	dLng := (a.Lng - b.Lng) * kmPerDegree * math.Cos(a.Lat*math.Pi/180)
	return math.Hypot(dLat, dLng)
}

func TestServiceImpl_Geocode_Tiers(t *testing.T) {
	ctx := context.Background()

	t.Run("known city with jitter", func(t *testing.T) {
		service := setupGeocodingTest(nil)
		res := service.Geocode(ctx, "Lisbon", "Lisbon", 0)
		assert.Equal(t, types.TierKnownCity, res.Tier)
		assert.True(t, res.IsApproximateLocation)
		assert.InDelta(t, 38.7223, res.Lat, 0.005)
		assert.InDelta(t, -9.1393, res.Lng, 0.005)
	})

	t.Run("external with cleaned address", func(t *testing.T) {
		client := new(MockClient)
		client.On("Search", mock.Anything, "Sunset Inn, Los Angeles").
			Return([]types.Coordinates{{Lat: 34.1, Lng: -118.3}}, nil).Once()
		service := setupGeocodingTest(client)

		res := service.Geocode(ctx, "Sunset Inn ★", "Los Angeles", 0)
		assert.Equal(t, types.TierExternal, res.Tier)
		assert.False(t, res.IsApproximateLocation)
		assert.Equal(t, types.Coordinates{Lat: 34.1, Lng: -118.3}, res.Coordinates)
		client.AssertExpectations(t)
	})

	t.Run("simplified address after empty result", func(t *testing.T) {
		client := new(MockClient)
		client.On("Search", mock.Anything, "Rua Augusta 24, Baixa, Lisbon").
			Return([]types.Coordinates{}, nil).Once()
		client.On("Search", mock.Anything, "Rua Augusta 24, Lisbon").
			Return([]types.Coordinates{{Lat: 38.71, Lng: -9.137}}, nil).Once()
		service := setupGeocodingTest(client)

		res := service.Geocode(ctx, "Rua Augusta 24 (near the arch), Baixa", "Lisbon", 0)
		assert.Equal(t, types.TierExternalSimplified, res.Tier)
		assert.False(t, res.IsApproximateLocation)
		client.AssertExpectations(t)
	})

	t.Run("ring around city after service errors", func(t *testing.T) {
		client := new(MockClient)
		client.On("Search", mock.Anything, mock.Anything).Return(nil, errServiceDown)
		service := setupGeocodingTest(client)

		res := service.Geocode(ctx, "Hidden Courtyard Bistro", "Lisbon", 3)
		assert.Equal(t, types.TierSyntheticRing, res.Tier)
		assert.True(t, res.IsApproximateLocation)
		assert.Less(t, distanceKm(res.Coordinates, cityCenters["lisbon"]), 1.2)
	})

	t.Run("global fallback when the city is unknown", func(t *testing.T) {
		client := new(MockClient)
		client.On("Search", mock.Anything, mock.Anything).Return(nil, errServiceDown)
		service := setupGeocodingTest(client)

		res := service.Geocode(ctx, "Some Place", "Atlantis", 0)
		assert.Equal(t, types.TierGlobalFallback, res.Tier)
		assert.True(t, res.IsApproximateLocation)
		assert.Less(t, distanceKm(res.Coordinates, service.config.Fallback), 1.2)
	})

	t.Run("empty input still yields a coordinate", func(t *testing.T) {
		service := setupGeocodingTest(nil)
		res := service.Geocode(ctx, "", "", 0)
		assert.Equal(t, types.TierGlobalFallback, res.Tier)
		assert.True(t, res.Valid())
	})
}

func TestServiceImpl_Geocode_RingPointsAreDistinct(t *testing.T) {
	service := setupGeocodingTest(nil)
	ctx := context.Background()

	var points []types.Coordinates
	for i := 0; i < 24; i++ {
		res := service.Geocode(ctx, "Unnamed Spot", "Rome", i)
		require.Equal(t, types.TierSyntheticRing, res.Tier)
		points = append(points, res.Coordinates)
	}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			assert.Greater(t, distanceKm(points[i], points[j]), 0.05, "points %d and %d overlap", i, j)
		}
	}
}

func TestServiceImpl_GeocodeBatch(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	client.On("Search", mock.Anything, "Sunset Inn, Los Angeles").
		Return([]types.Coordinates{{Lat: 34.09, Lng: -118.36}}, nil)
	client.On("Search", mock.Anything, mock.Anything).Return([]types.Coordinates{}, nil)
	service := setupGeocodingTest(client)

	luna := types.CanonicalEntity{Name: "Cafe Luna", Type: types.EntityRestaurant}
	luna.SetCoordinates(types.Coordinates{Lat: 34.05, Lng: -118.24})
	entities := []types.CanonicalEntity{
		luna,
		{Name: "Sunset Inn", Type: types.EntityHotel},
		{Name: "Secret Garden", Type: types.EntityAttraction},
	}

	out := service.GeocodeBatch(ctx, entities, "Los Angeles")
	require.Len(t, out, 3)

	assert.Equal(t, "Cafe Luna", out[0].Name)
	assert.Equal(t, 34.05, *out[0].Lat)
	assert.Equal(t, -118.24, *out[0].Lng)
	// inline coordinates are not tainted by a degraded batch
	assert.False(t, out[0].IsApproximateLocation)

	assert.Equal(t, "Sunset Inn", out[1].Name)
	assert.Equal(t, 34.09, *out[1].Lat)
	// exact hit, but a sibling fell back to the ring
	assert.True(t, out[1].IsApproximateLocation)

	assert.Equal(t, "Secret Garden", out[2].Name)
	require.True(t, out[2].HasCoordinates())
	assert.True(t, out[2].IsApproximateLocation)

	assert.False(t, entities[1].HasCoordinates(), "input slice must not be modified")
}

func TestServiceImpl_GeocodeBatch_AllExact(t *testing.T) {
	client := new(MockClient)
	client.On("Search", mock.Anything, mock.Anything).
		Return([]types.Coordinates{{Lat: 41.0, Lng: 2.0}}, nil)
	service := setupGeocodingTest(client)

	out := service.GeocodeBatch(context.Background(), []types.CanonicalEntity{
		{Name: "Casa Batlló"}, {Name: "Park Güell"},
	}, "Barcelona")
	for _, e := range out {
		assert.False(t, e.IsApproximateLocation)
	}
}

func TestKnownCity_WholeWords(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Paris", "paris"},
		{"Hotel du Louvre, Paris", "paris"},
		{"  LISBON ", "lisbon"},
		{"Parisian Bistro", ""},
		{"Lisbonense Cafe", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, name, ok := knownCity(tt.text)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestCleanAddress(t *testing.T) {
	tests := map[string]string{
		"Rua Augusta 24 (near the arch), Baixa": "Rua Augusta 24, Baixa",
		"  Café ★ Central!! ":                    "Café Central",
		"Shibuya Crossing #2 / Tokyo":            "Shibuya Crossing 2 Tokyo",
		"(only notes)":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanAddress(in), "input %q", in)
	}
}
