package intent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/disambiguation"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/timeref"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var fixedNow = time.Date(2025, time.June, 11, 10, 30, 0, 0, time.UTC)

func setupIntentTest(t *testing.T) *ServiceImpl {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locations := disambiguation.NewServiceImpl(logger)
	resolver := timeref.NewServiceImplWithClock(logger, func() time.Time { return fixedNow })
	service, err := NewServiceImpl(logger, locations, resolver)
	require.NoError(t, err)
	return service
}

func TestServiceImpl_Validate_HotelDatesOptional(t *testing.T) {
	service := setupIntentTest(t)
	ctx := context.Background()

	res, err := service.Validate(ctx, types.IntentFindHotels,
		types.IntentData{"place": "Paris", "country": "France"}, nil, types.ValidationOptions{})
	require.NoError(t, err)

	assert.False(t, res.IsComplete)
	assert.Equal(t, []string{"budget_level"}, res.MissingFields)
	for _, f := range res.MissingFields {
		assert.NotContains(t, f, "date")
	}
	assert.Equal(t, "FR", res.EnhancedData.String("country_code"))

	t.Run("country stays mandatory", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentFindHotels,
			types.IntentData{"place": "Smallville", "budget_level": "mid"}, nil, types.ValidationOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"country"}, res.MissingFields)
	})

	t.Run("complete without dates", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentFindHotels,
			types.IntentData{"place": "Paris", "country": "France", "budget_level": 2}, nil, types.ValidationOptions{})
		require.NoError(t, err)
		assert.True(t, res.IsComplete)
		assert.Empty(t, res.MissingFields)
		assert.NoError(t, res.Err(types.IntentFindHotels))
	})
}

func TestServiceImpl_Validate_ConflictShortCircuits(t *testing.T) {
	service := setupIntentTest(t)

	res, err := service.Validate(context.Background(), types.IntentFindEvents,
		types.IntentData{"place": "Rome", "country": "USA"}, nil, types.ValidationOptions{})
	require.NoError(t, err)

	assert.False(t, res.IsComplete)
	assert.Equal(t, []string{types.LocationConfirmationField}, res.MissingFields)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, "Italy", res.Conflict.SuggestedCountry)

	var conflictErr *types.ConflictError
	require.True(t, errors.As(res.Err(types.IntentFindEvents), &conflictErr))
	assert.Equal(t, "Rome", conflictErr.Place)
}

func TestServiceImpl_Validate_TimeReference(t *testing.T) {
	service := setupIntentTest(t)
	ctx := context.Background()

	t.Run("relative phrase satisfies date", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentGetWeather,
			types.IntentData{"city": "Lisbon"}, nil,
			types.ValidationOptions{OriginalText: "weather in Lisbon tomorrow?"})
		require.NoError(t, err)
		assert.True(t, res.IsComplete)
		assert.Equal(t, "2025-06-12", res.EnhancedData.String("date"))
		require.NotNil(t, res.TimeReference)
		assert.True(t, res.TimeReference.IsTomorrow)
	})

	t.Run("explicit date is kept", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentGetWeather,
			types.IntentData{"place": "Lisbon", "date": "2025-07-01"}, nil,
			types.ValidationOptions{OriginalText: "tomorrow"})
		require.NoError(t, err)
		assert.Equal(t, "2025-07-01", res.EnhancedData.String("date"))
	})

	t.Run("no phrase leaves date missing", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentGetWeather,
			types.IntentData{"place": "Lisbon"}, nil,
			types.ValidationOptions{OriginalText: "weather in Lisbon"})
		require.NoError(t, err)
		assert.Equal(t, []string{"date"}, res.MissingFields)

		var missingErr *types.MissingFieldError
		require.True(t, errors.As(res.Err(types.IntentGetWeather), &missingErr))
		assert.Equal(t, []string{"date"}, missingErr.Fields)
	})
}

func TestServiceImpl_Validate_TripBackfill(t *testing.T) {
	service := setupIntentTest(t)
	start := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	trip := &types.TripContext{Place: "Kyoto", Country: "Japan", StartDate: &start}

	res, err := service.Validate(context.Background(), types.IntentPlanItinerary,
		types.IntentData{}, trip, types.ValidationOptions{})
	require.NoError(t, err)

	assert.True(t, res.IsComplete)
	assert.Equal(t, "Kyoto", res.EnhancedData.String("place"))
	assert.Equal(t, "Japan", res.EnhancedData.String("country"))
	assert.Equal(t, "2025-09-03", res.EnhancedData.String("start_date"))
}

func TestServiceImpl_Validate_WeatherNeedsCountry(t *testing.T) {
	service := setupIntentTest(t)
	ctx := context.Background()

	t.Run("unknown place without country", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentGetWeather,
			types.IntentData{"place": "Reykjavik", "date": "2025-06-12"}, nil, types.ValidationOptions{})
		require.NoError(t, err)
		assert.False(t, res.IsComplete)
		assert.Equal(t, []string{"country"}, res.MissingFields)
	})

	t.Run("known place fills country", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentGetWeather,
			types.IntentData{"place": "Tokyo", "date": "2025-06-12"}, nil, types.ValidationOptions{})
		require.NoError(t, err)
		assert.True(t, res.IsComplete)
		assert.Empty(t, res.MissingFields)
		assert.Equal(t, "Japan", res.EnhancedData.String("country"))
	})
}

func TestServiceImpl_Validate_TripCountryOnlyForTripPlace(t *testing.T) {
	service := setupIntentTest(t)
	ctx := context.Background()
	trip := &types.TripContext{Place: "Paris", Country: "France"}

	t.Run("other place keeps its own country", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentFindRestaurants,
			types.IntentData{"place": "Rome"}, trip,
			types.ValidationOptions{OriginalText: "restaurants in Rome"})
		require.NoError(t, err)
		assert.Nil(t, res.Conflict)
		assert.True(t, res.IsComplete)
		assert.Equal(t, "Italy", res.EnhancedData.String("country"))
	})

	t.Run("trip place spelled differently", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentFindRestaurants,
			types.IntentData{"place": " paris "}, trip, types.ValidationOptions{})
		require.NoError(t, err)
		assert.True(t, res.IsComplete)
		assert.Equal(t, "France", res.EnhancedData.String("country"))
	})

	t.Run("unknown place is not given the trip country", func(t *testing.T) {
		res, err := service.Validate(ctx, types.IntentFindRestaurants,
			types.IntentData{"place": "Smallville"}, trip, types.ValidationOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"country"}, res.MissingFields)
	})
}

func TestServiceImpl_Validate_UnknownIntent(t *testing.T) {
	service := setupIntentTest(t)

	_, err := service.Validate(context.Background(), "book_flight", types.IntentData{}, nil, types.ValidationOptions{})
	assert.ErrorIs(t, err, types.ErrUnknownIntent)
}

func TestNormalize(t *testing.T) {
	data := types.IntentData{
		"intent": "find_hotels",
		"collected": map[string]interface{}{
			"destination": " Lisbon ",
			"budget":      "cheap",
			"checkin":     "2025-08-01",
		},
		"country": "Portugal",
	}

	flat := Normalize(data)
	assert.Equal(t, "Lisbon", flat.String("place"))
	assert.Equal(t, "cheap", flat.String("budget_level"))
	assert.Equal(t, "2025-08-01", flat.String("check_in_date"))
	assert.Equal(t, "Portugal", flat.String("country"))
	assert.NotContains(t, flat, "collected")
	assert.NotContains(t, flat, "destination")

	t.Run("canonical name wins over alias", func(t *testing.T) {
		flat := Normalize(types.IntentData{"place": "Porto", "city": "Lisbon"})
		assert.Equal(t, "Porto", flat.String("place"))
	})
}
