package disambiguation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

func setupDisambiguationTest() *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImpl(logger)
}

func TestServiceImpl_Resolve(t *testing.T) {
	service := setupDisambiguationTest()
	ctx := context.Background()

	t.Run("conflicting country suggests the primary", func(t *testing.T) {
		res := service.Resolve(ctx, types.LocationQuery{Place: "Rome", Country: "USA"})
		require.NotNil(t, res.Conflict)
		assert.Equal(t, "Italy", res.Conflict.SuggestedCountry)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
		assert.Equal(t, "United States", res.Country)
		assert.True(t, res.NeedsConfirmation())
		assert.Contains(t, res.Conflict.Message, "Italy")
	})

	t.Run("country variants are standardized", func(t *testing.T) {
		res := service.Resolve(ctx, types.LocationQuery{Place: "London", Country: "UK"})
		assert.Equal(t, "United Kingdom", res.Country)
		assert.Equal(t, "GB", res.CountryCode)
		assert.Equal(t, types.ConfidenceHigh, res.Confidence)
		assert.Nil(t, res.Conflict)
	})

	t.Run("missing country is filled from the primary", func(t *testing.T) {
		res := service.Resolve(ctx, types.LocationQuery{Place: "valencia"})
		assert.Equal(t, "Valencia", res.Place)
		assert.Equal(t, "Spain", res.Country)
		assert.Equal(t, types.ConfidenceMedium, res.Confidence)

		unique := service.Resolve(ctx, types.LocationQuery{Place: "Rome"})
		assert.Equal(t, "Italy", unique.Country)
		assert.Equal(t, types.ConfidenceHigh, unique.Confidence)
	})

	t.Run("listed alternative is accepted", func(t *testing.T) {
		res := service.Resolve(ctx, types.LocationQuery{Place: "Córdoba", Country: "Argentina"})
		assert.Nil(t, res.Conflict)
		assert.Equal(t, "Argentina", res.Country)
		assert.Equal(t, types.ConfidenceMedium, res.Confidence)
	})

	t.Run("unknown place never guesses a country", func(t *testing.T) {
		res := service.Resolve(ctx, types.LocationQuery{Place: "Smallville"})
		assert.Equal(t, "", res.Country)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
		assert.Nil(t, res.Conflict)

		withCountry := service.Resolve(ctx, types.LocationQuery{Place: "Smallville", Country: "Nippon"})
		assert.Equal(t, "Japan", withCountry.Country)
		assert.Equal(t, types.ConfidenceLow, withCountry.Confidence)
	})

	t.Run("hebrew spellings resolve", func(t *testing.T) {
		res := service.Resolve(ctx, types.LocationQuery{Place: "רומא", Country: "איטליה"})
		assert.Equal(t, "Rome", res.Place)
		assert.Equal(t, "Italy", res.Country)
		assert.Nil(t, res.Conflict)
	})
}

func TestServiceImpl_Resolve_Idempotence(t *testing.T) {
	service := setupDisambiguationTest()
	ctx := context.Background()

	queries := []types.LocationQuery{
		{Place: "Rome", Country: "USA"},
		{Place: "Santiago"},
		{Place: "Paris", Country: "France"},
		{Place: "Nowhere", Country: "Deutschland"},
	}
	for _, q := range queries {
		first := service.Resolve(ctx, q)
		second := service.Resolve(ctx, q)
		assert.Equal(t, first, second, "query %+v", q)
	}

	for _, place := range []string{"Rome", "Santiago", "London", "Merida"} {
		filled := service.Resolve(ctx, types.LocationQuery{Place: place})
		again := service.Resolve(ctx, types.LocationQuery{Place: filled.Place, Country: filled.Country})
		assert.Nil(t, again.Conflict, "place %s", place)
		assert.Equal(t, filled.Country, again.Country)
	}
}

func TestServiceImpl_StandardizeCountry(t *testing.T) {
	service := setupDisambiguationTest()

	tests := map[string]string{
		"USA":          "United States",
		"u.s.a.":       "United States",
		"Nippon":       "Japan",
		"España":       "Spain",
		"  holland  ":  "Netherlands",
		"ארצות הברית":  "United States",
		"Narnia":       "Narnia",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, service.StandardizeCountry(in), "input %q", in)
	}
}
