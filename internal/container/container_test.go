package container

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/config"
)

func TestNewContainer_WithoutOptionalBackends(t *testing.T) {
	var cfg config.Config
	cfg.Geocoding.FallbackCity = "Lisbon"
	cfg.Geocoding.FallbackLat = 38.7223
	cfg.Geocoding.FallbackLng = -9.1393

	c, err := NewContainer(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Pool)
	assert.NotNil(t, c.Metrics)
	assert.NotNil(t, c.Sessions)
	assert.NotNil(t, c.Broadcaster)
	assert.NotNil(t, c.ItineraryService)
	assert.NotNil(t, c.ItineraryHandler)
}
