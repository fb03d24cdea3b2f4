package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// Client looks up free-text addresses. Zero results and an error are both a
// failed lookup as far as the Geocoder is concerned.
type Client interface {
	Search(ctx context.Context, query string) ([]types.Coordinates, error)
}

type ClientConfig struct {
	BaseURL   string        // e.g. https://nominatim.openstreetmap.org
	UserAgent string        // Nominatim rejects requests without one
	Timeout   time.Duration // per request
	CacheSize int           // LRU entries, default 1000
	Limit     int           // candidates per query, default 1
}

var _ Client = (*NominatimClient)(nil)

type NominatimClient struct {
	config     ClientConfig
	logger     *slog.Logger
	httpClient *http.Client
	cache      *lru.Cache[string, []types.Coordinates]
}

func NewNominatimClient(config ClientConfig, logger *slog.Logger) (*NominatimClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("geocoding base url is required")
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 1000
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Limit <= 0 {
		config.Limit = 1
	}

	cache, err := lru.New[string, []types.Coordinates](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &NominatimClient{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache: cache,
	}, nil
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *NominatimClient) Search(ctx context.Context, query string) ([]types.Coordinates, error) {
	if cached, ok := c.cache.Get(query); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(c.config.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoding API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]types.Coordinates, 0, len(places))
	for _, p := range places {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lng, errLng := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLng != nil {
			c.logger.DebugContext(ctx, "Skipping malformed geocoding candidate",
				slog.String("lat", p.Lat), slog.String("lon", p.Lon))
			continue
		}
		coords := types.Coordinates{Lat: lat, Lng: lng}
		if coords.Valid() {
			results = append(results, coords)
		}
	}

	c.cache.Add(query, results)
	return results, nil
}
