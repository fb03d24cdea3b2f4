package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-itinerary-mapsync/app/db"
	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/config"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/dedup"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/disambiguation"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/extraction"
	generativeAI "github.com/FACorreiaa/go-itinerary-mapsync/internal/api/generative_ai"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/geocoding"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/intent"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/itinerary"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsession"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsync"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/timeref"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/trip"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	Metrics          *metrics.AppMetrics
	Sessions         *mapsession.Store
	Broadcaster      *mapsync.Broadcaster
	ItineraryService *itinerary.ServiceImpl
	ItineraryHandler *itinerary.HandlerImpl
}

// NewContainer wires every service. Postgres, the external geocoder and the
// model client are each optional and left out when not configured.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	metrics.InitAppMetrics()
	m := metrics.Get()

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
	}

	var trips trip.Repository
	if cfg.Repositories.Postgres.Enabled {
		dbConfig, err := database.NewDatabaseConfig(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			return nil, err
		}
		pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
		if err != nil {
			return nil, err
		}
		if !database.WaitForDB(ctx, pool, logger) {
			pool.Close()
			return nil, fmt.Errorf("database not ready")
		}
		c.Pool = pool
		trips = trip.NewRepositoryImpl(pool, logger, m)
	} else {
		logger.Info("Postgres disabled, trip context lookups are unavailable")
	}

	var geoClient geocoding.Client
	if cfg.Geocoding.BaseURL != "" {
		client, err := geocoding.NewNominatimClient(geocoding.ClientConfig{
			BaseURL:   cfg.Geocoding.BaseURL,
			UserAgent: cfg.Geocoding.UserAgent,
			Timeout:   cfg.Geocoding.Timeout,
			CacheSize: cfg.Geocoding.CacheSize,
			Limit:     cfg.Geocoding.Limit,
		}, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		geoClient = client
	}

	geoConfig := geocoding.DefaultConfig()
	if cfg.Geocoding.FallbackCity != "" {
		geoConfig.FallbackName = cfg.Geocoding.FallbackCity
		geoConfig.Fallback = types.Coordinates{Lat: cfg.Geocoding.FallbackLat, Lng: cfg.Geocoding.FallbackLng}
	}
	if cfg.Geocoding.Concurrency > 0 {
		geoConfig.MaxConcurrent = cfg.Geocoding.Concurrency
	}

	// A nil *AIClient must not end up inside the interface.
	var streamer itinerary.TextStreamer
	if cfg.LLM.APIKey != "" {
		aiClient, err := generativeAI.NewAIClient(ctx, generativeAI.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		}, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		streamer = aiClient
	} else {
		logger.Warn("No model API key configured, itinerary streaming is disabled")
	}

	locations := disambiguation.NewServiceImpl(logger)
	timeResolver := timeref.NewServiceImpl(logger)
	validator, err := intent.NewServiceImpl(logger, locations, timeResolver)
	if err != nil {
		c.Close()
		return nil, err
	}

	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	cleanup := cfg.Session.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	c.Sessions = mapsession.NewStore(logger, ttl, cleanup)
	c.Broadcaster = mapsync.NewBroadcaster(logger, m, cfg.Session.EventBuffer)

	c.ItineraryService = itinerary.NewServiceImpl(
		logger,
		extraction.NewServiceImpl(logger, m),
		dedup.NewServiceImpl(logger),
		geocoding.NewServiceImpl(logger, geoClient, m, geoConfig),
		locations,
		mapsync.NewEmitter(c.Broadcaster, logger),
		streamer,
		m,
	)
	c.ItineraryHandler = itinerary.NewHandlerImpl(itinerary.HandlerDeps{
		Service:        c.ItineraryService,
		Sessions:       c.Sessions,
		Broadcaster:    c.Broadcaster,
		Disambiguation: locations,
		TimeResolver:   timeResolver,
		Validator:      validator,
		Trips:          trips,
		Metrics:        m,
	}, logger)

	return c, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
