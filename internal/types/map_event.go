package types

import "time"

// MapEventType constants
const (
	MapEventEntities = "entities"
	MapEventRoute    = "route"
	MapEventFlyTo    = "fly_to"
	MapEventClear    = "clear"
	MapEventChunk    = "chunk"
	MapEventError    = "error"
	MapEventComplete = "complete"
)

// MapEvent is one notification to the rendering surface.
type MapEvent struct {
	Type      string         `json:"type"`
	EventID   string         `json:"event_id"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Entities  *EntityUpdate  `json:"entities,omitempty"`
	Route     *RouteDisplay  `json:"route,omitempty"`
	FlyTo     *FlyToLocation `json:"fly_to,omitempty"`
	Chunk     string         `json:"chunk,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type EntityUpdate struct {
	Entities    EntitySet `json:"entities"`
	Incremental bool      `json:"incremental"`
	AnimateNew  bool      `json:"animate_new"`
}

type RoutePoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

type RouteStyle struct {
	Color      string  `json:"color"`
	Width      int     `json:"width"`
	Opacity    float64 `json:"opacity"`
	Animate    bool    `json:"animate"`
	ShowArrows bool    `json:"show_arrows"`
}

type RouteDisplay struct {
	DayIndex int          `json:"day_index,omitempty"`
	Points   []RoutePoint `json:"points"`
	Style    RouteStyle   `json:"style"`
}

// FlyToLocation carries either a place name or explicit coordinates.
type FlyToLocation struct {
	Place string   `json:"place,omitempty"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}
