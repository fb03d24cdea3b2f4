package types

import "time"

type IntentName string

const (
	IntentFindHotels      IntentName = "find_hotels"
	IntentFindRestaurants IntentName = "find_restaurants"
	IntentFindAttractions IntentName = "find_attractions"
	IntentGetWeather      IntentName = "get_weather"
	IntentFindEvents      IntentName = "find_events"
	IntentPlanItinerary   IntentName = "plan_itinerary"
)

// IntentData is a flat field-name to value mapping.
type IntentData map[string]interface{}

// String returns the field as a trimmed string, or "" when absent.
func (d IntentData) String(field string) string {
	v, ok := d[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// TripContext is the persisted trip a conversation belongs to. It is only
// read, never written, by the pipeline.
type TripContext struct {
	Place     string     `json:"place,omitempty"`
	Country   string     `json:"country,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type ValidationOptions struct {
	OriginalText string
}

type ValidationResult struct {
	IsComplete    bool              `json:"is_complete"`
	MissingFields []string          `json:"missing_fields"`
	EnhancedData  IntentData        `json:"enhanced_data"`
	Conflict      *LocationConflict `json:"conflict,omitempty"`
	TimeReference *TimeReference    `json:"time_reference,omitempty"`
}

// LocationConfirmationField is the synthetic missing field reported when the
// place/country pairing must be confirmed.
const LocationConfirmationField = "location_confirmation"

// Err converts an incomplete result into its domain error, or nil.
func (r ValidationResult) Err(intent IntentName) error {
	if r.IsComplete {
		return nil
	}
	if r.Conflict != nil {
		return &ConflictError{Place: r.EnhancedData.String("place"), Conflict: *r.Conflict}
	}
	return &MissingFieldError{Intent: intent, Fields: r.MissingFields}
}
