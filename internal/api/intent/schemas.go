package intent

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// fieldSpec describes the fields an intent needs before it can be executed.
type fieldSpec struct {
	Required []string
	// DateField is the field satisfied by a relative time reference, if any.
	DateField string
	// DatesOptional drops every date-like field from Required.
	DatesOptional bool
}

var intentFields = map[types.IntentName]fieldSpec{
	types.IntentFindHotels: {
		Required:      []string{"place", "country", "check_in_date", "check_out_date", "budget_level"},
		DatesOptional: true,
	},
	types.IntentFindRestaurants: {
		Required: []string{"place", "country"},
	},
	types.IntentFindAttractions: {
		Required: []string{"place"},
	},
	types.IntentGetWeather: {
		Required:  []string{"place", "country", "date"},
		DateField: "date",
	},
	types.IntentFindEvents: {
		Required:  []string{"place", "country", "date"},
		DateField: "date",
	},
	types.IntentPlanItinerary: {
		Required:  []string{"place", "country", "start_date"},
		DateField: "start_date",
	},
}

// fieldAliases maps alternative field names onto the canonical flat shape.
var fieldAliases = map[string]string{
	"destination":  "place",
	"city":         "place",
	"location":     "place",
	"place_name":   "place",
	"country_name": "country",
	"budget":       "budget_level",
	"price_level":  "budget_level",
	"price_range":  "budget_level",
	"check_in":     "check_in_date",
	"checkin":      "check_in_date",
	"check_out":    "check_out_date",
	"checkout":     "check_out_date",
	"when":         "date",
	"day":          "date",
	"start":        "start_date",
	"from_date":    "start_date",
	"cuisine":      "cuisine_type",
}

func isDateField(name string) bool {
	return strings.Contains(name, "date")
}

// required is the effective required list after intent-level exceptions.
func (f fieldSpec) required() []string {
	if !f.DatesOptional {
		return f.Required
	}
	out := make([]string, 0, len(f.Required))
	for _, r := range f.Required {
		if !isDateField(r) {
			out = append(out, r)
		}
	}
	return out
}

// compileSchema builds the JSON schema an intent's flattened data is checked
// against. Only presence is enforced; value shapes are left to the handlers
// that consume the intent.
func compileSchema(name types.IntentName, spec fieldSpec) (*gojsonschema.Schema, error) {
	required := spec.required()
	props := make(map[string]interface{}, len(spec.Required))
	for _, field := range spec.Required {
		props[field] = map[string]interface{}{
			"type": []interface{}{"string", "number", "integer"},
		}
	}
	reqList := make([]interface{}, len(required))
	for i, r := range required {
		reqList[i] = r
	}

	schemaMap := map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      string(name),
		"type":       "object",
		"properties": props,
		"required":   reqList,
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", name, err)
	}
	return schema, nil
}
