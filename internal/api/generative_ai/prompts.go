package generativeAI

import (
	"fmt"
	"strings"
)

// ItineraryPrompt asks for a day-by-day plan written with the place markers
// the extraction stage understands.
func ItineraryPrompt(request, city, country string) string {
	destination := city
	if country != "" {
		destination = fmt.Sprintf("%s, %s", city, country)
	}
	var b strings.Builder
	fmt.Fprintf(&b, `
        Write a day-by-day travel itinerary for %s.
        Traveller request: %s

        Rules:
        - Start every day on its own line with "Day N".
        - Group each day into morning, afternoon and evening.
        - Prefix every place with exactly one marker and wrap its name in brackets:
          🏨 [Hotel Name] for the accommodation,
          🍽️ [Restaurant Name] for places to eat,
          📍 [Attraction Name] for sights and activities,
          🌙 [Venue Name] for bars, shows and nightlife.
        - When you know the coordinates, append them right after the name as (lat, lng).
        - Mention check-in and check-out with the hotel name, e.g. "check-in at Hotel Name".
        - Use real, existing places only.`, destination, strings.TrimSpace(request))
	return b.String()
}
