package geocoding

import (
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/textutil"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// cityCenters holds well-known city center coordinates keyed by folded name.
// Hebrew spellings point at the same centers.
var cityCenters = map[string]types.Coordinates{
	"paris":         {Lat: 48.8566, Lng: 2.3522},
	"london":        {Lat: 51.5074, Lng: -0.1278},
	"rome":          {Lat: 41.9028, Lng: 12.4964},
	"lisbon":        {Lat: 38.7223, Lng: -9.1393},
	"porto":         {Lat: 41.1579, Lng: -8.6291},
	"madrid":        {Lat: 40.4168, Lng: -3.7038},
	"barcelona":     {Lat: 41.3874, Lng: 2.1686},
	"seville":       {Lat: 37.3891, Lng: -5.9845},
	"valencia":      {Lat: 39.4699, Lng: -0.3763},
	"berlin":        {Lat: 52.5200, Lng: 13.4050},
	"munich":        {Lat: 48.1351, Lng: 11.5820},
	"amsterdam":     {Lat: 52.3676, Lng: 4.9041},
	"brussels":      {Lat: 50.8503, Lng: 4.3517},
	"vienna":        {Lat: 48.2082, Lng: 16.3738},
	"prague":        {Lat: 50.0755, Lng: 14.4378},
	"budapest":      {Lat: 47.4979, Lng: 19.0402},
	"athens":        {Lat: 37.9838, Lng: 23.7275},
	"istanbul":      {Lat: 41.0082, Lng: 28.9784},
	"florence":      {Lat: 43.7696, Lng: 11.2558},
	"venice":        {Lat: 45.4408, Lng: 12.3155},
	"milan":         {Lat: 45.4642, Lng: 9.1900},
	"naples":        {Lat: 40.8518, Lng: 14.2681},
	"dublin":        {Lat: 53.3498, Lng: -6.2603},
	"edinburgh":     {Lat: 55.9533, Lng: -3.1883},
	"copenhagen":    {Lat: 55.6761, Lng: 12.5683},
	"stockholm":     {Lat: 59.3293, Lng: 18.0686},
	"reykjavik":     {Lat: 64.1466, Lng: -21.9426},
	"tel aviv":      {Lat: 32.0853, Lng: 34.7818},
	"jerusalem":     {Lat: 31.7683, Lng: 35.2137},
	"haifa":         {Lat: 32.7940, Lng: 34.9896},
	"eilat":         {Lat: 29.5577, Lng: 34.9519},
	"dubai":         {Lat: 25.2048, Lng: 55.2708},
	"bangkok":       {Lat: 13.7563, Lng: 100.5018},
	"tokyo":         {Lat: 35.6762, Lng: 139.6503},
	"kyoto":         {Lat: 35.0116, Lng: 135.7681},
	"sydney":        {Lat: -33.8688, Lng: 151.2093},
	"new york":      {Lat: 40.7128, Lng: -74.0060},
	"los angeles":   {Lat: 34.0522, Lng: -118.2437},
	"san francisco": {Lat: 37.7749, Lng: -122.4194},
	"chicago":       {Lat: 41.8781, Lng: -87.6298},
	"miami":         {Lat: 25.7617, Lng: -80.1918},
	"las vegas":     {Lat: 36.1699, Lng: -115.1398},
	"mexico city":   {Lat: 19.4326, Lng: -99.1332},
	"buenos aires":  {Lat: -34.6037, Lng: -58.3816},
	"פריז":          {Lat: 48.8566, Lng: 2.3522},
	"לונדון":        {Lat: 51.5074, Lng: -0.1278},
	"רומא":          {Lat: 41.9028, Lng: 12.4964},
	"ליסבון":        {Lat: 38.7223, Lng: -9.1393},
	"ברצלונה":       {Lat: 41.3874, Lng: 2.1686},
	"ברלין":         {Lat: 52.5200, Lng: 13.4050},
	"אמסטרדם":       {Lat: 52.3676, Lng: 4.9041},
	"פראג":          {Lat: 50.0755, Lng: 14.4378},
	"תל אביב":       {Lat: 32.0853, Lng: 34.7818},
	"ירושלים":       {Lat: 31.7683, Lng: 35.2137},
	"חיפה":          {Lat: 32.7940, Lng: 34.9896},
	"אילת":          {Lat: 29.5577, Lng: 34.9519},
	"ניו יורק":      {Lat: 40.7128, Lng: -74.0060},
}

// knownCity finds the longest city name that occurs as a whole word in text.
func knownCity(text string) (types.Coordinates, string, bool) {
	folded := textutil.Fold(text)
	if folded == "" {
		return types.Coordinates{}, "", false
	}
	best := ""
	for name := range cityCenters {
		if len(name) > len(best) && textutil.ContainsWord(folded, name) {
			best = name
		}
	}
	if best == "" {
		return types.Coordinates{}, "", false
	}
	return cityCenters[best], best, true
}
