package types

// Confidence is a qualitative estimate of how trustworthy a resolved location is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// LocationQuery is the transient input to disambiguation.
type LocationQuery struct {
	Place   string `json:"place"`
	Country string `json:"country,omitempty"`
}

// LocationConflict is attached to a ResolvedLocation when the supplied country
// does not fit the place. The caller must ask the user before proceeding.
type LocationConflict struct {
	SuggestedCountry     string   `json:"suggested_country"`
	AlternativeCountries []string `json:"alternative_countries,omitempty"`
	Message              string   `json:"message"`
}

type ResolvedLocation struct {
	Place       string            `json:"place"`
	Country     string            `json:"country"`
	CountryCode string            `json:"country_code,omitempty"`
	Confidence  Confidence        `json:"confidence"`
	Conflict    *LocationConflict `json:"conflict,omitempty"`
}

// NeedsConfirmation reports whether the location must be confirmed by the user.
func (r ResolvedLocation) NeedsConfirmation() bool {
	return r.Conflict != nil
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair lies inside the WGS84 range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// GeocodeTier identifies which fallback strategy produced a coordinate.
type GeocodeTier int

const (
	TierNone GeocodeTier = iota
	TierKnownCity
	TierExternal
	TierExternalSimplified
	TierSyntheticRing
	TierGlobalFallback
)

func (t GeocodeTier) String() string {
	switch t {
	case TierKnownCity:
		return "known_city"
	case TierExternal:
		return "external"
	case TierExternalSimplified:
		return "external_simplified"
	case TierSyntheticRing:
		return "synthetic_ring"
	case TierGlobalFallback:
		return "global_fallback"
	default:
		return "none"
	}
}

// IsFallback reports whether the tier trades accuracy for availability.
func (t GeocodeTier) IsFallback() bool {
	return t == TierKnownCity || t == TierSyntheticRing || t == TierGlobalFallback
}

type GeocodeResult struct {
	Coordinates
	Tier                  GeocodeTier `json:"tier"`
	IsApproximateLocation bool        `json:"is_approximate_location"`
}
