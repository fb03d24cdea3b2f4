package extraction

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// markerTypes maps a marker's base rune (variation selectors ignored) to the
// entity type it introduces.
var markerTypes = map[rune]types.EntityType{
	'🏨': types.EntityHotel,
	'🍽': types.EntityRestaurant,
	'🍴': types.EntityRestaurant,
	'📍': types.EntityAttraction,
	'🏛': types.EntityAttraction,
	'🎯': types.EntityAttraction,
	'🌙': types.EntityEveningVenue,
	'🍸': types.EntityEveningVenue,
	'🎭': types.EntityEveningVenue,
}

const (
	variationSelector = '\uFE0F'
	zeroWidthJoiner   = '\u200D'
)

var dayHeader = regexp.MustCompile(`(?i)^\s*#*\s*(?:day|יום)\s+(\d{1,2})\b`)

// IsDayHeader reports whether line opens a new itinerary day.
func IsDayHeader(line string) bool {
	return dayHeader.MatchString(stripDecoration(line))
}

var slotWords = []struct {
	re   *regexp.Regexp
	slot types.TimeSlot
}{
	{regexp.MustCompile(`(?i)\b(morning|breakfast|brunch)\b|בוקר`), types.SlotMorning},
	{regexp.MustCompile(`(?i)\b(afternoon|lunch|midday)\b|צהריים`), types.SlotAfternoon},
	{regexp.MustCompile(`(?i)\b(evening|dinner|night|tonight)\b|ערב|לילה`), types.SlotEvening},
}

const (
	checkInOutWords = `check[\s-]?in|check[\s-]?out|checking\s+(?:in|out)`
	travelWords     = `arrive|arrival|depart(?:ure)?`
	hebrewCheck     = `צ['׳]?ק[\s-]?(?:אין|אאוט|אוט)\s*(?:ב|מ)?`
	hebrewTravel    = `הגעה\s+ל|עזיבת\s+|יציאה\s+מ`
	placeTail       = `\s*:?\s*([^,.;:!?()\[\]\n]+)`
)

func phrasePattern(english, hebrew string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:\b(?:` + english + `)\b(?:\s+(?:at|from|to|in|of))?(?:\s+the)?|` + hebrew + `)` + placeTail)
}

// checkPhrase finds arrival/departure wording followed by the place it refers
// to. The place runs until punctuation; connector words are trimmed later.
var checkPhrase = phrasePattern(checkInOutWords+`|`+travelWords, hebrewCheck+`|`+hebrewTravel)

// stayPhrase is the narrower check-in/out wording that yields a hotel mention
// even without a marker. "Arrive in Lisbon" names a city, not a stay.
var stayPhrase = phrasePattern(checkInOutWords, hebrewCheck)

// connectors end the place name that follows a check-in/out phrase.
var connectors = map[string]bool{
	"and": true, "then": true, "before": true, "after": true, "for": true,
	"with": true, "at": true, "by": true, "around": true, "on": true,
	"ו": true, "ואז": true, "לפני": true, "אחרי": true, "עם": true,
}

// StripCheckPhrase reports whether s is a check-in/out mention and returns the
// place name it refers to with the phrase itself removed.
func StripCheckPhrase(s string) (string, bool) {
	m := checkPhrase.FindStringSubmatchIndex(s)
	if m == nil {
		return "", false
	}
	return trimAtConnector(s[m[2]:m[3]]), true
}

// IsCheckPhrase reports whether s contains arrival/departure vocabulary.
func IsCheckPhrase(s string) bool {
	return checkPhrase.MatchString(s)
}

func trimAtConnector(place string) string {
	words := strings.Fields(place)
	for i, w := range words {
		if i > 0 && connectors[strings.ToLower(w)] {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

func slotFor(line string) (types.TimeSlot, bool) {
	best, bestAt := types.TimeSlot(""), -1
	for _, sw := range slotWords {
		if loc := sw.re.FindStringIndex(line); loc != nil && (bestAt < 0 || loc[0] < bestAt) {
			best, bestAt = sw.slot, loc[0]
		}
	}
	return best, bestAt >= 0
}
