package dedup

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/textutil"
)

var leadingGeneric = map[string]bool{
	"the": true, "hotel": true, "resort": true, "grand": true, "royal": true, "מלון": true,
}

var trailingGeneric = map[string]bool{
	"hotel": true, "resort": true, "inn": true, "suites": true, "suite": true,
	"lodge": true, "hostel": true, "motel": true, "apartments": true, "מלון": true,
}

var functionWords = map[string]bool{
	"and": true, "of": true, "at": true, "the": true, "a": true, "an": true,
	"in": true, "on": true, "by": true, "&": true, "ו": true, "של": true,
}

// hotelKeywords mark a name as referring to accommodation.
var hotelKeywords = []string{
	"hotel", "inn", "resort", "suites", "lodge", "hostel", "motel", "guesthouse", "b&b", "מלון", "אכסניה",
}

// NormalizeName reduces a display name to the form used for identity:
// folded, punctuation-free, without generic hotel words or function words.
func NormalizeName(name string) string {
	folded := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, textutil.Fold(name))

	words := strings.Fields(folded)
	for len(words) > 1 && leadingGeneric[words[0]] {
		words = words[1:]
	}
	for len(words) > 1 && trailingGeneric[words[len(words)-1]] {
		words = words[:len(words)-1]
	}

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !functionWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		kept = words
	}
	return strings.Join(kept, " ")
}

func isHotelLike(name string) bool {
	folded := textutil.Fold(name)
	for _, kw := range hotelKeywords {
		if textutil.ContainsWord(folded, kw) {
			return true
		}
	}
	return false
}

// isGenericHotelRef reports whether a normalized name says nothing beyond
// "the hotel".
func isGenericHotelRef(normalized string) bool {
	if normalized == "" {
		return true
	}
	for _, w := range strings.Fields(normalized) {
		if !leadingGeneric[w] && !trailingGeneric[w] && !functionWords[w] {
			return false
		}
	}
	return true
}

// wordsOverlap applies the shared-word heuristic: two or more shared words,
// or one shared word longer than five characters, or more than 70% of the
// shorter name's words present in the other.
func wordsOverlap(a, b string) bool {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}
	inB := make(map[string]bool, len(wb))
	for _, w := range wb {
		inB[w] = true
	}

	shared, long := 0, false
	seen := make(map[string]bool, len(wa))
	for _, w := range wa {
		if seen[w] || !inB[w] {
			continue
		}
		seen[w] = true
		shared++
		if utf8.RuneCountInString(w) > 5 {
			long = true
		}
	}

	shorter := min(len(wa), len(wb))
	return shared >= 2 || long || float64(shared)/float64(shorter) > 0.7
}
