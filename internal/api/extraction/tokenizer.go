package extraction

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

var (
	htmlTag   = regexp.MustCompile(`<[^>]*>`)
	emphasis  = strings.NewReplacer("**", "", "__", "", "*", "")
	symbolCat = []*unicode.RangeTable{unicode.So, unicode.Sk, unicode.Co, unicode.Cs, unicode.Cc}
)

// token is one bracketed marker found on a line. at is the offset of the token
// within the line's plain (marker-free) text, used to keep document order.
type token struct {
	marker string
	typ    types.EntityType
	name   string
	coords *types.Coordinates
	at     int
}

// scanLine walks a single line rune by rune. Marker tokens are returned in
// order; everything that is not part of a token is copied to plain.
func scanLine(line string) ([]token, string) {
	rs := []rune(line)
	var (
		tokens []token
		plain  strings.Builder
	)
	for i := 0; i < len(rs); {
		typ, isMarker := markerTypes[rs[i]]
		if !isMarker {
			plain.WriteRune(rs[i])
			i++
			continue
		}
		tok, next, ok := readMarker(rs, i, typ)
		if !ok {
			plain.WriteRune(rs[i])
			i++
			continue
		}
		tok.at = plain.Len()
		tokens = append(tokens, tok)
		plain.WriteByte(' ')
		i = next
	}
	return tokens, plain.String()
}

// readMarker expects rs[i] to be a marker rune. It accepts
//
//	marker decoration* '[' name ']' (decoration* '(' lat ',' lng ')')?
//
// where decoration is whitespace, emphasis characters or an HTML tag.
func readMarker(rs []rune, i int, typ types.EntityType) (token, int, bool) {
	tok := token{marker: string(rs[i]), typ: typ}
	j := i + 1
	if j < len(rs) && rs[j] == variationSelector {
		tok.marker += string(rs[j])
		j++
	}

	j = skipDecoration(rs, j)
	if j >= len(rs) || rs[j] != '[' {
		return token{}, 0, false
	}
	start := j + 1
	end := indexRune(rs, start, ']')
	if end < 0 {
		return token{}, 0, false
	}
	tok.name = CleanName(string(rs[start:end]))
	if tok.name == "" {
		return token{}, 0, false
	}
	j = end + 1

	k := skipDecoration(rs, j)
	if k < len(rs) && rs[k] == '(' {
		if closing := indexRune(rs, k+1, ')'); closing > 0 {
			if c, ok := parseCoordinates(string(rs[k+1 : closing])); ok {
				tok.coords = &c
				j = closing + 1
			}
		}
	}
	return tok, j, true
}

func skipDecoration(rs []rune, j int) int {
	for j < len(rs) {
		switch r := rs[j]; {
		case unicode.IsSpace(r), r == '*', r == '_', r == variationSelector, r == zeroWidthJoiner:
			j++
		case r == '<':
			closing := indexRune(rs, j+1, '>')
			if closing < 0 {
				return j
			}
			j = closing + 1
		default:
			return j
		}
	}
	return j
}

func indexRune(rs []rune, from int, r rune) int {
	for k := from; k < len(rs); k++ {
		if rs[k] == r {
			return k
		}
		if rs[k] == '\n' {
			return -1
		}
	}
	return -1
}

func parseCoordinates(s string) (types.Coordinates, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return types.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	c := types.Coordinates{Lat: lat, Lng: lng}
	return c, c.Valid()
}

// CleanName strips emphasis markup, symbol characters and stray brackets from
// a raw name and collapses whitespace.
func CleanName(raw string) string {
	s := htmlTag.ReplaceAllString(raw, " ")
	s = emphasis.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '[', r == ']', r == '_', r == variationSelector, r == zeroWidthJoiner:
			return ' '
		case unicode.IsOneOf(symbolCat, r):
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " ,;:-")
}

func stripDecoration(line string) string {
	return emphasis.Replace(htmlTag.ReplaceAllString(line, " "))
}

// lineState carries the day and slot context from one line to the next.
type lineState struct {
	day  int
	slot types.TimeSlot
}

func (st *lineState) advance(line string) {
	bare := stripDecoration(line)
	if m := dayHeader.FindStringSubmatch(bare); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			st.day = n
			st.slot = ""
		}
	}
	if slot, ok := slotFor(bare); ok {
		st.slot = slot
	}
}

// ExtractMentions parses itinerary text into raw mentions in document order.
// Text without any marker or check-in/out phrase yields an empty slice.
func ExtractMentions(text string) []types.RawEntityMention {
	mentions := []types.RawEntityMention{}
	var st lineState

	for _, line := range strings.Split(text, "\n") {
		st.advance(line)
		tokens, plain := scanLine(line)

		type positioned struct {
			at int
			m  types.RawEntityMention
		}
		var found []positioned

		for _, tok := range tokens {
			found = append(found, positioned{at: tok.at, m: types.RawEntityMention{
				Marker:            tok.marker,
				Name:              tok.name,
				Type:              tok.typ,
				InlineCoordinates: tok.coords,
				DayIndex:          st.day,
				TimeSlot:          st.slot,
			}})
		}

		for _, loc := range stayPhrase.FindAllStringSubmatchIndex(plain, -1) {
			place := CleanName(trimAtConnector(plain[loc[2]:loc[3]]))
			if place == "" {
				continue
			}
			found = append(found, positioned{at: loc[0], m: types.RawEntityMention{
				Name:     CleanName(plain[loc[0]:loc[2]] + " " + place),
				Type:     types.EntityHotel,
				DayIndex: st.day,
				TimeSlot: st.slot,
			}})
		}

		slices.SortStableFunc(found, func(a, b positioned) int { return a.at - b.at })
		for _, f := range found {
			mentions = append(mentions, f.m)
		}
	}
	return mentions
}
