package timeref

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/textutil"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

const isoDate = "2006-01-02"

type family int

const (
	familyCurrent family = iota
	familyToday
	familyTomorrow
	familyWeekend
)

// patternFamily holds the English and Hebrew spellings of one class of time
// expression. English uses word-bounded regexps; Hebrew words take prefixes
// (ב, ו, ה) so they are matched as substrings.
type patternFamily struct {
	family  family
	english *regexp.Regexp
	hebrew  []string
}

// families are checked in this order; the first hit wins.
var families = []patternFamily{
	{
		family:  familyCurrent,
		english: regexp.MustCompile(`(?i)\b(right now|now|currently|at the moment|at this moment)\b`),
		hebrew:  []string{"עכשיו", "כרגע", "ברגע זה", "כעת"},
	},
	{
		family:  familyToday,
		english: regexp.MustCompile(`(?i)\b(today|tonight|this evening|this afternoon|this morning)\b`),
		hebrew:  []string{"היום", "הערב", "הלילה"},
	},
	{
		family:  familyTomorrow,
		english: regexp.MustCompile(`(?i)\b(tomorrow|tmrw)\b`),
		hebrew:  []string{"מחר"},
	},
	{
		family:  familyWeekend,
		english: regexp.MustCompile(`(?i)\b(this weekend|the weekend|weekend)\b`),
		hebrew:  []string{"סוף השבוע", "סוף שבוע", "סופ\"ש", "סופש"},
	},
}

var _ Service = (*ServiceImpl)(nil)

// Service extracts relative time expressions from user text.
type Service interface {
	Resolve(ctx context.Context, text string) *types.TimeReference
}

type ServiceImpl struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return NewServiceImplWithClock(logger, time.Now)
}

// NewServiceImplWithClock lets callers pin "now", mainly for tests.
func NewServiceImplWithClock(logger *slog.Logger, now func() time.Time) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		now:    now,
	}
}

// Resolve returns the first matching time reference in text, or nil when no
// pattern family matches.
func (s *ServiceImpl) Resolve(ctx context.Context, text string) *types.TimeReference {
	_, span := otel.Tracer("TimeReference").Start(ctx, "Resolve")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lang := types.LanguageEnglish
	if textutil.HasHebrew(text) {
		lang = types.LanguageHebrew
	}

	for _, f := range families {
		if !f.matches(text) {
			continue
		}
		ref := s.build(f.family, lang)
		span.SetAttributes(attribute.String("time.date", ref.Date), attribute.String("time.language", string(lang)))
		s.logger.DebugContext(ctx, "Resolved time reference",
			slog.String("date", ref.Date),
			slog.String("language", string(lang)))
		return ref
	}
	return nil
}

func (f patternFamily) matches(text string) bool {
	if f.english.MatchString(text) {
		return true
	}
	for _, w := range f.hebrew {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func (s *ServiceImpl) build(f family, lang types.Language) *types.TimeReference {
	now := s.now()
	ref := &types.TimeReference{HasReference: true, Language: lang}

	switch f {
	case familyCurrent:
		ref.IsCurrent = true
		ref.Date = now.Format(isoDate)
	case familyToday:
		ref.IsToday = true
		ref.Date = now.Format(isoDate)
	case familyTomorrow:
		ref.IsTomorrow = true
		ref.Date = now.AddDate(0, 0, 1).Format(isoDate)
	case familyWeekend:
		ref.IsWeekend = true
		ref.Date = NextWeekendStart(now, lang).Format(isoDate)
	}
	return ref
}

// WeekendStart is the first day of the weekend in the given language's
// convention.
func WeekendStart(lang types.Language) time.Weekday {
	if lang == types.LanguageHebrew {
		return time.Friday
	}
	return time.Saturday
}

// NextWeekendStart returns the next occurrence of the weekend start day,
// counting today when today is the start day.
func NextWeekendStart(now time.Time, lang types.Language) time.Time {
	start := WeekendStart(lang)
	days := (int(start) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, days)
}
