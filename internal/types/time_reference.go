package types

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHebrew  Language = "he"
)

// TimeReference is a canonical reading of a natural-language time expression.
// At most one of the flags is set and Date is derived from it.
type TimeReference struct {
	HasReference bool     `json:"has_reference"`
	Date         string   `json:"date,omitempty"` // ISO 8601, 2006-01-02
	IsCurrent    bool     `json:"is_current,omitempty"`
	IsToday      bool     `json:"is_today,omitempty"`
	IsTomorrow   bool     `json:"is_tomorrow,omitempty"`
	IsWeekend    bool     `json:"is_weekend,omitempty"`
	Language     Language `json:"language"`
}

// IsRelative reports whether any relative-time flag is set.
func (t *TimeReference) IsRelative() bool {
	if t == nil {
		return false
	}
	return t.IsCurrent || t.IsToday || t.IsTomorrow || t.IsWeekend
}
