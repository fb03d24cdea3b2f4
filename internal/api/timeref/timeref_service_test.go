package timeref

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// Wednesday.
var fixedNow = time.Date(2025, time.June, 11, 10, 30, 0, 0, time.UTC)

func setupTimeRefTest(now time.Time) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImplWithClock(logger, func() time.Time { return now })
}

func TestServiceImpl_Resolve_Tomorrow(t *testing.T) {
	service := setupTimeRefTest(fixedNow)
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		lang types.Language
	}{
		{"english", "What's the weather tomorrow in Lisbon?", types.LanguageEnglish},
		{"hebrew", "מה מזג האוויר מחר בליסבון?", types.LanguageHebrew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := service.Resolve(ctx, tt.text)
			require.NotNil(t, ref)
			assert.True(t, ref.HasReference)
			assert.True(t, ref.IsTomorrow)
			assert.False(t, ref.IsToday || ref.IsCurrent || ref.IsWeekend)
			assert.Equal(t, "2025-06-12", ref.Date)
			assert.Equal(t, tt.lang, ref.Language)
		})
	}
}

func TestServiceImpl_Resolve_Families(t *testing.T) {
	service := setupTimeRefTest(fixedNow)
	ctx := context.Background()

	t.Run("current", func(t *testing.T) {
		ref := service.Resolve(ctx, "Is it raining right now?")
		require.NotNil(t, ref)
		assert.True(t, ref.IsCurrent)
		assert.Equal(t, "2025-06-11", ref.Date)
	})

	t.Run("today", func(t *testing.T) {
		ref := service.Resolve(ctx, "Any concerts tonight?")
		require.NotNil(t, ref)
		assert.True(t, ref.IsToday)
		assert.Equal(t, "2025-06-11", ref.Date)
	})

	t.Run("current outranks tomorrow", func(t *testing.T) {
		ref := service.Resolve(ctx, "I'm currently planning for tomorrow")
		require.NotNil(t, ref)
		assert.True(t, ref.IsCurrent)
		assert.False(t, ref.IsTomorrow)
	})

	t.Run("now inside another word does not match", func(t *testing.T) {
		assert.Nil(t, service.Resolve(ctx, "Will there be snow in the Alps?"))
	})

	t.Run("english weekend starts saturday", func(t *testing.T) {
		ref := service.Resolve(ctx, "Hotels for this weekend")
		require.NotNil(t, ref)
		assert.True(t, ref.IsWeekend)
		assert.Equal(t, "2025-06-14", ref.Date)
	})

	t.Run("hebrew weekend starts friday", func(t *testing.T) {
		ref := service.Resolve(ctx, "מלונות לסוף השבוע")
		require.NotNil(t, ref)
		assert.True(t, ref.IsWeekend)
		assert.Equal(t, "2025-06-13", ref.Date)
		assert.Equal(t, types.LanguageHebrew, ref.Language)
	})

	t.Run("cross-language phrase in english text", func(t *testing.T) {
		ref := service.Resolve(ctx, "weather מחר please")
		require.NotNil(t, ref)
		assert.True(t, ref.IsTomorrow)
	})

	t.Run("no reference", func(t *testing.T) {
		assert.Nil(t, service.Resolve(ctx, "Find me a sushi place"))
		assert.Nil(t, service.Resolve(ctx, "   "))
	})
}

func TestNextWeekendStart(t *testing.T) {
	sunday := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, time.June, 14, 9, 0, 0, 0, time.UTC)

	// Past the current weekend's start: next Saturday, not yesterday.
	assert.Equal(t, "2025-06-21", NextWeekendStart(sunday, types.LanguageEnglish).Format(isoDate))
	assert.Equal(t, "2025-06-20", NextWeekendStart(sunday, types.LanguageHebrew).Format(isoDate))
	assert.Equal(t, "2025-06-14", NextWeekendStart(saturday, types.LanguageEnglish).Format(isoDate))
	assert.Equal(t, "2025-06-20", NextWeekendStart(saturday, types.LanguageHebrew).Format(isoDate))
}
