package extraction

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

func setupExtractionTest() *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImpl(logger, nil)
}

func TestServiceImpl_Extract_EndToEndLine(t *testing.T) {
	service := setupExtractionTest()

	text := "Day 1: 🏨 [Sunset Inn], 🍽️ [Cafe Luna] (34.05,-118.24), check-out from Sunset Inn"
	mentions := service.Extract(context.Background(), text)
	require.Len(t, mentions, 3)

	assert.Equal(t, "Sunset Inn", mentions[0].Name)
	assert.Equal(t, types.EntityHotel, mentions[0].Type)
	assert.Equal(t, "🏨", mentions[0].Marker)
	assert.Nil(t, mentions[0].InlineCoordinates)

	assert.Equal(t, "Cafe Luna", mentions[1].Name)
	assert.Equal(t, types.EntityRestaurant, mentions[1].Type)
	require.NotNil(t, mentions[1].InlineCoordinates)
	assert.Equal(t, types.Coordinates{Lat: 34.05, Lng: -118.24}, *mentions[1].InlineCoordinates)

	assert.Equal(t, "check-out from Sunset Inn", mentions[2].Name)
	assert.Equal(t, types.EntityHotel, mentions[2].Type)
	assert.Empty(t, mentions[2].Marker)

	for _, m := range mentions {
		assert.Equal(t, 1, m.DayIndex)
	}
}

func TestExtractMentions_Emphasis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		typ  types.EntityType
	}{
		{"bold around marker and name", "**🏨 [Grand Plaza]**", "Grand Plaza", types.EntityHotel},
		{"bold inside brackets", "🍽️ [**Taberna Sal**]", "Taberna Sal", types.EntityRestaurant},
		{"styled span", `<span style="color:#e11d48">📍 [Torre de Belém]</span>`, "Torre de Belém", types.EntityAttraction},
		{"span inside brackets", `🏛️ [<span class="poi">Prado Museum</span>]`, "Prado Museum", types.EntityAttraction},
		{"underscore emphasis", "__🎯__ [Sagrada Família]", "Sagrada Família", types.EntityAttraction},
		{"symbols and stray brackets", "🌙 [[Jazz Bar ✨]]", "Jazz Bar", types.EntityEveningVenue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mentions := ExtractMentions(tt.text)
			require.Len(t, mentions, 1)
			assert.Equal(t, tt.want, mentions[0].Name)
			assert.Equal(t, tt.typ, mentions[0].Type)
		})
	}
}

func TestExtractMentions_EveningVenueKeepsSubType(t *testing.T) {
	mentions := ExtractMentions("🍸 [Sky Bar]")
	require.Len(t, mentions, 1)
	assert.Equal(t, types.EntityEveningVenue, mentions[0].Type)
	assert.Equal(t, types.EntityAttraction, mentions[0].Type.Container())
}

func TestExtractMentions_Coordinates(t *testing.T) {
	t.Run("out of range pair is ignored", func(t *testing.T) {
		mentions := ExtractMentions("📍 [Nowhere] (95.0, 10.0)")
		require.Len(t, mentions, 1)
		assert.Nil(t, mentions[0].InlineCoordinates)
	})

	t.Run("non numeric parenthetical is ignored", func(t *testing.T) {
		mentions := ExtractMentions("📍 [Castle] (closed Mondays)")
		require.Len(t, mentions, 1)
		assert.Nil(t, mentions[0].InlineCoordinates)
	})

	t.Run("spaces and emphasis before pair", func(t *testing.T) {
		mentions := ExtractMentions("**🍴 [Mercado]** ( 38.7071 , -9.1359 )")
		require.Len(t, mentions, 1)
		require.NotNil(t, mentions[0].InlineCoordinates)
		assert.InDelta(t, 38.7071, mentions[0].InlineCoordinates.Lat, 1e-9)
		assert.InDelta(t, -9.1359, mentions[0].InlineCoordinates.Lng, 1e-9)
	})
}

func TestExtractMentions_DayAndSlot(t *testing.T) {
	text := `**Day 1**
Morning: 📍 [Alfama]
Lunch at 🍽️ [Time Out Market]
Evening: 🌙 [Fado House]

Day 2
🏛️ [Jerónimos Monastery]`

	mentions := ExtractMentions(text)
	require.Len(t, mentions, 4)

	assert.Equal(t, 1, mentions[0].DayIndex)
	assert.Equal(t, types.SlotMorning, mentions[0].TimeSlot)
	assert.Equal(t, types.SlotAfternoon, mentions[1].TimeSlot)
	assert.Equal(t, types.SlotEvening, mentions[2].TimeSlot)

	assert.Equal(t, 2, mentions[3].DayIndex)
	assert.Equal(t, types.TimeSlot(""), mentions[3].TimeSlot)
}

func TestExtractMentions_CheckPhrases(t *testing.T) {
	t.Run("check-in phrase without marker", func(t *testing.T) {
		mentions := ExtractMentions("After landing, check-in at Grand Plaza Hotel and rest.")
		require.Len(t, mentions, 1)
		assert.Equal(t, "check-in at Grand Plaza Hotel", mentions[0].Name)

		place, ok := StripCheckPhrase(mentions[0].Name)
		assert.True(t, ok)
		assert.Equal(t, "Grand Plaza Hotel", place)
	})

	t.Run("hebrew check-out", func(t *testing.T) {
		mentions := ExtractMentions("צ'ק-אאוט ממלון דן, ואז לשוק")
		require.Len(t, mentions, 1)
		place, ok := StripCheckPhrase(mentions[0].Name)
		assert.True(t, ok)
		assert.Equal(t, "מלון דן", place)
	})

	t.Run("arrival in a city is not a stay", func(t *testing.T) {
		assert.Empty(t, ExtractMentions("Arrive in Lisbon around noon."))
		assert.True(t, IsCheckPhrase("Arrival at Hotel Avenida"))
	})
}

func TestExtractMentions_Empty(t *testing.T) {
	mentions := ExtractMentions("Just wander around the old town and enjoy the views.")
	assert.NotNil(t, mentions)
	assert.Empty(t, mentions)

	assert.Empty(t, ExtractMentions("🏨 no brackets here"))
	assert.Empty(t, ExtractMentions("🏨 [   ]"))
}

func TestIsDayHeader(t *testing.T) {
	assert.True(t, IsDayHeader("Day 2: museums"))
	assert.True(t, IsDayHeader("## **Day 10**"))
	assert.True(t, IsDayHeader("יום 3"))
	assert.False(t, IsDayHeader("A day at the beach"))
	assert.False(t, IsDayHeader("Morning: 📍 [Belem Tower]"))
}
