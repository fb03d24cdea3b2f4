package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayBlocks(t *testing.T) {
	var d dayBlocks

	assert.Equal(t, []string{"Intro line\n"}, d.Write("Intro line\nDay 1\n📍 [Belem"))
	assert.Empty(t, d.Write(" Tower]\nEvening: 🍽️ [Cafe Luna]\n"))

	done := d.Write("**Day 2**\n📍 [Castle]\nDay 3")
	assert.Equal(t, []string{"Day 1\n📍 [Belem Tower]\nEvening: 🍽️ [Cafe Luna]\n"}, done)

	done = d.Write("\n📍 [Tram 28]\n")
	assert.Equal(t, []string{"**Day 2**\n📍 [Castle]\n"}, done)

	assert.Equal(t, "Day 3\n📍 [Tram 28]\n", d.Flush())
	assert.Empty(t, d.Flush())
}

func TestDayBlocks_FlushKeepsUnterminatedLine(t *testing.T) {
	var d dayBlocks
	d.Write("Day 1\n🏨 [Sunset Inn]")
	assert.Equal(t, "Day 1\n🏨 [Sunset Inn]", d.Flush())
}
