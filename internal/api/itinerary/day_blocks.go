package itinerary

import (
	"strings"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/extraction"
)

// dayBlocks cuts streamed text into whole-day blocks. A block is complete
// once the header line of the following day has arrived.
type dayBlocks struct {
	pending strings.Builder // text of the current, unfinished line
	block   strings.Builder // complete lines of the current day
}

// Write consumes a chunk and returns the blocks it completed.
func (d *dayBlocks) Write(chunk string) []string {
	var done []string
	for chunk != "" {
		i := strings.IndexByte(chunk, '\n')
		if i < 0 {
			d.pending.WriteString(chunk)
			break
		}
		d.pending.WriteString(chunk[:i+1])
		chunk = chunk[i+1:]

		line := d.pending.String()
		d.pending.Reset()
		if extraction.IsDayHeader(line) && strings.TrimSpace(d.block.String()) != "" {
			done = append(done, d.block.String())
			d.block.Reset()
		}
		d.block.WriteString(line)
	}
	return done
}

// Flush returns whatever is buffered, including an unterminated last line.
func (d *dayBlocks) Flush() string {
	d.block.WriteString(d.pending.String())
	d.pending.Reset()
	s := d.block.String()
	d.block.Reset()
	return s
}
