package metadata

import (
	"fmt"
	"strings"
)

// Band is a sensor channel family
type Band string

// The four bands of the gridded data
const (
	VIS Band = "VIS"
	EXT Band = "EXT"
	SIR Band = "SIR"
	TIR Band = "TIR"
)

// Bands lists every known band
var Bands = []Band{EXT, VIS, SIR, TIR}

var bands = map[Band]struct {
	side     int
	channels int
}{
	EXT: {24000, 1},
	VIS: {12000, 3},
	SIR: {6000, 2},
	TIR: {6000, 10},
}

// ParseBand parses a band name in either case
func ParseBand(s string) (Band, error) {
	b := Band(strings.ToUpper(s))
	if _, ok := bands[b]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBand, s)
	}
	return b, nil
}

// Side returns the width and height of grids in this band, or 0 if the
// band is unknown
func (b Band) Side() int {
	return bands[b].side
}

// GridSize returns the size in bytes of a decompressed grid in this band
func (b Band) GridSize() int64 {
	side := int64(b.Side())
	return side * side * BytesPerCount
}

// Channels returns the number of channels in this band, numbered from 1
func (b Band) Channels() int {
	return bands[b].channels
}

// CheckChannel returns an error unless number is a channel of this band
func (b Band) CheckChannel(number int) error {
	if number < 1 || number > b.Channels() {
		return fmt.Errorf("%w: %s%02d", ErrUnsupportedBand, b, number)
	}
	return nil
}
