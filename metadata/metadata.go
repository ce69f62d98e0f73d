/*
Package metadata implements parsing of the Himawari-8 gridded data filenames
published by the Center for Environmental Remote Sensing, Chiba University.

Each file is named after the observation time, the band and the channel
number within that band, for example:

	201606010230.tir.01.fld.geoss.bz2

Decompressed, the file is a square grid of 16-bit big-endian counts whose
side depends on the band.
*/
package metadata

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidFormat is returned when a filename doesn't follow the
	// gridded data naming scheme
	ErrInvalidFormat = errors.New("metadata: invalid input format")
	// ErrUnexpectedSize is returned when a grid is not the size expected
	// for its band
	ErrUnexpectedSize = errors.New("metadata: unexpected data size")
	// ErrUnsupportedBand is returned for a band or channel that has no
	// known geometry or calibration
	ErrUnsupportedBand = errors.New("metadata: unsupported band")
)

const (
	// TimestampLayout is the time.Parse layout of the 12 digit timestamp
	TimestampLayout = "200601021504"

	// BytesPerCount is the size of each sample in the raw grid
	BytesPerCount = 2
)

var filenameRegexp = regexp.MustCompile(`^([0-9]{12})\.(vis|ext|sir|tir)\.([0-9]{2})\.fld\.geoss(\.bz2)?$`)

// Metadata describes a single gridded data file
type Metadata struct {
	Timestamp  string
	Band       Band
	Number     int
	Compressed bool
}

// Parse extracts the metadata embedded in the base name of file
func Parse(file string) (*Metadata, error) {
	name := filepath.Base(file)
	m := filenameRegexp.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
	}

	// Can't fail, the pattern guarantees two digits
	n, _ := strconv.Atoi(m[3])

	return &Metadata{
		Timestamp:  m[1],
		Band:       Band(strings.ToUpper(m[2])),
		Number:     n,
		Compressed: m[4] != "",
	}, nil
}

// Time returns the observation time in UTC
func (m *Metadata) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, m.Timestamp, time.UTC)
}

// Basename returns the name shared by all files derived from this grid,
// such as "201606010230.tir.01"
func (m *Metadata) Basename() string {
	return fmt.Sprintf("%s.%s.%02d", m.Timestamp, strings.ToLower(string(m.Band)), m.Number)
}

// GridFilename returns the name of the decompressed grid
func (m *Metadata) GridFilename() string {
	return m.Basename() + ".fld.geoss"
}

// Side returns the width and height of the grid
func (m *Metadata) Side() int {
	return m.Band.Side()
}

// GridSize returns the expected size in bytes of the decompressed grid
func (m *Metadata) GridSize() int64 {
	return m.Band.GridSize()
}

// Validate checks the decompressed grid is exactly the size expected for
// the band
func (m *Metadata) Validate(size int64) error {
	expected := m.GridSize()
	if expected == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedBand, m.Band)
	}
	if size != expected {
		return fmt.Errorf("%w: %d bytes, expected %d for %s", ErrUnexpectedSize, size, expected, m.Band)
	}
	return nil
}

// String returns the channel in the form "TIR01"
func (m *Metadata) String() string {
	return fmt.Sprintf("%s%02d", m.Band, m.Number)
}
