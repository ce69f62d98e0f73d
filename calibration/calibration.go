/*
Package calibration provides the tables that map each raw 16-bit count of a
channel to a calibrated physical value, either an albedo or a brightness
temperature in Kelvin.
*/
package calibration

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bodgit/himawari/metadata"
)

// Size is the number of entries in every table, one per possible count
const Size = math.MaxUint16 + 1

var errNoPoints = errors.New("calibration: no calibration points")

// Table holds one physical value per count
type Table []float64

// Provider returns the calibration table for a channel. Unknown channels
// return an error wrapping metadata.ErrUnsupportedBand.
type Provider interface {
	Table(metadata.Band, int) (Table, error)
}

// Point is a single calibrated count
type Point struct {
	Count uint16
	Value float64
}

// Expand builds a complete table from a sparse set of points. Counts before
// the first point take its value, any gaps hold the value of the previous
// point.
func Expand(points []Point) (Table, error) {
	if len(points) == 0 {
		return nil, errNoPoints
	}

	sorted := append(points[:0:0], points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count < sorted[j].Count })

	t := make(Table, Size)
	p := 0
	v := sorted[0].Value
	for i := range t {
		for p < len(sorted) && int(sorted[p].Count) == i {
			v = sorted[p].Value
			p++
		}
		t[i] = v
	}

	return t, nil
}

// ReadPoints parses a calibration text table; one "count value" pair per
// line, blank lines and anything after a '#' are ignored
func ReadPoints(r io.Reader) ([]Point, error) {
	var points []Point

	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		text := s.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("calibration: line %d: expected 2 fields, got %d", line, len(fields))
		}

		count, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("calibration: line %d: %w", line, err)
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("calibration: line %d: %w", line, err)
		}

		points = append(points, Point{uint16(count), value})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, errNoPoints
	}

	return points, nil
}

// Channel identifies a calibrated channel
type Channel struct {
	Band   metadata.Band
	Number int
}

func (c Channel) String() string {
	return fmt.Sprintf("%s%02d", c.Band, c.Number)
}

// Tables is an in-memory Provider
type Tables map[Channel]Table

// Table implements the Provider interface
func (t Tables) Table(band metadata.Band, number int) (Table, error) {
	table, ok := t[Channel{band, number}]
	if !ok {
		return nil, fmt.Errorf("%w: no calibration for %s%02d", metadata.ErrUnsupportedBand, band, number)
	}
	return table, nil
}
