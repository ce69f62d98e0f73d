/*
Package colorscale implements the color enhancements that can be applied to a
greyscale image.

A colorscale is a ramp of colors defined over physical values, so the same
colorscale gives consistent colors whichever channel it is applied to. The
palette for a channel is built by asking its converter which physical value
each greyscale intensity represents.
*/
package colorscale

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/bodgit/himawari/convert"
)

var (
	// ErrInvalidRequest is wrapped by the RequestError returned when a
	// colorscale isn't suitable for a channel
	ErrInvalidRequest = errors.New("colorscale: invalid colorscale for channel")
	// ErrUnknown is returned for a colorscale that doesn't exist
	ErrUnknown = errors.New("colorscale: unknown colorscale")
)

type stop struct {
	value float64
	color color.RGBA
	// Hold the color until the next stop rather than interpolating
	step bool
}

type ramp []stop

func gray(v uint8) color.RGBA {
	return color.RGBA{v, v, v, 0xff}
}

func (r ramp) at(v float64) color.RGBA {
	if math.IsNaN(v) || v <= r[0].value {
		return r[0].color
	}
	i := sort.Search(len(r), func(i int) bool { return r[i].value > v })
	if i == len(r) {
		return r[len(r)-1].color
	}

	lo, hi := r[i-1], r[i]
	if lo.step {
		return lo.color
	}

	f := (v - lo.value) / (hi.value - lo.value)
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + f*(float64(b)-float64(a))))
	}

	return color.RGBA{mix(lo.color.R, hi.color.R), mix(lo.color.G, hi.color.G), mix(lo.color.B, hi.color.B), 0xff}
}

// Values are albedo for VIS and brightness temperature in Kelvin otherwise,
// stops are in ascending order
var colorscales = map[string]ramp{
	convert.ColorscaleVIS: {
		{0, color.RGBA{0, 0, 0, 0xff}, false},
		{0.04, color.RGBA{8, 24, 64, 0xff}, false},
		{0.12, color.RGBA{40, 72, 56, 0xff}, false},
		{0.25, color.RGBA{150, 140, 110, 0xff}, false},
		{0.5, color.RGBA{215, 215, 220, 0xff}, false},
		{1, color.RGBA{255, 255, 255, 0xff}, false},
	},
	// Naval Research Laboratory style enhancement, greyscale for warm
	// scenes then a rainbow for the cold cloud tops
	convert.ColorscaleNRL: {
		{180, color.RGBA{255, 255, 255, 0xff}, false},
		{193, color.RGBA{120, 0, 120, 0xff}, false},
		{203, color.RGBA{200, 0, 0, 0xff}, false},
		{213, color.RGBA{255, 160, 0, 0xff}, false},
		{223, color.RGBA{255, 255, 0, 0xff}, false},
		{233, color.RGBA{0, 200, 0, 0xff}, false},
		{243, color.RGBA{0, 80, 255, 0xff}, false},
		{253, gray(200), false},
		{330, gray(0), false},
	},
	// Dvorak BD enhancement curve
	convert.ColorscaleIRBD: {
		{180, gray(255), true},
		{192.2, gray(135), true},
		{203.2, gray(255), true},
		{209.2, gray(0), true},
		{220.2, gray(160), true},
		{232.2, gray(60), true},
		{242.2, gray(110), true},
		{282.2, gray(110), false},
		{303.2, gray(0), false},
		{330, gray(0), false},
	},
	// Water vapour, moist air is blue/white and dry air brown
	convert.ColorscaleIRWV: {
		{200, color.RGBA{255, 255, 255, 0xff}, false},
		{220, color.RGBA{60, 160, 220, 0xff}, false},
		{235, color.RGBA{0, 40, 160, 0xff}, false},
		{245, color.RGBA{30, 30, 30, 0xff}, false},
		{255, color.RGBA{170, 110, 40, 0xff}, false},
		{270, color.RGBA{255, 200, 100, 0xff}, false},
	},
}

// Names returns the names of all colorscales
func Names() []string {
	names := make([]string, 0, len(colorscales))
	for name := range colorscales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette builds the 256 color palette mapping each greyscale intensity of
// the channel handled by c to a color of the named colorscale
func Palette(name string, c convert.Converter) (color.Palette, error) {
	r, ok := colorscales[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	p := make(color.Palette, math.MaxUint8+1)
	for i := range p {
		p[i] = r.at(c.Physical(uint8(i)))
	}

	return p, nil
}

// RequestError describes a colorscale request that was replaced
type RequestError struct {
	Requested   string
	Substituted string
	Supported   []string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %q not one of %s, using %q", ErrInvalidRequest, e.Requested, strings.Join(e.Supported, ", "), e.Substituted)
}

// Unwrap returns ErrInvalidRequest
func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

// Resolve returns the colorscale to use for the channel handled by c.
//
// An empty request means no colorscale and returns an empty name. A request
// for a supported colorscale is returned unchanged, otherwise the
// recommended colorscale is returned along with a *RequestError describing
// the substitution. The error is a diagnostic only, the returned name is
// always usable.
func Resolve(requested string, c convert.Converter) (string, error) {
	if requested == "" {
		return "", nil
	}

	supported := c.Colorscales()
	for _, name := range supported {
		if strings.EqualFold(name, requested) {
			return name, nil
		}
	}

	recommended := c.Recommend()

	return recommended, &RequestError{
		Requested:   requested,
		Substituted: recommended,
		Supported:   supported,
	}
}
