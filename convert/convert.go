/*
Package convert implements the band converters that map calibrated physical
values to greyscale intensities.

Reflective channels carry an albedo which is gamma encoded so that dark
surfaces keep some detail. Emissive channels carry a brightness temperature
in Kelvin which is mapped linearly and inverted so that cold cloud tops are
bright, the usual convention for infrared satellite imagery.
*/
package convert

import (
	"fmt"
	"math"

	"github.com/bodgit/himawari/metadata"
)

// Names of the colorscales a converter may support
const (
	ColorscaleVIS  = "VIS"
	ColorscaleNRL  = "NRL"
	ColorscaleIRBD = "IRBD"
	ColorscaleIRWV = "IRWV"
)

// Converter maps between physical values and greyscale intensities for one
// channel
type Converter interface {
	// Greyscale maps a physical value to a greyscale intensity
	Greyscale(float64) uint8
	// Physical returns the physical value represented by a greyscale
	// intensity
	Physical(uint8) float64
	// Colorscales lists the colorscales that are meaningful for the
	// channel
	Colorscales() []string
	// Recommend returns the colorscale to use when none of the supported
	// ones was asked for
	Recommend() string
}

// New returns the converter for the given channel
func New(band metadata.Band, number int) (Converter, error) {
	if err := band.CheckChannel(number); err != nil {
		return nil, err
	}

	switch band {
	case metadata.EXT, metadata.VIS, metadata.SIR:
		return reflectance{gamma: 2.0}, nil
	case metadata.TIR:
		switch number {
		case 6, 7, 8:
			return temperature{min: 200, max: 270, colorscales: []string{ColorscaleIRWV, ColorscaleNRL}}, nil
		default:
			return temperature{min: 180, max: 330, colorscales: []string{ColorscaleIRBD, ColorscaleNRL}}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s%02d", metadata.ErrUnsupportedBand, band, number)
}

func round(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint8:
		return math.MaxUint8
	}
	return uint8(math.Round(v))
}

type reflectance struct {
	gamma float64
}

func (r reflectance) Greyscale(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return round(math.MaxUint8 * math.Pow(math.Min(v, 1), 1/r.gamma))
}

func (r reflectance) Physical(g uint8) float64 {
	return math.Pow(float64(g)/math.MaxUint8, r.gamma)
}

func (reflectance) Colorscales() []string {
	return []string{ColorscaleVIS}
}

func (reflectance) Recommend() string {
	return ColorscaleVIS
}

// Temperatures in Kelvin, min maps to white and max to black
type temperature struct {
	min, max    float64
	colorscales []string
}

func (t temperature) Greyscale(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return round(math.MaxUint8 * (t.max - v) / (t.max - t.min))
}

func (t temperature) Physical(g uint8) float64 {
	return t.max - float64(g)*(t.max-t.min)/math.MaxUint8
}

func (t temperature) Colorscales() []string {
	return t.colorscales
}

func (t temperature) Recommend() string {
	return t.colorscales[0]
}
