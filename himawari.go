/*
Package himawari is a library for turning the Himawari-8 gridded data
published by Chiba University into greyscale and color images.

A grid is parsed from its filename, checked against the geometry of its
band, calibrated into a 65536 entry lookup table mapping each raw count to a
greyscale intensity and then streamed through that table into a PGM image.
The image can optionally be colorized with one of the colorscales suitable
for the band.
*/
package himawari

import (
	"log"
	"runtime"

	"github.com/bodgit/himawari/calibration"
)

// DefaultComment is written into the header of every image
const DefaultComment = "NeoAtlantis"

// Options controls a single run of Draw
type Options struct {
	// Colorscale to apply, empty for greyscale only
	Colorscale string
	// OutputDir defaults to the directory containing the input
	OutputDir string
	// Comment defaults to DefaultComment
	Comment string
	// Workers used to build the lookup table, defaults to the number of
	// CPUs
	Workers int
	// Transformer defaults to LookupTransformer
	Transformer Transformer
	// Remapper defaults to PaletteRemapper
	Remapper Remapper
	// RemoveDecompressed removes the grid decompressed from a .bz2 input
	// once the run has finished
	RemoveDecompressed bool
	// Preview is the maximum side of a PNG preview, zero disables it
	Preview int
	// PreviewColors limits the palette of a color preview, defaults to
	// 256
	PreviewColors int
}

func (o Options) withDefaults() Options {
	if o.Comment == "" {
		o.Comment = DefaultComment
	}
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	if o.Transformer == nil {
		o.Transformer = LookupTransformer{}
	}
	if o.Remapper == nil {
		o.Remapper = PaletteRemapper{}
	}
	if o.PreviewColors < 1 {
		o.PreviewColors = 256
	}
	return o
}

// Himawari draws images from gridded data using calibration tables from
// a calibration.Provider
type Himawari struct {
	provider calibration.Provider
	logger   *log.Logger
}

// New returns a Himawari using provider for calibration and logging progress
// to logger
func New(provider calibration.Provider, logger *log.Logger) *Himawari {
	return &Himawari{
		provider: provider,
		logger:   logger,
	}
}
