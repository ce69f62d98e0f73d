/*
Package preview implements small PNG previews of the full resolution PGM and
PPM images.

The source image is read one row at a time and box filtered down so that
neither side is larger than the requested size, so even the 24000 by 24000
images never have to be held in memory. Color previews are reduced to a
palette using median cut quantization.
*/
package preview

import (
	"bufio"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/bodgit/himawari/pnm"
	"github.com/ericpauley/go-quantize/quantize"
)

var (
	errBadSize   = errors.New("preview: invalid size")
	errBadColors = errors.New("preview: invalid number of colors")
)

// factor returns the box size needed to fit width and height into side
func factor(width, height, side int) int {
	max := width
	if height > max {
		max = height
	}
	return (max + side - 1) / side
}

// Downsample reads a PGM or PPM image from r and returns it box filtered so
// that neither side is larger than side. Greyscale images are returned as
// *image.Gray, color images as *image.RGBA.
func Downsample(r io.Reader, side int) (image.Image, error) {
	if side < 1 {
		return nil, errBadSize
	}

	br := bufio.NewReaderSize(r, 1<<20)

	h, err := pnm.ReadHeader(br)
	if err != nil {
		return nil, err
	}

	f := factor(h.Width, h.Height, side)
	ow, oh := (h.Width+f-1)/f, (h.Height+f-1)/f
	ch := h.Channels()

	var m draw.Image
	if ch == 1 {
		m = image.NewGray(image.Rect(0, 0, ow, oh))
	} else {
		m = image.NewRGBA(image.Rect(0, 0, ow, oh))
	}

	row := make([]byte, h.RowSize())
	sums := make([]uint64, ow*ch)
	counts := make([]uint64, ow)

	for y := 0; y < h.Height; y++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, err
		}

		for x := 0; x < h.Width; x++ {
			ox := x / f
			for c := 0; c < ch; c++ {
				sums[ox*ch+c] += uint64(row[x*ch+c])
			}
			counts[ox]++
		}

		// Emit a row once a band of f rows, or the last partial band,
		// has been summed
		if (y+1)%f != 0 && y != h.Height-1 {
			continue
		}

		oy := y / f
		for ox := 0; ox < ow; ox++ {
			n := counts[ox]
			avg := func(c int) uint8 {
				return uint8((sums[ox*ch+c] + n/2) / n)
			}
			if ch == 1 {
				m.Set(ox, oy, color.Gray{avg(0)})
			} else {
				m.Set(ox, oy, color.RGBA{avg(0), avg(1), avg(2), 0xff})
			}
		}

		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
	}

	return m, nil
}

// Reduce quantizes m to a palette of no more than colors entries
func Reduce(m image.Image, colors int) (*image.Paletted, error) {
	if colors < 2 || colors > 256 {
		return nil, errBadColors
	}

	b := m.Bounds()

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	return pm, nil
}

// Encode writes a PNG preview of the PGM or PPM image read from r to w.
// Neither side of the preview is larger than side and color previews use
// no more than colors colors.
func Encode(w io.Writer, r io.Reader, side, colors int) error {
	m, err := Downsample(r, side)
	if err != nil {
		return err
	}

	if _, ok := m.(*image.Gray); !ok {
		if m, err = Reduce(m, colors); err != nil {
			return err
		}
	}

	return png.Encode(w, m)
}
