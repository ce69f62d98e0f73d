package pnm

import (
	"bufio"
	"image"
	"image/color"
	"io"
)

func init() {
	image.RegisterFormat("pgm", Gray, Decode, DecodeConfig)
	image.RegisterFormat("ppm", RGB, Decode, DecodeConfig)
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errNotEnough
	}
	return err
}

func asBufioReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

type decoder struct {
	r *bufio.Reader
	h Header

	image image.Image
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = asBufioReader(r)

	var err error
	if d.h, err = ReadHeader(d.r); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	rect := image.Rect(0, 0, d.h.Width, d.h.Height)

	switch d.h.Magic {
	case Gray:
		m := image.NewGray(rect)
		if err := readFull(d.r, m.Pix); err != nil {
			return err
		}
		d.image = m
	case RGB:
		m := image.NewRGBA(rect)
		row := make([]byte, d.h.RowSize())
		for y := 0; y < d.h.Height; y++ {
			if err := readFull(d.r, row); err != nil {
				return err
			}
			for x := 0; x < d.h.Width; x++ {
				m.SetRGBA(x, y, color.RGBA{row[x*3], row[x*3+1], row[x*3+2], 0xff})
			}
		}
		d.image = m
	}

	return nil
}

func (d *decoder) colorModel() color.Model {
	if d.h.Magic == RGB {
		return color.RGBAModel
	}
	return color.GrayModel
}

// Decode reads a PGM or PPM image from r and returns it as an image.Image.
// PGM files decode to *image.Gray and PPM files to *image.RGBA.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a PGM or PPM image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.colorModel(),
		Width:      d.h.Width,
		Height:     d.h.Height,
	}, nil
}
