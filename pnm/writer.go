package pnm

import (
	"bufio"
	"image"
	"image/color"
	"io"
)

type encoder struct {
	w *bufio.Writer
}

func (e *encoder) encode(m image.Image, comment string) error {
	b := m.Bounds()

	h := Header{
		Magic:   RGB,
		Comment: comment,
		Width:   b.Dx(),
		Height:  b.Dy(),
	}
	if m.ColorModel() == color.GrayModel {
		h.Magic = Gray
	}

	if err := WriteHeader(e.w, h); err != nil {
		return err
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if h.Magic == Gray {
				if err := e.w.WriteByte(color.GrayModel.Convert(m.At(x, y)).(color.Gray).Y); err != nil {
					return err
				}
				continue
			}
			c := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
			if _, err := e.w.Write([]byte{c.R, c.G, c.B}); err != nil {
				return err
			}
		}
	}

	return e.w.Flush()
}

// Encode writes the Image m to w, as PGM if m uses the color.GrayModel or as
// PPM otherwise.
func Encode(w io.Writer, m image.Image) error {
	return EncodeWithComment(w, m, "")
}

// EncodeWithComment is like Encode but adds comment to the header.
func EncodeWithComment(w io.Writer, m image.Image, comment string) error {
	e := encoder{w: bufio.NewWriter(w)}
	return e.encode(m, comment)
}
