package himawari

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"os/exec"

	"github.com/bodgit/himawari/pnm"
)

var errNotGreyscale = errors.New("himawari: remap input is not a greyscale image")

// Remapper colorizes the greyscale PGM image in file, writing a PPM image to
// w where each greyscale intensity g becomes palette[g]
type Remapper interface {
	Remap(ctx context.Context, w io.Writer, file string, palette color.Palette) error
}

// PaletteRemapper colorizes the image in-process, one row at a time
type PaletteRemapper struct{}

// Remap implements the Remapper interface
func (PaletteRemapper) Remap(ctx context.Context, w io.Writer, file string, palette color.Palette) error {
	if len(palette) != 256 {
		return fmt.Errorf("himawari: palette has %d colors, expected 256", len(palette))
	}

	var lut [256][3]byte
	for i, c := range palette {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		lut[i] = [3]byte{rgba.R, rgba.G, rgba.B}
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)

	h, err := pnm.ReadHeader(r)
	if err != nil {
		return err
	}
	if h.Magic != pnm.Gray {
		return errNotGreyscale
	}

	bw := bufio.NewWriterSize(w, 1<<20)

	h.Magic = pnm.RGB
	if err := pnm.WriteHeader(bw, h); err != nil {
		return err
	}

	in := make([]byte, h.Width)
	out := make([]byte, h.Width*3)
	for y := 0; y < h.Height; y++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := io.ReadFull(r, in); err != nil {
			return fmt.Errorf("himawari: row %d: %w", y, err)
		}
		for x, g := range in {
			copy(out[x*3:], lut[g][:])
		}
		if _, err := bw.Write(out); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ExecRemapper runs the Netpbm pgmtoppm command with the palette written to
// a scratch PPM map file
type ExecRemapper struct {
	// Command defaults to "pgmtoppm", looked up in the system path
	Command string
	// Dir holds the scratch palette, defaults to the system temporary
	// directory
	Dir string
	// Stderr receives the standard error of the command, defaults to
	// os.Stderr
	Stderr io.Writer
}

// Remap implements the Remapper interface
func (e ExecRemapper) Remap(ctx context.Context, w io.Writer, file string, palette color.Palette) error {
	// A single row map, one pixel per greyscale intensity
	m := image.NewPaletted(image.Rect(0, 0, len(palette), 1), palette)
	for i := range m.Pix {
		m.Pix[i] = uint8(i)
	}

	b := new(bytes.Buffer)
	if err := pnm.Encode(b, m); err != nil {
		return err
	}

	scratch, err := writeScratch(e.Dir, "*.color", b)
	if err != nil {
		return err
	}
	defer os.Remove(scratch)

	command := e.Command
	if command == "" {
		command = "pgmtoppm"
	}

	cmd := exec.CommandContext(ctx, command, "-map", scratch, file)
	cmd.Stdout = w
	cmd.Stderr = stderr(e.Stderr)

	return run(cmd)
}
