package himawari

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/himawari/colorscale"
	"github.com/bodgit/himawari/convert"
	"github.com/bodgit/himawari/metadata"
	"github.com/bodgit/himawari/pnm"
	"github.com/bodgit/himawari/preview"
)

// Result lists the files written by Draw
type Result struct {
	Metadata *metadata.Metadata
	// Greyscale is the PGM image
	Greyscale string
	// Color is the PPM image, empty if no colorscale was applied
	Color string
	// Colorscale is the colorscale that was applied, if any
	Colorscale string
	// Preview is the PNG preview, empty unless requested
	Preview string
	// Warnings are non-fatal problems, such as an unsuitable colorscale
	// being replaced
	Warnings []error
}

// WriteGreyscale writes a side by side PGM image to w by streaming the grid
// through the lookup table with t
func WriteGreyscale(ctx context.Context, w io.Writer, grid io.Reader, side int, comment string, lut LookupTable, t Transformer) error {
	bw := bufio.NewWriterSize(w, 1<<20)

	if err := pnm.WriteHeader(bw, pnm.Header{
		Magic:   pnm.Gray,
		Comment: comment,
		Width:   side,
		Height:  side,
	}); err != nil {
		return err
	}

	// Flush the header so an external transformer appends after it
	if err := bw.Flush(); err != nil {
		return err
	}

	if err := t.Transform(ctx, bw, grid, lut); err != nil {
		return err
	}

	return bw.Flush()
}

// createFile runs fn with a newly created file, removing the file again if
// anything fails
func createFile(name string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(name)
		}
	}()

	return fn(f)
}

// Draw converts the gridded data in file into a PGM image and, if a
// colorscale is requested, a PPM image. The images are named after the
// input, for example "201606010230.tir.01.pgm".
//
// A colorscale unsuitable for the channel is replaced by the recommended one
// and logged, it isn't an error. Any other failure is fatal and removes every
// image written by this call.
func (h *Himawari) Draw(ctx context.Context, file string, opts Options) (result *Result, err error) {
	opts = opts.withDefaults()

	md, err := metadata.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	grid, cleanup, err := h.prepareGrid(file, md, opts.RemoveDecompressed)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	defer cleanup()

	h.logger.Println("Generating calibration table")
	table, err := h.provider.Table(md.Band, md.Number)
	if err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}

	h.logger.Println("Generating conversion table")
	conv, err := convert.New(md.Band, md.Number)
	if err != nil {
		return nil, fmt.Errorf("conversion: %w", err)
	}

	lut, err := BuildLookupTable(ctx, table, conv, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("conversion: %w", err)
	}

	var warnings []error

	name, err := colorscale.Resolve(opts.Colorscale, conv)
	if err != nil {
		var re *colorscale.RequestError
		if !errors.As(err, &re) {
			return nil, fmt.Errorf("colorscale: %w", err)
		}
		warnings = append(warnings, err)
		h.logger.Printf("[ERROR] Wrong colorscale for data in band %s\n", md)
		h.logger.Printf("[ERROR] Use `%s` instead for coloring.\n", re.Substituted)
	}

	var palette color.Palette
	if name != "" {
		h.logger.Println("Generating colorscale palette")
		if palette, err = colorscale.Palette(name, conv); err != nil {
			return nil, fmt.Errorf("colorscale: %w", err)
		}
	} else {
		h.logger.Println("No colorscale will be applied.")
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(file)
	}

	result = &Result{
		Metadata:   md,
		Greyscale:  filepath.Join(dir, md.Basename()+".pgm"),
		Colorscale: name,
		Warnings:   warnings,
	}

	// Any failure past this point leaves nothing behind
	defer func() {
		if err != nil {
			for _, f := range []string{result.Greyscale, result.Color, result.Preview} {
				if f != "" {
					os.Remove(f)
				}
			}
			result = nil
		}
	}()

	h.logger.Println("Conversion and write data to PGM")
	if err = h.writeGreyscale(ctx, result.Greyscale, grid, md.Side(), lut, opts); err != nil {
		return result, fmt.Errorf("transform: %w", err)
	}

	final := result.Greyscale

	if palette != nil {
		h.logger.Println("Colorify PGM file")
		result.Color = filepath.Join(dir, md.Basename()+".ppm")
		if err = createFile(result.Color, func(w io.Writer) error {
			return opts.Remapper.Remap(ctx, w, result.Greyscale, palette)
		}); err != nil {
			return result, fmt.Errorf("remap: %w", err)
		}
		final = result.Color
	}

	if opts.Preview > 0 {
		h.logger.Println("Writing preview")
		result.Preview = filepath.Join(dir, md.Basename()+".png")
		if err = writePreview(result.Preview, final, opts.Preview, opts.PreviewColors); err != nil {
			return result, fmt.Errorf("preview: %w", err)
		}
	}

	return result, nil
}

func (h *Himawari) writeGreyscale(ctx context.Context, name, grid string, side int, lut LookupTable, opts Options) error {
	f, err := os.Open(grid)
	if err != nil {
		return err
	}
	defer f.Close()

	return createFile(name, func(w io.Writer) error {
		return WriteGreyscale(ctx, w, f, side, opts.Comment, lut, opts.Transformer)
	})
}

func writePreview(name, image string, side, colors int) error {
	f, err := os.Open(image)
	if err != nil {
		return err
	}
	defer f.Close()

	return createFile(name, func(w io.Writer) error {
		return preview.Encode(w, f, side, colors)
	})
}
