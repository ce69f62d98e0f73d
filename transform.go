package himawari

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"

	"github.com/bodgit/himawari/metadata"
)

var errOddLength = errors.New("himawari: grid ends with half a sample")

// Transformer streams a raw grid of 16-bit big-endian counts through a
// lookup table, writing one byte per count to w in the same order
type Transformer interface {
	Transform(ctx context.Context, w io.Writer, grid io.Reader, lut LookupTable) error
}

// LookupTransformer applies the lookup table in-process
type LookupTransformer struct {
	// BufferSize is the number of bytes of grid read at a time, defaults
	// to 1 MiB
	BufferSize int
}

// Transform implements the Transformer interface
func (t LookupTransformer) Transform(ctx context.Context, w io.Writer, grid io.Reader, lut LookupTable) error {
	if len(lut) != LookupTableSize {
		return fmt.Errorf("himawari: lookup table has %d entries, expected %d", len(lut), LookupTableSize)
	}

	size := t.BufferSize
	if size < metadata.BytesPerCount {
		size = 1 << 20
	}
	size -= size % metadata.BytesPerCount

	in := make([]byte, size)
	out := make([]byte, size/metadata.BytesPerCount)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := io.ReadFull(grid, in)
		switch err {
		case nil, io.ErrUnexpectedEOF:
		case io.EOF:
			return nil
		default:
			return err
		}

		if n%metadata.BytesPerCount != 0 {
			return errOddLength
		}

		samples := n / metadata.BytesPerCount
		for i := 0; i < samples; i++ {
			out[i] = lut[uint16(in[i*2])<<8|uint16(in[i*2+1])]
		}

		if _, err := w.Write(out[:samples]); err != nil {
			return err
		}

		if err == io.ErrUnexpectedEOF {
			return nil
		}
	}
}

// ExecTransformer runs an external converter which reads the 65536 byte
// lookup table followed by the grid on its standard input and writes the
// converted bytes to its standard output
type ExecTransformer struct {
	// Command is the path to the converter
	Command string
	// Dir holds the scratch copy of the lookup table, defaults to the
	// system temporary directory
	Dir string
	// Stderr receives the standard error of the converter, defaults to
	// os.Stderr
	Stderr io.Writer
}

// Transform implements the Transformer interface
func (t ExecTransformer) Transform(ctx context.Context, w io.Writer, grid io.Reader, lut LookupTable) error {
	if len(lut) != LookupTableSize {
		return fmt.Errorf("himawari: lookup table has %d entries, expected %d", len(lut), LookupTableSize)
	}

	scratch, err := writeScratch(t.Dir, "*.conv", bytes.NewReader(lut))
	if err != nil {
		return err
	}
	defer os.Remove(scratch)

	f, err := os.Open(scratch)
	if err != nil {
		return err
	}
	defer f.Close()

	cmd := exec.CommandContext(ctx, t.Command)
	cmd.Stdin = io.MultiReader(f, grid)
	cmd.Stdout = w
	cmd.Stderr = stderr(t.Stderr)

	return run(cmd)
}

func stderr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

func run(cmd *exec.Cmd) error {
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExternalToolFailure, cmd.Path, err)
	}
	return nil
}

// writeScratch copies r into a new temporary file and returns its name
func writeScratch(dir, pattern string, r io.Reader) (string, error) {
	f, err := ioutil.TempFile(dir, pattern)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}
