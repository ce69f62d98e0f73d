/*
Package pnm implements a decoder and encoder for the binary greyscale (PGM,
"P5") and color (PPM, "P6") variants of the Netpbm formats.

Only 8-bit samples are supported. A file is an ASCII header of the form

	P5
	# comment
	<width> <height>
	255

followed by width × height samples, one byte each for PGM or three bytes
each (red, green, blue) for PPM, in row-major order.
*/
package pnm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Magic numbers
const (
	Gray = "P5"
	RGB  = "P6"
)

// MaxValue is the only supported maximum sample value
const MaxValue = 255

var (
	errBadMagic    = errors.New("pnm: unsupported format")
	errBadHeader   = errors.New("pnm: invalid header")
	errBadMaxValue = errors.New("pnm: unsupported maximum value")
	errNotEnough   = errors.New("pnm: not enough image data")
)

// Header is the ASCII preamble of a PGM or PPM file
type Header struct {
	Magic   string
	Comment string
	Width   int
	Height  int
}

// Channels returns the number of bytes per pixel
func (h Header) Channels() int {
	if h.Magic == RGB {
		return 3
	}
	return 1
}

// RowSize returns the number of bytes in each row of pixels
func (h Header) RowSize() int {
	return h.Width * h.Channels()
}

// Size returns the number of bytes of pixel data following the header
func (h Header) Size() int64 {
	return int64(h.RowSize()) * int64(h.Height)
}

// WriteHeader writes the ASCII header h to w
func WriteHeader(w io.Writer, h Header) error {
	if h.Magic != Gray && h.Magic != RGB {
		return errBadMagic
	}
	if h.Width <= 0 || h.Height <= 0 {
		return errBadHeader
	}

	var b strings.Builder
	b.WriteString(h.Magic + "\n")
	if h.Comment != "" {
		for _, line := range strings.Split(h.Comment, "\n") {
			b.WriteString("# " + line + "\n")
		}
	}
	fmt.Fprintf(&b, "%d %d\n%d\n", h.Width, h.Height, MaxValue)

	_, err := io.WriteString(w, b.String())
	return err
}

type headerReader struct {
	r        *bufio.Reader
	comments []string
}

func (hr *headerReader) skipSpace() error {
	for {
		c, err := hr.r.ReadByte()
		if err != nil {
			return err
		}
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		case '#':
			line, err := hr.r.ReadString('\n')
			if err != nil {
				return err
			}
			hr.comments = append(hr.comments, strings.TrimSpace(line))
		default:
			return hr.r.UnreadByte()
		}
	}
}

func (hr *headerReader) token() (string, error) {
	if err := hr.skipSpace(); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		c, err := hr.r.ReadByte()
		if err != nil {
			return "", err
		}
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			if b.Len() == 0 {
				return "", errBadHeader
			}
			return b.String(), nil
		case '#':
			if err := hr.r.UnreadByte(); err != nil {
				return "", err
			}
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

func (hr *headerReader) number() (int, error) {
	s, err := hr.token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errBadHeader
	}
	return n, nil
}

// ReadHeader reads an ASCII header from r, leaving r positioned at the start
// of the pixel data
func ReadHeader(r *bufio.Reader) (Header, error) {
	hr := headerReader{r: r}

	var h Header
	var err error

	if h.Magic, err = hr.token(); err != nil {
		return Header{}, badHeader(err)
	}
	if h.Magic != Gray && h.Magic != RGB {
		return Header{}, errBadMagic
	}
	if h.Width, err = hr.number(); err != nil {
		return Header{}, badHeader(err)
	}
	if h.Height, err = hr.number(); err != nil {
		return Header{}, badHeader(err)
	}

	// The single whitespace after the maximum value is consumed by token
	max, err := hr.number()
	if err != nil {
		return Header{}, badHeader(err)
	}
	if max != MaxValue {
		return Header{}, errBadMaxValue
	}

	h.Comment = strings.Join(hr.comments, "\n")

	return h, nil
}

func badHeader(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errBadHeader
	}
	return err
}
