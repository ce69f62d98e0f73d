package himawari

import (
	"errors"

	"github.com/bodgit/himawari/colorscale"
	"github.com/bodgit/himawari/metadata"
)

var (
	// ErrInvalidInputFormat is returned for a filename that isn't a
	// gridded data file
	ErrInvalidInputFormat = metadata.ErrInvalidFormat
	// ErrUnexpectedDataSize is returned when the decompressed grid
	// doesn't match the geometry of its band
	ErrUnexpectedDataSize = metadata.ErrUnexpectedSize
	// ErrUnsupportedBand is returned when there is no calibration or
	// converter for a channel
	ErrUnsupportedBand = metadata.ErrUnsupportedBand
	// ErrInvalidPaletteRequest is only ever logged, the recommended
	// colorscale is used instead
	ErrInvalidPaletteRequest = colorscale.ErrInvalidRequest
	// ErrExternalToolFailure is returned when an external command can't
	// be started or exits unsuccessfully
	ErrExternalToolFailure = errors.New("himawari: external tool failure")
)
