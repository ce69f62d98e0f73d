package himawari

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/himawari/calibration"
	"github.com/bodgit/himawari/metadata"
	"github.com/bodgit/himawari/pnm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tirHeader = "P5\n# NeoAtlantis\n6000 6000\n255\n"

func testProvider() calibration.Tables {
	table := make(calibration.Table, calibration.Size)
	for i := range table {
		table[i] = 255
	}
	return calibration.Tables{
		{Band: metadata.TIR, Number: 1}: table,
		{Band: metadata.TIR, Number: 2}: table,
	}
}

func newTestHimawari(logger *log.Logger) *Himawari {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return New(testProvider(), logger)
}

// sparseGrid creates an all zero grid of the given size without writing
// the data
func sparseGrid(t *testing.T, dir, name string, size int64) string {
	t.Helper()

	file := filepath.Join(dir, name)
	f, err := os.Create(file)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())

	return file
}

func copyTestdata(t *testing.T, dir, name string) string {
	t.Helper()

	b, err := ioutil.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	file := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(file, b, 0644))

	return file
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	infos, err := ioutil.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}

func fileSize(t *testing.T, file string) int64 {
	t.Helper()

	info, err := os.Stat(file)
	require.NoError(t, err)
	return info.Size()
}

func TestWriteGreyscale(t *testing.T) {
	lut := testLookupTable()
	grid := []byte{0x00, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00}

	b := new(bytes.Buffer)
	require.NoError(t, WriteGreyscale(context.Background(), b, bytes.NewReader(grid), 2, "test", lut, LookupTransformer{}))
	assert.Equal(t, "P5\n# test\n2 2\n255\n\x00\x01\x02\x03", b.String())

	m, err := pnm.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Bounds().Dx())
}

func TestDrawInvalidFilename(t *testing.T) {
	dir := t.TempDir()
	file := sparseGrid(t, dir, "grid.geoss", 72000000)

	_, err := newTestHimawari(nil).Draw(context.Background(), file, Options{})
	assert.ErrorIs(t, err, ErrInvalidInputFormat)
	assert.Equal(t, []string{"grid.geoss"}, listDir(t, dir))
}

func TestDrawUnexpectedSize(t *testing.T) {
	dir := t.TempDir()
	file := sparseGrid(t, dir, "201606010230.tir.01.fld.geoss", 72000001)

	_, err := newTestHimawari(nil).Draw(context.Background(), file, Options{})
	assert.ErrorIs(t, err, ErrUnexpectedDataSize)
	assert.Equal(t, []string{"201606010230.tir.01.fld.geoss"}, listDir(t, dir))
}

func TestDrawUnsupportedBand(t *testing.T) {
	dir := t.TempDir()
	file := sparseGrid(t, dir, "201606010230.tir.03.fld.geoss", 72000000)

	_, err := newTestHimawari(nil).Draw(context.Background(), file, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedBand)
	assert.Equal(t, []string{"201606010230.tir.03.fld.geoss"}, listDir(t, dir))
}

func TestDrawGreyscale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full size grid in short mode")
	}

	dir := t.TempDir()
	file := sparseGrid(t, dir, "201606010230.tir.01.fld.geoss", 72000000)

	result, err := newTestHimawari(nil).Draw(context.Background(), file, Options{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "201606010230.tir.01.pgm"), result.Greyscale)
	assert.Empty(t, result.Color)
	assert.Empty(t, result.Colorscale)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, int64(len(tirHeader)+36000000), fileSize(t, result.Greyscale))
	assert.Equal(t, []string{"201606010230.tir.01.fld.geoss", "201606010230.tir.01.pgm"}, listDir(t, dir))

	f, err := os.Open(result.Greyscale)
	require.NoError(t, err)
	defer f.Close()

	r := bufio.NewReader(f)
	h, err := pnm.ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, pnm.Header{Magic: pnm.Gray, Comment: DefaultComment, Width: 6000, Height: 6000}, h)

	// 255K is half way between 180K and 330K
	row := make([]byte, 6000)
	_, err = io.ReadFull(r, row)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{128}, 6000), row)
}

func TestDrawColorSubstituted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full size grid in short mode")
	}

	dir := t.TempDir()
	out := t.TempDir()
	file := sparseGrid(t, dir, "201606010230.tir.01.fld.geoss", 72000000)

	logs := new(bytes.Buffer)
	result, err := newTestHimawari(log.New(logs, "", 0)).Draw(context.Background(), file, Options{
		Colorscale: "VIS",
		OutputDir:  out,
		Preview:    100,
	})
	require.NoError(t, err)

	assert.Equal(t, "IRBD", result.Colorscale)
	require.Len(t, result.Warnings, 1)
	assert.ErrorIs(t, result.Warnings[0], ErrInvalidPaletteRequest)
	assert.Contains(t, logs.String(), "[ERROR] Wrong colorscale for data in band TIR01")
	assert.Contains(t, logs.String(), "Use `IRBD` instead")

	assert.Equal(t, filepath.Join(out, "201606010230.tir.01.ppm"), result.Color)
	assert.Equal(t, int64(len(tirHeader)+36000000*3), fileSize(t, result.Color))
	assert.Equal(t, filepath.Join(out, "201606010230.tir.01.png"), result.Preview)
	assert.Equal(t, []string{"201606010230.tir.01.pgm", "201606010230.tir.01.png", "201606010230.tir.01.ppm"}, listDir(t, out))
}

func TestDrawCompressed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full size grid in short mode")
	}

	dir := t.TempDir()
	file := copyTestdata(t, dir, "201606010230.tir.01.fld.geoss.bz2")

	result, err := newTestHimawari(nil).Draw(context.Background(), file, Options{RemoveDecompressed: true})
	require.NoError(t, err)
	assert.True(t, result.Metadata.Compressed)
	assert.Equal(t, int64(len(tirHeader)+36000000), fileSize(t, result.Greyscale))
	assert.Equal(t, []string{"201606010230.tir.01.fld.geoss.bz2", "201606010230.tir.01.pgm"}, listDir(t, dir))
}

func TestDrawCompressedUnexpectedSize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full size grid in short mode")
	}

	dir := t.TempDir()
	file := copyTestdata(t, dir, "201606010230.tir.02.fld.geoss.bz2")

	_, err := newTestHimawari(nil).Draw(context.Background(), file, Options{})
	assert.ErrorIs(t, err, ErrUnexpectedDataSize)
	assert.Equal(t, []string{"201606010230.tir.02.fld.geoss.bz2"}, listDir(t, dir))
}

func TestDrawTransformFailure(t *testing.T) {
	dir := t.TempDir()
	scratch := t.TempDir()
	file := sparseGrid(t, dir, "201606010230.tir.01.fld.geoss", 72000000)

	_, err := newTestHimawari(nil).Draw(context.Background(), file, Options{
		Transformer: ExecTransformer{Command: "/nonexistent/converter", Dir: scratch, Stderr: ioutil.Discard},
	})
	assert.ErrorIs(t, err, ErrExternalToolFailure)
	assert.Equal(t, []string{"201606010230.tir.01.fld.geoss"}, listDir(t, dir))
	assert.Empty(t, listDir(t, scratch))
}

func TestDrawRemapFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full size grid in short mode")
	}

	dir := t.TempDir()
	scratch := t.TempDir()
	file := sparseGrid(t, dir, "201606010230.tir.01.fld.geoss", 72000000)

	_, err := newTestHimawari(nil).Draw(context.Background(), file, Options{
		Colorscale: "NRL",
		Remapper:   ExecRemapper{Command: "/nonexistent/pgmtoppm", Dir: scratch, Stderr: ioutil.Discard},
	})
	assert.ErrorIs(t, err, ErrExternalToolFailure)
	assert.Equal(t, []string{"201606010230.tir.01.fld.geoss"}, listDir(t, dir))
	assert.Empty(t, listDir(t, scratch))
}
