package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tables := []struct {
		name string
		file string
		want Metadata
	}{
		{
			"tir compressed",
			"201606010230.tir.01.fld.geoss.bz2",
			Metadata{"201606010230", TIR, 1, true},
		},
		{
			"tir",
			"201606010230.tir.10.fld.geoss",
			Metadata{"201606010230", TIR, 10, false},
		},
		{
			"ext with directory",
			"/data/201512312350.ext.01.fld.geoss.bz2",
			Metadata{"201512312350", EXT, 1, true},
		},
		{
			"vis",
			"201701010000.vis.03.fld.geoss",
			Metadata{"201701010000", VIS, 3, false},
		},
		{
			"sir",
			"201701010000.sir.02.fld.geoss",
			Metadata{"201701010000", SIR, 2, false},
		},
		{
			"unknown channel still parses",
			"201701010000.sir.99.fld.geoss",
			Metadata{"201701010000", SIR, 99, false},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			m, err := Parse(table.file)
			require.NoError(t, err)
			assert.Equal(t, table.want, *m)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, file := range []string{
		"",
		"201606010230.tir.01.fld.geoss.gz",
		"201606010230.TIR.01.fld.geoss",
		"20160601023.tir.01.fld.geoss",
		"2016060102300.tir.01.fld.geoss",
		"201606010230.abc.01.fld.geoss",
		"201606010230.tir.1.fld.geoss",
		"201606010230.tir.001.fld.geoss",
		"201606010230.tir.01.geoss",
		"201606010230.tir.01.fld.geoss.bz2.tmp",
		"x201606010230.tir.01.fld.geoss",
	} {
		_, err := Parse(file)
		assert.ErrorIs(t, err, ErrInvalidFormat, file)
	}
}

func TestMetadata(t *testing.T) {
	m, err := Parse("201606010230.tir.01.fld.geoss.bz2")
	require.NoError(t, err)

	assert.Equal(t, "201606010230.tir.01", m.Basename())
	assert.Equal(t, "201606010230.tir.01.fld.geoss", m.GridFilename())
	assert.Equal(t, "TIR01", m.String())
	assert.Equal(t, 6000, m.Side())
	assert.Equal(t, int64(72000000), m.GridSize())

	when, err := m.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, time.June, 1, 2, 30, 0, 0, time.UTC), when)
}

func TestValidate(t *testing.T) {
	tables := []struct {
		band Band
		size int64
	}{
		{EXT, 1152000000},
		{VIS, 288000000},
		{SIR, 72000000},
		{TIR, 72000000},
	}

	for _, table := range tables {
		t.Run(string(table.band), func(t *testing.T) {
			m := &Metadata{Timestamp: "201606010230", Band: table.band, Number: 1}

			assert.NoError(t, m.Validate(table.size))

			for _, size := range []int64{0, table.size - 1, table.size + 1, table.size * 2} {
				assert.ErrorIs(t, m.Validate(size), ErrUnexpectedSize)
			}
			for _, other := range tables {
				if other.size != table.size {
					assert.ErrorIs(t, m.Validate(other.size), ErrUnexpectedSize)
				}
			}
		})
	}
}

func TestValidateUnknownBand(t *testing.T) {
	m := &Metadata{Timestamp: "201606010230", Band: Band("XYZ"), Number: 1}
	assert.ErrorIs(t, m.Validate(0), ErrUnsupportedBand)
}

func TestParseBand(t *testing.T) {
	b, err := ParseBand("tir")
	require.NoError(t, err)
	assert.Equal(t, TIR, b)

	b, err = ParseBand("Ext")
	require.NoError(t, err)
	assert.Equal(t, EXT, b)

	_, err = ParseBand("uv")
	assert.ErrorIs(t, err, ErrUnsupportedBand)
}

func TestCheckChannel(t *testing.T) {
	assert.NoError(t, EXT.CheckChannel(1))
	assert.ErrorIs(t, EXT.CheckChannel(2), ErrUnsupportedBand)
	assert.NoError(t, VIS.CheckChannel(3))
	assert.ErrorIs(t, VIS.CheckChannel(4), ErrUnsupportedBand)
	assert.NoError(t, SIR.CheckChannel(2))
	assert.ErrorIs(t, SIR.CheckChannel(3), ErrUnsupportedBand)
	assert.NoError(t, TIR.CheckChannel(10))
	assert.ErrorIs(t, TIR.CheckChannel(11), ErrUnsupportedBand)
	assert.ErrorIs(t, TIR.CheckChannel(0), ErrUnsupportedBand)
}
