package himawari

import (
	"context"
	"testing"

	"github.com/bodgit/himawari/calibration"
	"github.com/bodgit/himawari/convert"
	"github.com/bodgit/himawari/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identity clamps physical values straight into greyscale
type identity struct{}

func (identity) Greyscale(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
func (identity) Physical(g uint8) float64 { return float64(g) }
func (identity) Colorscales() []string    { return []string{"VIS"} }
func (identity) Recommend() string        { return "VIS" }

func TestBuildLookupTableZero(t *testing.T) {
	table := make(calibration.Table, calibration.Size)

	lut, err := BuildLookupTable(context.Background(), table, identity{}, 4)
	require.NoError(t, err)
	require.Len(t, lut, LookupTableSize)

	want := identity{}.Greyscale(0)
	for i, v := range lut {
		if v != want {
			t.Fatalf("entry %d is %d", i, v)
		}
	}
}

func TestBuildLookupTable(t *testing.T) {
	table := make(calibration.Table, calibration.Size)
	for i := range table {
		table[i] = float64(i % 300)
	}

	c, err := convert.New(metadata.TIR, 1)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 3, 16} {
		lut, err := BuildLookupTable(context.Background(), table, c, workers)
		require.NoError(t, err)
		require.Len(t, lut, LookupTableSize)
		for i := range lut {
			if lut[i] != c.Greyscale(table[i]) {
				t.Fatalf("workers %d: entry %d is %d, expected %d", workers, i, lut[i], c.Greyscale(table[i]))
			}
		}
	}
}

func TestBuildLookupTableBadLength(t *testing.T) {
	_, err := BuildLookupTable(context.Background(), make(calibration.Table, 4096), identity{}, 1)
	assert.Error(t, err)
}

func TestBuildLookupTableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildLookupTable(ctx, make(calibration.Table, calibration.Size), identity{}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
