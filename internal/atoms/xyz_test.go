package atoms

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pairenergy/internal/geom"
)

const twoFrames = `3
Lattice="10 0 0 0 10 0 0 0 12" Properties=species:S:1:pos:R:3 pbc="T T F"
Ar 0.0 0.0 0.0
Ar 1.0 0.0 0.0
Kr 0.0 2.5 9.5
2
plain comment without keys
He 0 0 0
He 0 0 3
`

func TestReadXYZ(t *testing.T) {
	frames, err := ReadXYZ(strings.NewReader(twoFrames))
	require.NoError(t, err)
	require.Len(t, frames, 2)

	first := frames[0]
	assert.Equal(t, 3, first.Len())
	assert.Equal(t, geom.Orthorhombic(10, 10, 12), first.Cell())
	assert.Equal(t, geom.PBC{true, true, false}, first.PBC())
	assert.Equal(t, "Kr", first.Species(2))
	assert.Equal(t, geom.Vec3{0, 2.5, 9.5}, first.Position(2))

	second := frames[1]
	assert.Equal(t, geom.PBC{}, second.PBC())
	assert.Equal(t, geom.Cell{}, second.Cell())
}

func TestReadXYZ_LatticeDefaultsToPeriodic(t *testing.T) {
	in := "1\nLattice=\"5 0 0 0 5 0 0 0 5\"\nAr 0 0 0\n"
	frames, err := ReadXYZ(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, geom.FullPBC, frames[0].PBC())
}

func TestReadXYZ_Errors(t *testing.T) {
	tests := map[string]string{
		"bad count":    "x\ncomment\n",
		"short frame":  "2\ncomment\nAr 0 0 0\n",
		"bad pbc":      "1\npbc=\"T X T\"\nAr 0 0 0\n",
		"bad lattice":  "1\nLattice=\"1 2 3\"\nAr 0 0 0\n",
		"bad number":   "1\n\nAr 0 zero 0\n",
		"missing cols": "1\n\nAr 0 0\n",
		"empty":        "",
		"no comment":   "1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadXYZ(strings.NewReader(in))
			assert.Error(t, err)
		})
	}

	_, err := ReadXYZ(strings.NewReader("1\npbc=\"T 2 T\"\nAr 0 0 0\n"))
	assert.ErrorIs(t, err, geom.ErrInvalidPeriodicity)
}

func TestWriteXYZ_RoundTrip(t *testing.T) {
	frames, err := ReadXYZ(strings.NewReader(twoFrames))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXYZ(&buf, frames[0]))

	again, err := ReadXYZ(&buf)
	require.NoError(t, err)
	require.Len(t, again, 1)

	if diff := cmp.Diff(frames[0], again[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
