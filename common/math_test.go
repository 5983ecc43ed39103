package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matEps = 1e-4

// TestIdentityMulIsNoop checks that multiplying by the identity matrix
// returns the other operand unchanged, on both sides.
func TestIdentityMulIsNoop(t *testing.T) {
	assert := assert.New(t)

	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i + 1)
	}

	Mul4(out[:], id[:], m[:])
	for i := range m {
		assert.InDelta(m[i], out[i], matEps, "identity * m at %d", i)
	}

	Mul4(out[:], m[:], id[:])
	for i := range m {
		assert.InDelta(m[i], out[i], matEps, "m * identity at %d", i)
	}
}

// TestInvert4RoundTrip checks that M * Invert(M) == Identity for a
// well-conditioned affine matrix (translation + rotation), the kind of
// matrix the 3D mesh pass's view/model matrices are built from.
func TestInvert4RoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var m, inv, product, id [16]float32
	BuildModelMatrix(m[:], 3, -2, 5, 0.4, 0.9, -0.3, 1, 1, 1)

	require.True(Invert4(inv[:], m[:]), "Invert4 reported singular for a well-conditioned matrix")

	Mul4(product[:], m[:], inv[:])
	Identity(id[:])
	for i := range id {
		assert.InDelta(id[i], product[i], matEps, "m * inv(m) at %d", i)
	}
}

// TestInvert4Singular confirms a singular (all-zero) matrix is reported as
// non-invertible rather than silently producing garbage.
func TestInvert4Singular(t *testing.T) {
	var m, out [16]float32
	assert.False(t, Invert4(out[:], m[:]), "Invert4 must report an all-zero matrix as singular")
}

// TestBuildModelMatrixIdentityTransform checks that zero rotation and unit
// scale reduces the model matrix to a pure translation.
func TestBuildModelMatrixIdentityTransform(t *testing.T) {
	assert := assert.New(t)

	var m [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0, 0, 0, 1, 1, 1)

	var id [16]float32
	Identity(id[:])
	for i := 0; i < 12; i++ {
		assert.InDelta(id[i], m[i], matEps, "rotation/scale block at %d", i)
	}
	assert.Equal([]float32{1, 2, 3, 1}, m[12:16], "translation column")
}
