package passlist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGPUInstanceSizes pins the wire layouts the shaders expect: a
// Rect2DInstance is 96 bytes and a Mesh3DInstance is 64 bytes, matching
// what the WGSL shaders and the transient instance buffer's stride math
// both assume.
func TestGPUInstanceSizes(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(96, (&GPURect2DInstance{}).Size())
	assert.Equal(64, (&GPUMesh3DInstance{}).Size())
	assert.Equal(80, (&GPUUIUniform{}).Size())
	assert.Equal(192, (&GPUMesh3DUniform{}).Size())
	assert.Equal(64, (&GPUBlurParams{}).Size())
}

func readF32(buf []byte, off int) float32 {
	bits := uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
	return math.Float32frombits(bits)
}

func readU32(buf []byte, off int) uint32 {
	return uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
}

// TestGPURect2DInstanceMarshalFieldOffsets checks Marshal places each field
// at the byte offset the WGSL struct (and the fragment shader reading it)
// expects, rather than just round-tripping through the same struct.
func TestGPURect2DInstanceMarshalFieldOffsets(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	inst := GPURect2DInstance{
		Dst:         [4]float32{1, 2, 3, 4},
		Src:         [4]float32{0, 0, 1, 1},
		Colors:      [4]uint32{0xFF0000FF, 0x00FF00FF, 0x0000FFFF, 0xFFFFFFFF},
		CornerRadii: [4]float32{20, 20, 20, 20},
		EdgeParams:  [4]float32{2, 1, 1, 0},
	}
	buf := inst.Marshal()
	require.Len(buf, 96)

	assert.Equal(float32(1), readF32(buf, 0), "Dst[0] at offset 0")
	assert.Equal(float32(0), readF32(buf, 16), "Src[0] at offset 16")
	assert.Equal(uint32(0xFF0000FF), readU32(buf, 32), "Colors[0] at offset 32")
	assert.Equal(float32(20), readF32(buf, 48), "CornerRadii[0] at offset 48")
	assert.Equal(float32(2), readF32(buf, 64), "EdgeParams[0] (border_thickness) at offset 64")
	assert.Equal(float32(1), readF32(buf, 68), "EdgeParams[1] (edge_softness) at offset 68")
}

// TestGPUMesh3DUniformMarshalOffsets checks the projection matrix lands at
// byte offset 64, immediately after the 64-byte view matrix, and the
// channel-swizzle matrix at offset 128, matching the frame uniform
// sub-range layout the mesh shader expects.
func TestGPUMesh3DUniformMarshalOffsets(t *testing.T) {
	assert := assert.New(t)

	u := GPUMesh3DUniform{}
	u.View[0] = 1
	u.Projection[0] = 2
	u.ChannelSwizzle[0] = 3
	buf := u.Marshal()

	assert.Equal(float32(1), readF32(buf, 0), "View[0] at offset 0")
	assert.Equal(float32(2), readF32(buf, 64), "Projection[0] at offset 64")
	assert.Equal(float32(3), readF32(buf, 128), "ChannelSwizzle[0] at offset 128")
}
