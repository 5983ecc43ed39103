package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFillRegionRejectsStaticTexture checks that only Dynamic textures
// accept FillRegion. The Kind check must reject before ever touching the
// queue, so this is safe to exercise with a nil queue.
func TestFillRegionRejectsStaticTexture(t *testing.T) {
	tex := &Texture2D{Kind: KindStatic, Format: PixelFormatRGBA8, WidthPx: 4, HeightPx: 4}
	err := tex.FillRegion(nil, 0, 0, 4, 4, make([]byte, 4*4*4))
	assert.Error(t, err, "FillRegion on a Static texture must fail")
}

// TestFillRegionRejectsWrongSizedData checks the data-size validation runs
// before any GPU call, independent of the Static/Dynamic check.
func TestFillRegionRejectsWrongSizedData(t *testing.T) {
	tex := &Texture2D{Kind: KindDynamic, Format: PixelFormatR8, WidthPx: 4, HeightPx: 4}
	err := tex.FillRegion(nil, 0, 0, 4, 4, make([]byte, 3))
	assert.Error(t, err, "FillRegion with mismatched data size must fail")
}

func TestPixelFormatBytesPerPixel(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		format PixelFormat
		want   int
	}{
		{PixelFormatR8, 1},
		{PixelFormatRG8, 2},
		{PixelFormatRGBA8, 4},
		{PixelFormatBGRA8, 4},
		{PixelFormatR16, 2},
		{PixelFormatRGBA16, 8},
		{PixelFormatR32F, 4},
	}
	for _, c := range cases {
		assert.Equal(c.want, c.format.BytesPerPixel(), "PixelFormat(%d)", c.format)
	}
}

// TestSwizzleMatrixSingleChannelBroadcastsToRGB checks that an R-only
// format's swizzle matrix reads the same red channel into R, G, and B, per
// normalizing single-/two-channel textures into RGBA samples.
func TestSwizzleMatrixSingleChannelBroadcastsToRGB(t *testing.T) {
	assert := assert.New(t)

	m := PixelFormatR8.SwizzleMatrix()
	// Column-major 4x4: column 0 (the red input channel) must feed the R, G,
	// and B outputs; the sample's constant w must pass alpha through opaque.
	assert.Equal(float32(1), m[0], "R output must read red")
	assert.Equal(float32(1), m[1], "G output must read red")
	assert.Equal(float32(1), m[2], "B output must read red")
	assert.Equal(float32(1), m[15], "alpha must pass through")
}

// TestSwizzleMatrixRGBAIsIdentity checks a four-channel format passes
// through unmodified.
func TestSwizzleMatrixRGBAIsIdentity(t *testing.T) {
	want := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	assert.Equal(t, want, PixelFormatRGBA8.SwizzleMatrix())
}
