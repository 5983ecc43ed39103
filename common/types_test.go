package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeImageRGBARoundTrip encodes a tiny synthetic PNG in-memory and
// checks DecodeImageRGBA recovers the same dimensions and pixel values,
// exercising the common path core.TextureAllocFromImage relies on. Opaque
// pixels come back exactly; the translucent pixel goes through PNG's
// non-premultiplied storage and back to premultiplied RGBA, so each color
// channel comes back one lower from rounding.
func TestDecodeImageRGBARoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	src.Set(1, 0, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	src.Set(0, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	src.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 128})

	var buf bytes.Buffer
	require.NoError(png.Encode(&buf, src))

	pixels, w, h, err := DecodeImageRGBA(buf.Bytes())
	require.NoError(err)
	require.Equal(uint32(2), w)
	require.Equal(uint32(2), h)
	require.Len(pixels, 2*2*4)

	px := func(x, y int) [4]byte {
		i := (y*2 + x) * 4
		return [4]byte{pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]}
	}
	assert.Equal([4]byte{255, 0, 0, 255}, px(0, 0))
	assert.Equal([4]byte{9, 19, 29, 128}, px(1, 1))
}

// TestDecodeImageRGBARejectsEmpty checks the empty-input guard runs before
// any attempt to sniff an image format.
func TestDecodeImageRGBARejectsEmpty(t *testing.T) {
	_, _, _, err := DecodeImageRGBA(nil)
	assert.Error(t, err)
}

// TestDecodeImageRGBARejectsGarbage checks malformed input produces an
// error instead of a panic.
func TestDecodeImageRGBARejectsGarbage(t *testing.T) {
	_, _, _, err := DecodeImageRGBA([]byte("not an image"))
	assert.Error(t, err)
}
