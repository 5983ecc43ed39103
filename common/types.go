// package common contains small helpers shared across the renderer's
// packages that don't belong to any one of them in particular.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
)

// DecodeImageRGBA decodes encoded image bytes (PNG or JPEG) to tightly packed RGBA
// pixel data, for callers staging a Texture2D upload from an encoded source rather
// than raw pixels. The shader toolchain and font file loader are external
// collaborators; this helper only covers the common case of turning an encoded
// blob into pixel data core.TextureAllocFromImage can upload directly.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: image width in pixels
//   - uint32: image height in pixels
//   - error: error if decoding fails
func DecodeImageRGBA(data []byte) ([]byte, uint32, uint32, error) {
	if len(data) == 0 {
		return nil, 0, 0, fmt.Errorf("image data is empty")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return rgba.Pix, uint32(width), uint32(height), nil
}
