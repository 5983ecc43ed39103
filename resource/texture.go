// Package resource defines the renderer's GPU resource types — textures,
// buffers, and window equipment — and the handle-backed registries that own
// them. These types hold cogentcore/webgpu objects directly; the resource
// kind (Static vs Dynamic) governs upload/refill legality, not the backend API.
package resource

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PixelFormat enumerates the pixel formats a Texture2D may be created with.
// Each has a fixed bytes-per-pixel and a channel-swizzle matrix (see
// SwizzleMatrix) that the fragment shader uses to normalize single- and
// two-channel textures into RGBA samples.
type PixelFormat int

const (
	PixelFormatR8 PixelFormat = iota
	PixelFormatRG8
	PixelFormatRGBA8
	PixelFormatBGRA8
	PixelFormatR16
	PixelFormatRGBA16
	PixelFormatR32F
)

// BytesPerPixel returns the fixed byte stride of one pixel in f.
//
// Returns:
//   - int: bytes per pixel
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatR8:
		return 1
	case PixelFormatRG8:
		return 2
	case PixelFormatRGBA8, PixelFormatBGRA8, PixelFormatR32F:
		return 4
	case PixelFormatR16:
		return 2
	case PixelFormatRGBA16:
		return 8
	default:
		return 4
	}
}

// WGPUFormat maps f to the corresponding cogentcore/webgpu texture format.
//
// Returns:
//   - wgpu.TextureFormat: the backend texture format
func (f PixelFormat) WGPUFormat() wgpu.TextureFormat {
	switch f {
	case PixelFormatR8:
		return wgpu.TextureFormatR8Unorm
	case PixelFormatRG8:
		return wgpu.TextureFormatRG8Unorm
	case PixelFormatRGBA8:
		return wgpu.TextureFormatRGBA8Unorm
	case PixelFormatBGRA8:
		return wgpu.TextureFormatBGRA8Unorm
	case PixelFormatR16:
		return wgpu.TextureFormatR16Uint
	case PixelFormatRGBA16:
		return wgpu.TextureFormatRGBA16Float
	case PixelFormatR32F:
		return wgpu.TextureFormatR32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

// SwizzleMatrix returns the 4x4 channel-swizzle matrix (column-major, the
// same convention as every other matrix crossing the wire, since WGSL's
// mat4x4 is column-major in memory) the UI and 3D pass fragment shaders
// multiply a raw texture sample by to normalize it into RGBA. Single- and
// two-channel formats replicate their sole/first channel across RGB and
// force alpha to 1; four-channel formats pass through unchanged.
//
// Returns:
//   - [16]float32: column-major swizzle matrix
func (f PixelFormat) SwizzleMatrix() [16]float32 {
	switch f {
	case PixelFormatR8, PixelFormatR16, PixelFormatR32F:
		// column 0 (the sampled red channel) feeds R, G, and B; the sample's
		// constant w=1 feeds alpha
		return [16]float32{
			1, 1, 1, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 1,
		}
	case PixelFormatRG8:
		return [16]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 1,
		}
	default:
		return [16]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}
	}
}

// Kind distinguishes Static (uploaded once via a staging buffer) from
// Dynamic (host-mapped, persistently visible) GPU resources.
type Kind int

const (
	KindStatic Kind = iota
	KindDynamic
)

// Texture2D owns a GPU image, an image view, and (backend-dependent) a
// sampler reference. Static textures are illegal to refill after creation;
// Dynamic textures may be updated in place via FillRegion.
type Texture2D struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView

	WidthPx, HeightPx uint32
	Format            PixelFormat
	Kind              Kind
}

// FillRegion uploads data into the subrect (x, y, w, h) of the texture. Only
// legal for Dynamic textures; refilling a Static texture is a programming
// error but is not required to be detected at this layer (the caller's
// resource discipline is trusted, matching the Static/Dynamic contract).
//
// Parameters:
//   - queue: the device queue used to write the texture
//   - x, y, w, h: the destination subrect in pixels
//   - data: tightly packed pixel data, row-major, Format.BytesPerPixel() bytes per pixel
//
// Returns:
//   - error: an error if the texture is not Dynamic or data is the wrong size
func (t *Texture2D) FillRegion(queue *wgpu.Queue, x, y, w, h uint32, data []byte) error {
	if t.Kind != KindDynamic {
		return fmt.Errorf("resource: FillRegion called on a Static texture")
	}
	bpp := uint32(t.Format.BytesPerPixel())
	if uint32(len(data)) != w*h*bpp {
		return fmt.Errorf("resource: FillRegion data size %d does not match %dx%d at %d bytes/px", len(data), w, h, bpp)
	}
	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.Texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: x, Y: y, Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  w * bpp,
			RowsPerImage: h,
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// Release destroys the texture's GPU objects. Callers MUST have waited for
// device idle (or an equivalent fence wait) first, since the texture's last
// use may still be in flight in a previous frame.
func (t *Texture2D) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Destroy()
		t.Texture.Release()
		t.Texture = nil
	}
}
