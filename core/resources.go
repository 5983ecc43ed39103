package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/common"
	"github.com/kanso-gfx/kanso/handle"
	"github.com/kanso-gfx/kanso/resource"
)

// textureAllocInternal creates a Texture2D of the given kind/format/size,
// optionally uploading data immediately, and inserts it into the texture
// registry. Static textures with data upload it via queue.WriteTexture at
// creation (cogentcore/webgpu routes the copy through the queue's own
// internal staging path, so there is no separate staging-buffer object at
// this API layer); Dynamic textures are left blank for callers to fill in
// via TextureFillRegion.
func (c *Core) textureAllocInternal(kind resource.Kind, width, height uint32, format resource.PixelFormat, data []byte) (handle.Handle, error) {
	if uint64(len(data)) > c.stagingBufferSize {
		return handle.Zero, fmt.Errorf("core: texture upload of %d bytes exceeds the %d-byte staging capacity", len(data), c.stagingBufferSize)
	}
	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "kanso texture",
		Usage:         usage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        format.WGPUFormat(),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return handle.Zero, fmt.Errorf("core: create texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return handle.Zero, fmt.Errorf("core: create texture view: %w", err)
	}

	t := &resource.Texture2D{
		Texture:  tex,
		View:     view,
		WidthPx:  width,
		HeightPx: height,
		Format:   format,
		Kind:     kind,
	}

	if len(data) > 0 {
		bpp := uint32(format.BytesPerPixel())
		c.queue.WriteTexture(
			&wgpu.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: wgpu.TextureAspectAll},
			data,
			&wgpu.TextureDataLayout{BytesPerRow: width * bpp, RowsPerImage: height},
			&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		)
	}

	return c.textures.Insert(t), nil
}

// TextureAlloc creates a texture of the given kind, dimensions, and pixel
// format, optionally uploading data immediately.
//
// Parameters:
//   - kind: Static (immutable after creation) or Dynamic (refillable)
//   - width, height: texture dimensions in pixels
//   - format: the pixel format
//   - data: optional initial pixel data, tightly packed row-major; nil leaves the texture blank
//
// Returns:
//   - handle.Handle: the new texture's handle, or the zero handle on failure
func (c *Core) TextureAlloc(kind resource.Kind, width, height uint32, format resource.PixelFormat, data []byte) handle.Handle {
	h, err := c.textureAllocInternal(kind, width, height, format, data)
	if err != nil {
		c.logger.Printf("core: texture alloc failed: %v", err)
		return handle.Zero
	}
	return h
}

// TextureAllocFromImage decodes an encoded PNG or JPEG image and allocates a
// RGBA8 Texture2D from its pixels, a convenience for callers staging a
// texture upload from an encoded source (e.g. a glyph atlas snapshot or an
// application asset) rather than raw pixel data. The application's own font
// file loader and shader toolchain remain external collaborators; this
// only covers the common PNG/JPEG-to-RGBA8 path.
//
// Parameters:
//   - kind: Static (immutable after creation) or Dynamic (refillable)
//   - encoded: PNG- or JPEG-encoded image bytes
//
// Returns:
//   - handle.Handle: the new texture's handle, or the zero handle on failure
//   - error: non-nil if encoded could not be decoded
func (c *Core) TextureAllocFromImage(kind resource.Kind, encoded []byte) (handle.Handle, error) {
	pixels, width, height, err := common.DecodeImageRGBA(encoded)
	if err != nil {
		return handle.Zero, fmt.Errorf("core: TextureAllocFromImage: %w", err)
	}
	h, err := c.textureAllocInternal(kind, width, height, resource.PixelFormatRGBA8, pixels)
	if err != nil {
		return handle.Zero, fmt.Errorf("core: TextureAllocFromImage: %w", err)
	}
	return h, nil
}

// TextureRelease destroys a texture and invalidates its handle. A stale or
// zero handle is a no-op.
// Waits for device idle first, since the texture's last use may still be in
// flight in a previous frame.
func (c *Core) TextureRelease(h handle.Handle) {
	t, ok := c.textures.Lookup(h)
	if !ok {
		return
	}
	c.waitIdle()
	t.Release()
	c.textures.Release(h)
}

// TextureFillRegion uploads data into a Dynamic texture's subrect.
//
// Returns:
//   - error: non-nil if h does not resolve to a live Dynamic texture, or data is the wrong size
func (c *Core) TextureFillRegion(h handle.Handle, x, y, w, hgt uint32, data []byte) error {
	t, ok := c.textures.Lookup(h)
	if !ok {
		return fmt.Errorf("core: TextureFillRegion: invalid handle")
	}
	return t.FillRegion(c.queue, x, y, w, hgt, data)
}

// TextureSize returns a texture's dimensions in pixels, or (0, 0) for an
// invalid handle.
func (c *Core) TextureSize(h handle.Handle) (uint32, uint32) {
	t, ok := c.textures.Lookup(h)
	if !ok {
		return 0, 0
	}
	return t.WidthPx, t.HeightPx
}

// TextureFormat returns a texture's pixel format, or PixelFormatRGBA8 for an
// invalid handle.
func (c *Core) TextureFormat(h handle.Handle) resource.PixelFormat {
	t, ok := c.textures.Lookup(h)
	if !ok {
		return resource.PixelFormatRGBA8
	}
	return t.Format
}

// TextureKind returns a texture's Static/Dynamic kind, or KindStatic for an
// invalid handle.
func (c *Core) TextureKind(h handle.Handle) resource.Kind {
	t, ok := c.textures.Lookup(h)
	if !ok {
		return resource.KindStatic
	}
	return t.Kind
}

// BufferAlloc creates a GPU buffer of sizeBytes with the given usage flags,
// optionally uploading initial data.
//
// Parameters:
//   - kind: Static or Dynamic, governing refill legality at the caller's discretion
//   - sizeBytes: the buffer's fixed size
//   - usage: the wgpu usage flags (Vertex, Index, Storage, Uniform, CopyDst, ...)
//   - data: optional initial data to upload; nil leaves the buffer's contents undefined
//
// Returns:
//   - handle.Handle: the new buffer's handle, or the zero handle on failure
func (c *Core) BufferAlloc(kind resource.Kind, sizeBytes uint64, usage wgpu.BufferUsage, data []byte) handle.Handle {
	if uint64(len(data)) > c.stagingBufferSize {
		c.logger.Printf("core: buffer upload of %d bytes exceeds the %d-byte staging capacity", len(data), c.stagingBufferSize)
		return handle.Zero
	}
	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "kanso buffer",
		Size:  sizeBytes,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		c.logger.Printf("core: buffer alloc failed: %v", err)
		return handle.Zero
	}

	b := &resource.Buffer{
		Buf:       buf,
		SizeBytes: sizeBytes,
		Kind:      kind,
		Usage:     usage,
	}

	if len(data) > 0 {
		if err := b.Write(c.queue, 0, data); err != nil {
			c.logger.Printf("core: buffer initial write failed: %v", err)
		}
	}

	return c.buffers.Insert(b)
}

// BufferRelease destroys a buffer and invalidates its handle. A stale or
// zero handle is a no-op. Waits for device idle first, since the buffer's
// last use may still be in flight in a previous frame.
func (c *Core) BufferRelease(h handle.Handle) {
	b, ok := c.buffers.Lookup(h)
	if !ok {
		return
	}
	c.waitIdle()
	b.Release()
	c.buffers.Release(h)
}
