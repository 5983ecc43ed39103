package core

import (
	"github.com/kanso-gfx/kanso/handle"
	"github.com/kanso-gfx/kanso/resource"
)

// LoadRunTexture implements fontcache.TextureLoader by allocating a Static
// RGBA8 texture for a newly rasterized font run. The cache calls this once
// per cache miss, never per glyph.
//
// Returns:
//   - handle.Handle: the new texture's handle
//   - error: non-nil if allocation fails
func (c *Core) LoadRunTexture(pixels []byte, width, height int) (handle.Handle, error) {
	h, err := c.textureAllocInternal(resource.KindStatic, uint32(width), uint32(height), resource.PixelFormatRGBA8, pixels)
	if err != nil {
		return handle.Zero, err
	}
	return h, nil
}
