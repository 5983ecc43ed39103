package core

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

// TestResolvePresentMode checks the PresentMode mapping, including the
// mailbox-to-immediate fallback when the surface's capability query does
// not list mailbox support.
func TestResolvePresentMode(t *testing.T) {
	assert := assert.New(t)

	withMailbox := wgpu.SurfaceCapabilities{
		PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox},
	}
	withoutMailbox := wgpu.SurfaceCapabilities{
		PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate},
	}

	assert.Equal(wgpu.PresentModeFifo, resolvePresentMode(PresentModeVSync, withoutMailbox, NopLogger{}))
	assert.Equal(wgpu.PresentModeImmediate, resolvePresentMode(PresentModeImmediate, withMailbox, NopLogger{}))
	assert.Equal(wgpu.PresentModeMailbox, resolvePresentMode(PresentModeMailbox, withMailbox, NopLogger{}))
	assert.Equal(wgpu.PresentModeImmediate, resolvePresentMode(PresentModeMailbox, withoutMailbox, NopLogger{}))
}

// TestScissorFromClip checks the logical-to-framebuffer scissor conversion:
// DPI scaling, clamping to the swapchain extent, and the empty/inverted
// rect convention meaning "no clip".
func TestScissorFromClip(t *testing.T) {
	assert := assert.New(t)

	x, y, w, h := scissorFromClip([4]float32{10, 20, 110, 220}, 1, 800, 600)
	assert.Equal([4]uint32{10, 20, 100, 200}, [4]uint32{x, y, w, h})

	// DPI scale multiplies every edge
	x, y, w, h = scissorFromClip([4]float32{10, 20, 110, 220}, 2, 800, 600)
	assert.Equal([4]uint32{20, 40, 200, 400}, [4]uint32{x, y, w, h})

	// an empty rect means no clip and maps to the full extent
	x, y, w, h = scissorFromClip([4]float32{0, 0, 0, 0}, 1, 800, 600)
	assert.Equal([4]uint32{0, 0, 800, 600}, [4]uint32{x, y, w, h})

	// an inverted rect is treated the same way
	x, y, w, h = scissorFromClip([4]float32{100, 100, 50, 50}, 1, 800, 600)
	assert.Equal([4]uint32{0, 0, 800, 600}, [4]uint32{x, y, w, h})

	// edges past the extent clamp to it
	x, y, w, h = scissorFromClip([4]float32{700, 500, 900, 700}, 1, 800, 600)
	assert.Equal([4]uint32{700, 500, 100, 100}, [4]uint32{x, y, w, h})

	// a rect entirely off-screen collapses to a zero-area scissor
	x, y, w, h = scissorFromClip([4]float32{900, 700, 1000, 800}, 1, 800, 600)
	assert.Equal(uint32(0), w)
	assert.Equal(uint32(0), h)

	// a non-positive DPI scale is treated as 1
	x, y, w, h = scissorFromClip([4]float32{10, 20, 110, 220}, 0, 800, 600)
	assert.Equal([4]uint32{10, 20, 100, 200}, [4]uint32{x, y, w, h})
}

// TestAttachmentLoadOps checks that only the frame's first color-writing
// pass clears the shared color and depth attachments; later passes load
// them so they composite onto earlier work.
func TestAttachmentLoadOps(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(wgpu.LoadOpClear, colorAttachmentLoadOp(true))
	assert.Equal(wgpu.LoadOpLoad, colorAttachmentLoadOp(false))
	assert.Equal(wgpu.LoadOpClear, depthAttachmentLoadOp(true))
	assert.Equal(wgpu.LoadOpLoad, depthAttachmentLoadOp(false))
}
