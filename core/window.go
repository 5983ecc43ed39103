package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/handle"
	"github.com/kanso-gfx/kanso/resource"
	"github.com/kanso-gfx/kanso/window"
)

// resolvePresentMode maps the core-wide PresentMode to a concrete
// wgpu.PresentMode, querying the surface's capabilities for Mailbox support
// since mailbox is not guaranteed on every platform.
func resolvePresentMode(mode PresentMode, capabilities wgpu.SurfaceCapabilities, logger Logger) wgpu.PresentMode {
	switch mode {
	case PresentModeVSync:
		return wgpu.PresentModeFifo
	case PresentModeMailbox:
		for _, m := range capabilities.PresentModes {
			if m == wgpu.PresentModeMailbox {
				return wgpu.PresentModeMailbox
			}
		}
		logger.Printf("core: mailbox present mode unsupported by this surface, falling back to immediate")
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeImmediate
	}
}

// WindowEquip creates a surface for w and configures its swapchain,
// building the UI/blur/3D mesh pipelines against the surface's preferred
// color format if this is the first window equipped. Every subsequently
// equipped window must share that format.
//
// Returns:
//   - handle.Handle: the new window equipment's handle, or the zero handle on failure
func (c *Core) WindowEquip(w window.Window) handle.Handle {
	descriptor := w.SurfaceDescriptor()
	if descriptor == nil {
		c.logger.Printf("core: WindowEquip: window has no surface descriptor")
		return handle.Zero
	}
	surface := c.instance.CreateSurface(descriptor)

	capabilities := surface.GetCapabilities(c.adapter)
	if len(capabilities.Formats) == 0 {
		c.logger.Printf("core: WindowEquip: surface reports no supported formats")
		return handle.Zero
	}
	colorFormat := capabilities.Formats[0]

	if !c.pipelinesReady {
		if err := c.buildPipelines(colorFormat); err != nil {
			c.logger.Printf("core: WindowEquip: %v", err)
			return handle.Zero
		}
	} else if colorFormat != c.colorFormat {
		c.logger.Printf("core: WindowEquip: surface format %v does not match the core's established format %v", colorFormat, c.colorFormat)
		return handle.Zero
	}

	we := &resource.WindowEquipment{
		Surface:     surface,
		Device:      c.device,
		Queue:       c.queue,
		ColorFormat: colorFormat,
		WidthPx:     uint32(w.Width()),
		HeightPx:    uint32(w.Height()),
		DPIScale:    w.DPIScale(),
		SampleCount: 1,
	}

	presentMode := resolvePresentMode(c.presentMode, capabilities, c.logger)
	we.Config = &wgpu.SurfaceConfiguration{
		// CopySrc lets the blur pass copy the swapchain's current color
		// attachment into its sampled scratch texture before drawing.
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		Format:      colorFormat,
		Width:       we.WidthPx,
		Height:      we.HeightPx,
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	}
	surface.Configure(c.adapter, c.device, we.Config)

	if err := c.createDepthTarget(we); err != nil {
		c.logger.Printf("core: WindowEquip: %v", err)
		surface.Release()
		return handle.Zero
	}
	if err := c.createBlurSourceTarget(we); err != nil {
		c.logger.Printf("core: WindowEquip: %v", err)
		we.DepthView.Release()
		we.DepthTexture.Release()
		surface.Release()
		return handle.Zero
	}

	we.State = resource.SwapchainReady
	return c.windows.Insert(we)
}

func (c *Core) createDepthTarget(we *resource.WindowEquipment) error {
	depthTex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "kanso depth texture",
		Usage:         wgpu.TextureUsageRenderAttachment,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: we.WidthPx, Height: we.HeightPx, DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatDepth32Float,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	depthView, err := depthTex.CreateView(nil)
	if err != nil {
		depthTex.Release()
		return fmt.Errorf("create depth view: %w", err)
	}
	we.DepthTexture = depthTex
	we.DepthView = depthView
	return nil
}

// createBlurSourceTarget creates the window equipment's blur-source scratch
// texture: a sampled copy destination the blur pass fills via
// CopyTextureToTexture from the swapchain's current color attachment before
// sampling it in its fragment shader, since WGSL has no way to sample the
// render target a pass is currently writing to.
func (c *Core) createBlurSourceTarget(we *resource.WindowEquipment) error {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "kanso blur source texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: we.WidthPx, Height: we.HeightPx, DepthOrArrayLayers: 1},
		Format:        we.ColorFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create blur source texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create blur source view: %w", err)
	}
	we.BlurSourceTexture = tex
	we.BlurSourceView = view
	return nil
}

// WindowUnequip destroys a window equipment's surface, swapchain, and
// depth target, and invalidates its handle. Waits for device idle first, so
// frames still in flight against this window finish before their
// attachments are torn down.
func (c *Core) WindowUnequip(h handle.Handle) {
	we, ok := c.windows.Lookup(h)
	if !ok {
		return
	}
	c.waitIdle()
	we.EndAcquire()
	for i := range we.Slots {
		releaseFrameSlot(&we.Slots[i])
	}
	if we.DepthView != nil {
		we.DepthView.Release()
	}
	if we.DepthTexture != nil {
		we.DepthTexture.Release()
	}
	if we.BlurSourceView != nil {
		we.BlurSourceView.Release()
	}
	if we.BlurSourceTexture != nil {
		we.BlurSourceTexture.Release()
	}
	if we.MSAAView != nil {
		we.MSAAView.Release()
	}
	if we.MSAATexture != nil {
		we.MSAATexture.Release()
	}
	if we.Surface != nil {
		we.Surface.Release()
	}
	c.windows.Release(h)
}

func releaseFrameSlot(slot *resource.FrameSlot) {
	slot.ReleaseDrawBindGroups()
	slot.Begun = false
}

// recreateSwapchain reconfigures a window equipment's surface at the given
// width and height, used both for explicit resizes and for recovering
// from a failed acquire (at the equipment's current dimensions).
func (c *Core) recreateSwapchain(we *resource.WindowEquipment, width, height uint32) error {
	we.State = resource.SwapchainRecreating
	c.waitIdle()

	we.WidthPx, we.HeightPx = width, height
	we.Config.Width, we.Config.Height = width, height
	we.Surface.Configure(c.adapter, c.device, we.Config)

	if we.DepthView != nil {
		we.DepthView.Release()
	}
	if we.DepthTexture != nil {
		we.DepthTexture.Release()
	}
	if err := c.createDepthTarget(we); err != nil {
		return err
	}

	if we.BlurSourceView != nil {
		we.BlurSourceView.Release()
	}
	if we.BlurSourceTexture != nil {
		we.BlurSourceTexture.Release()
	}
	if err := c.createBlurSourceTarget(we); err != nil {
		return err
	}

	we.State = resource.SwapchainReady
	return nil
}

// WindowResize reconfigures a window equipment's swapchain and depth
// target to a new pixel size, e.g. in response to the window's resize
// callback.
//
// Returns:
//   - error: non-nil if h is invalid or recreation fails
func (c *Core) WindowResize(h handle.Handle, width, height uint32) error {
	we, ok := c.windows.Lookup(h)
	if !ok {
		return fmt.Errorf("core: WindowResize: invalid handle")
	}
	return c.recreateSwapchain(we, width, height)
}

// WindowBeginFrame acquires the next swapchain image for h. On any acquire
// failure (OutOfDate and Suboptimal included) it transparently recreates the
// swapchain and retries once. If that retry or the view creation fails, the
// window's current FrameSlot is left with Begun == false, and WindowSubmit/
// WindowEndFrame for this window this frame MUST be skipped by the caller.
//
// Returns:
//   - error: non-nil if h is invalid or the image could not be acquired after one retry
func (c *Core) WindowBeginFrame(win handle.Handle) error {
	we, ok := c.windows.Lookup(win)
	if !ok {
		return fmt.Errorf("core: WindowBeginFrame: invalid handle")
	}

	tex, err := we.Surface.GetCurrentTexture()
	if err != nil {
		if rerr := c.recreateSwapchain(we, we.WidthPx, we.HeightPx); rerr != nil {
			return fmt.Errorf("acquire failed (%v) and recreate failed: %w", err, rerr)
		}
		tex, err = we.Surface.GetCurrentTexture()
		if err != nil {
			we.CurrentSlot().Begun = false
			return fmt.Errorf("acquire failed after recreate: %w", err)
		}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		we.CurrentSlot().Begun = false
		return fmt.Errorf("create swapchain view: %w", err)
	}

	we.BeginAcquire(tex, view)
	we.State = resource.SwapchainRendering
	slot := we.CurrentSlot()
	slot.ReleaseDrawBindGroups()
	slot.Begun = true
	return nil
}

// WindowEndFrame presents the frame acquired by WindowBeginFrame and
// advances the window equipment to its next frame slot. A no-op if the
// current slot never successfully began (Begun == false).
func (c *Core) WindowEndFrame(win handle.Handle) {
	we, ok := c.windows.Lookup(win)
	if !ok {
		return
	}
	if !we.CurrentSlot().Begun {
		return
	}

	we.State = resource.SwapchainPresenting
	we.Surface.Present()
	we.EndAcquire()
	we.State = resource.SwapchainReady
	we.CurrentSlot().Begun = false
	we.AdvanceFrame()
}
