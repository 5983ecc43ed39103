package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/passlist"
	"github.com/kanso-gfx/kanso/resource"
)

// encodeUIPass records one UI rect pass: a single render pass covering
// every batch group in params, each drawn as a non-indexed, 4-vertex,
// instance_index-driven triangle strip reading its instance data from the
// active frame slot's transient storage ring.
func (c *Core) encodeUIPass(encoder *wgpu.CommandEncoder, we *resource.WindowEquipment, slotIdx int, params *passlist.UIParams, firstColorPass bool) error {
	rp := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "kanso ui pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       we.AcquiredView(),
				LoadOp:     colorAttachmentLoadOp(firstColorPass),
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            we.DepthView,
			DepthLoadOp:     depthAttachmentLoadOp(firstColorPass),
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})

	renderPipeline := c.uiPipeline.Pipeline()
	if renderPipeline == nil {
		rp.End()
		return fmt.Errorf("ui pipeline not ready")
	}
	rp.SetPipeline(renderPipeline)
	rp.SetViewport(0, 0, float32(we.WidthPx), float32(we.HeightPx), 0, 1)
	rp.SetScissorRect(0, 0, we.WidthPx, we.HeightPx)

	slot := we.CurrentSlot()
	for _, group := range params.Groups {
		if err := c.encodeUIGroup(rp, we, slot, slotIdx, group); err != nil {
			rp.End()
			return err
		}
	}

	rp.End()
	return nil
}

// encodeUIGroup writes one GPUUIUniform for group (opacity and channel
// swizzle both vary per batch group, so every group needs its own globals
// write and bind group), then draws every batch in the group against that
// uniform and the group's bound texture.
func (c *Core) encodeUIGroup(rp *wgpu.RenderPassEncoder, we *resource.WindowEquipment, slot *resource.FrameSlot, slotIdx int, group *passlist.BatchGroup2D) error {
	tex, ok := c.textures.Lookup(group.TextureHandle)
	if !ok {
		tex, _ = c.textures.Lookup(c.whiteTexture)
	}

	logicalW, logicalH := float32(we.WidthPx), float32(we.HeightPx)
	if we.DPIScale > 0 {
		logicalW /= we.DPIScale
		logicalH /= we.DPIScale
	}

	uniform := passlist.GPUUIUniform{
		ViewportSizeLogical: [2]float32{logicalW, logicalH},
		Opacity:             1 - group.Transparency,
		ChannelSwizzle:      tex.Format.SwizzleMatrix(),
	}
	uniformBytes := uniform.MarshalInto(c.frameArena.Push(uniform.Size(), 4))
	uniformOffset, err := c.uniformRing[slotIdx].write(c.queue, uniformBytes)
	if err != nil {
		return fmt.Errorf("write ui uniform: %w", err)
	}

	globalsBG, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "kanso ui globals",
		Layout: c.uiGlobalLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: c.uniformRing[slotIdx].buf, Offset: uniformOffset, Size: uint64(len(uniformBytes))},
		},
	})
	if err != nil {
		return fmt.Errorf("create ui globals bind group: %w", err)
	}
	slot.DrawBindGroups = append(slot.DrawBindGroups, globalsBG)
	rp.SetBindGroup(0, globalsBG, nil)

	sx, sy, sw, sh := scissorFromClip(group.ClipRect, we.DPIScale, we.WidthPx, we.HeightPx)
	rp.SetScissorRect(sx, sy, sw, sh)

	sampler := samplerFor(c, group.SampleKind)

	for _, batch := range group.Batches.Batches() {
		if len(batch.Bytes) == 0 {
			continue
		}
		instanceOffset, err := c.transient[slotIdx].write(c.queue, batch.Bytes)
		if err != nil {
			return fmt.Errorf("write ui instances: %w", err)
		}
		instanceCount := uint32(len(batch.Bytes) / batch.ElemStride)

		drawBG, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "kanso ui draw",
			Layout: c.uiTexLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: c.transient[slotIdx].buf, Offset: instanceOffset, Size: uint64(len(batch.Bytes))},
				{Binding: 1, TextureView: tex.View},
				{Binding: 2, Sampler: sampler},
			},
		})
		if err != nil {
			return fmt.Errorf("create ui draw bind group: %w", err)
		}
		slot.DrawBindGroups = append(slot.DrawBindGroups, drawBG)

		rp.SetBindGroup(1, drawBG, nil)
		rp.Draw(4, instanceCount, 0, 0)
	}
	return nil
}

// scissorFromClip converts a (minX, minY, maxX, maxY) clip rect in logical
// units into a framebuffer-pixel scissor, clamped to the swapchain extent. An
// empty or inverted rect means "no clip" and maps to the full extent.
func scissorFromClip(clip [4]float32, dpiScale float32, widthPx, heightPx uint32) (x, y, w, h uint32) {
	if dpiScale <= 0 {
		dpiScale = 1
	}
	minX := clip[0] * dpiScale
	minY := clip[1] * dpiScale
	maxX := clip[2] * dpiScale
	maxY := clip[3] * dpiScale
	if maxX <= minX || maxY <= minY {
		return 0, 0, widthPx, heightPx
	}

	clampU32 := func(v float32, hi uint32) uint32 {
		if v < 0 {
			return 0
		}
		if v > float32(hi) {
			return hi
		}
		return uint32(v)
	}
	x = clampU32(minX, widthPx)
	y = clampU32(minY, heightPx)
	x1 := clampU32(maxX, widthPx)
	y1 := clampU32(maxY, heightPx)
	if x1 <= x || y1 <= y {
		return 0, 0, 0, 0
	}
	return x, y, x1 - x, y1 - y
}
