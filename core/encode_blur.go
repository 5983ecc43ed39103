package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/passlist"
	"github.com/kanso-gfx/kanso/resource"
)

// encodeBlurPass records the blur pass: a CopyTextureToTexture of the
// current color attachment into the window equipment's blur-source scratch
// texture (outside any render pass, since a texture cannot be copied from
// while it is bound as a render target), followed by a single fullscreen
// draw sampling that copy. blur.wgsl has no group 1 — both the uniform and
// the source texture/sampler live in group 0.
func (c *Core) encodeBlurPass(encoder *wgpu.CommandEncoder, we *resource.WindowEquipment, slotIdx int, params *passlist.BlurParams, firstColorPass bool) error {
	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: we.CurrentColorTexture(), MipLevel: 0, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyTexture{Texture: we.BlurSourceTexture, MipLevel: 0, Aspect: wgpu.TextureAspectAll},
		&wgpu.Extent3D{Width: we.WidthPx, Height: we.HeightPx, DepthOrArrayLayers: 1},
	)

	rp := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "kanso blur pass",
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

	renderPipeline := c.blurPipeline.Pipeline()
	if renderPipeline == nil {
		rp.End()
		return fmt.Errorf("blur pipeline not ready")
	}
	rp.SetPipeline(renderPipeline)

	// the fragment shader compares against @builtin(position), which is in
	// framebuffer pixels; pass-list rects are logical units
	dpi := we.DPIScale
	if dpi <= 0 {
		dpi = 1
	}
	scaleRect := func(r [4]float32) [4]float32 {
		// an empty or inverted rect means "unbounded" and maps to the full extent
		if r[2] <= r[0] || r[3] <= r[1] {
			return [4]float32{0, 0, float32(we.WidthPx), float32(we.HeightPx)}
		}
		return [4]float32{r[0] * dpi, r[1] * dpi, r[2] * dpi, r[3] * dpi}
	}
	uniform := passlist.GPUBlurParams{
		TargetRect:   scaleRect(params.TargetRect),
		ClipRect:     scaleRect(params.ClipRect),
		CornerRadii:  [4]float32{params.CornerRadii[0] * dpi, params.CornerRadii[1] * dpi, params.CornerRadii[2] * dpi, params.CornerRadii[3] * dpi},
		BlurRadiusPx: params.BlurRadiusPx * dpi,
	}
	uniformBytes := uniform.MarshalInto(c.frameArena.Push(uniform.Size(), 4))
	uniformOffset, err := c.uniformRing[slotIdx].write(c.queue, uniformBytes)
	if err != nil {
		rp.End()
		return fmt.Errorf("write blur uniform: %w", err)
	}

	globalsBG, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "kanso blur globals",
		Layout: c.blurGlobalLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: c.uniformRing[slotIdx].buf, Offset: uniformOffset, Size: uint64(len(uniformBytes))},
			{Binding: 1, TextureView: we.BlurSourceView},
			{Binding: 2, Sampler: c.samplerLinear},
		},
	})
	if err != nil {
		rp.End()
		return fmt.Errorf("create blur globals bind group: %w", err)
	}
	we.CurrentSlot().DrawBindGroups = append(we.CurrentSlot().DrawBindGroups, globalsBG)
	rp.SetBindGroup(0, globalsBG, nil)

	rp.Draw(4, 1, 0, 0)

	rp.End()
	return nil
}
