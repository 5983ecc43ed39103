package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/common"
	"github.com/kanso-gfx/kanso/passlist"
	"github.com/kanso-gfx/kanso/resource"
)

// encodeMesh3DPass records the 3D mesh pass: for every batch group sharing a
// (vertex buffer, index buffer, albedo texture) key, one indexed, instanced
// draw call per instance batch in that group. Each group writes its own
// GPUMesh3DUniform — view and
// projection are pass-wide, but the channel-swizzle matrix tracks the
// group's albedo format, so the globals write happens per group the same
// way the UI pass's does.
func (c *Core) encodeMesh3DPass(encoder *wgpu.CommandEncoder, we *resource.WindowEquipment, slotIdx int, params *passlist.Mesh3DParams, firstColorPass bool) error {
	rp := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "kanso mesh3d pass",
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

	renderPipeline := c.mesh3DPipeline.Pipeline()
	if renderPipeline == nil {
		rp.End()
		return fmt.Errorf("mesh3d pipeline not ready")
	}
	rp.SetPipeline(renderPipeline)

	dpi := we.DPIScale
	if dpi <= 0 {
		dpi = 1
	}
	vx, vy, vw, vh := scissorFromClip(params.ViewportRect, dpi, we.WidthPx, we.HeightPx)
	rp.SetViewport(float32(vx), float32(vy), float32(vw), float32(vh), 0, 1)
	sx, sy, sw, sh := scissorFromClip(params.ClipRect, dpi, we.WidthPx, we.HeightPx)
	rp.SetScissorRect(sx, sy, sw, sh)

	slot := we.CurrentSlot()
	for _, group := range params.Groups.Groups() {
		if err := c.encodeMesh3DGroup(rp, slot, slotIdx, params, group); err != nil {
			rp.End()
			return err
		}
	}

	rp.End()
	return nil
}

// encodeMesh3DGroup writes the group's globals (pass-wide view/projection
// plus the albedo format's channel swizzle), then draws every instance batch
// in group against the real vertex/index buffers the group references,
// reading each batch's model matrices from the frame slot's transient
// storage ring. The group transform is folded into the view matrix here so
// every instance in the group picks it up without touching the already
// marshaled instance bytes: proj * (view * groupXform) * model.
func (c *Core) encodeMesh3DGroup(rp *wgpu.RenderPassEncoder, slot *resource.FrameSlot, slotIdx int, params *passlist.Mesh3DParams, group *passlist.BatchGroup3D) error {
	vb, ok := c.buffers.Lookup(group.VertexBuffer)
	if !ok {
		return fmt.Errorf("mesh3d group: invalid vertex buffer handle")
	}
	ib, ok := c.buffers.Lookup(group.IndexBuffer)
	if !ok {
		return fmt.Errorf("mesh3d group: invalid index buffer handle")
	}
	tex, ok := c.textures.Lookup(group.AlbedoTexture)
	if !ok {
		tex, _ = c.textures.Lookup(c.whiteTexture)
	}
	sampler := samplerFor(c, group.SampleKind)

	view := composeGroupView(params.View, group.GroupXform)

	uniform := passlist.GPUMesh3DUniform{
		View:           view,
		Projection:     params.Projection,
		ChannelSwizzle: tex.Format.SwizzleMatrix(),
	}
	uniformBytes := uniform.MarshalInto(c.frameArena.Push(uniform.Size(), 4))
	uniformOffset, err := c.uniformRing[slotIdx].write(c.queue, uniformBytes)
	if err != nil {
		return fmt.Errorf("write mesh3d uniform: %w", err)
	}
	globalsBG, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "kanso mesh3d globals",
		Layout: c.mesh3DGlobalLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: c.uniformRing[slotIdx].buf, Offset: uniformOffset, Size: uint64(len(uniformBytes))},
		},
	})
	if err != nil {
		return fmt.Errorf("create mesh3d globals bind group: %w", err)
	}
	slot.DrawBindGroups = append(slot.DrawBindGroups, globalsBG)
	rp.SetBindGroup(0, globalsBG, nil)

	indexCount := uint32(ib.SizeBytes / 4)

	rp.SetVertexBuffer(0, vb.Buf, 0, wgpu.WholeSize)
	rp.SetIndexBuffer(ib.Buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

	for _, batch := range group.Batches.Batches() {
		if len(batch.Bytes) == 0 {
			continue
		}
		instanceOffset, err := c.transient[slotIdx].write(c.queue, batch.Bytes)
		if err != nil {
			return fmt.Errorf("write mesh3d instances: %w", err)
		}
		instanceCount := uint32(len(batch.Bytes) / batch.ElemStride)

		bg, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "kanso mesh3d draw",
			Layout: c.mesh3DTexLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: c.transient[slotIdx].buf, Offset: instanceOffset, Size: uint64(len(batch.Bytes))},
				{Binding: 1, TextureView: tex.View},
				{Binding: 2, Sampler: sampler},
			},
		})
		if err != nil {
			return fmt.Errorf("create mesh3d draw bind group: %w", err)
		}
		slot.DrawBindGroups = append(slot.DrawBindGroups, bg)

		rp.SetBindGroup(1, bg, nil)
		rp.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
	}
	return nil
}

// composeGroupView folds a batch group's transform into the pass view
// matrix. The zero-value transform means the group never set one and is
// treated as identity.
func composeGroupView(view, xform [16]float32) [16]float32 {
	if xform == ([16]float32{}) {
		return view
	}
	var out [16]float32
	common.Mul4(out[:], view[:], xform[:])
	return out
}
