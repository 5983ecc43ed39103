package core

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/handle"
	"github.com/kanso-gfx/kanso/passlist"
)

// WindowSubmit encodes and submits every pass in passes against win's
// currently acquired swapchain frame, in submission order. Each pass opens
// its own render pass: the first color-writing pass of the frame clears the
// color and depth attachments, later passes load them. Passes are given
// separate render passes (rather than one render pass for the whole frame)
// because the blur pass needs a command-encoder-level boundary to copy the
// color attachment into its scratch texture before sampling it — WGSL gives
// no way to sample the attachment a pass is currently writing to.
//
// Returns:
//   - error: non-nil if win is invalid, its frame was never begun, or encoding/submission fails
func (c *Core) WindowSubmit(win handle.Handle, passes *passlist.PassList) error {
	we, ok := c.windows.Lookup(win)
	if !ok {
		return fmt.Errorf("core: WindowSubmit: invalid handle")
	}
	if !we.CurrentSlot().Begun {
		return fmt.Errorf("core: WindowSubmit: frame was not begun")
	}

	slotIdx := c.frameSlot()

	// Pre-sum the frame's total instance and uniform bytes across every pass
	// before recording anything, so the transient rings grow (doubling, 16 MiB
	// floor) up front rather than mid-encode, where already-written offsets
	// would be left pointing at a released buffer.
	if err := c.reserveTransientCapacity(slotIdx, passes); err != nil {
		return fmt.Errorf("core: WindowSubmit: %w", err)
	}

	encoder, err := c.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "kanso frame encoder"})
	if err != nil {
		return fmt.Errorf("core: WindowSubmit: create command encoder: %w", err)
	}

	firstColorPass := true

	for _, pass := range passes.Passes() {
		var encErr error
		switch pass.Kind {
		case passlist.PassKindUI:
			encErr = c.encodeUIPass(encoder, we, slotIdx, pass.UI, firstColorPass)
		case passlist.PassKindBlur:
			encErr = c.encodeBlurPass(encoder, we, slotIdx, pass.Blur, firstColorPass)
		case passlist.PassKindMesh3D:
			encErr = c.encodeMesh3DPass(encoder, we, slotIdx, pass.Mesh3D, firstColorPass)
		}
		if encErr != nil {
			encoder.Release()
			return fmt.Errorf("core: WindowSubmit: %w", encErr)
		}
		firstColorPass = false
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("core: WindowSubmit: finish command encoder: %w", err)
	}
	c.queue.Submit(cmd)
	return nil
}

// colorAttachmentLoadOp returns Clear for the frame's first color-writing
// pass and Load for every pass after it, so later passes composite onto
// what came before instead of erasing it.
func colorAttachmentLoadOp(first bool) wgpu.LoadOp {
	if first {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

// depthAttachmentLoadOp mirrors colorAttachmentLoadOp for the shared depth
// attachment: cleared once at the start of the frame, loaded thereafter so
// the 3D pass's depth test sees work from earlier in the same frame.
func depthAttachmentLoadOp(first bool) wgpu.LoadOp {
	if first {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

// reserveTransientCapacity pre-sums the instance bytes and uniform writes the
// passes will stage into slotIdx's rings and grows both to fit, accounting for
// the 256-byte alignment each write rounds its start offset up to.
func (c *Core) reserveTransientCapacity(slotIdx int, passes *passlist.PassList) error {
	const align = 256
	instanceBytes := c.transient[slotIdx].offset
	uniformBytes := c.uniformRing[slotIdx].offset

	addAligned := func(total *uint64, n int) {
		*total = (*total+align-1)&^(align-1) + uint64(n)
	}

	for _, pass := range passes.Passes() {
		switch pass.Kind {
		case passlist.PassKindUI:
			for _, group := range pass.UI.Groups {
				addAligned(&uniformBytes, (&passlist.GPUUIUniform{}).Size())
				for _, batch := range group.Batches.Batches() {
					addAligned(&instanceBytes, len(batch.Bytes))
				}
			}
		case passlist.PassKindBlur:
			addAligned(&uniformBytes, (&passlist.GPUBlurParams{}).Size())
		case passlist.PassKindMesh3D:
			for _, group := range pass.Mesh3D.Groups.Groups() {
				addAligned(&uniformBytes, (&passlist.GPUMesh3DUniform{}).Size())
				for _, batch := range group.Batches.Batches() {
					addAligned(&instanceBytes, len(batch.Bytes))
				}
			}
		}
	}

	if err := c.transient[slotIdx].ensureCapacity(instanceBytes); err != nil {
		return fmt.Errorf("grow transient instance buffer: %w", err)
	}
	if err := c.uniformRing[slotIdx].ensureCapacity(uniformBytes); err != nil {
		return fmt.Errorf("grow uniform ring: %w", err)
	}
	return nil
}

func samplerFor(c *Core, kind passlist.SampleKind) *wgpu.Sampler {
	if kind == passlist.SampleNearest {
		return c.samplerNearest
	}
	return c.samplerLinear
}
