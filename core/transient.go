package core

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// minTransientBufferSize is the floor capacity for a frame slot's transient
// instance buffer.
const minTransientBufferSize = 16 << 20

// transientBuffer is a per-frame-slot, append-only GPU storage buffer
// backing the instance data the UI and 3D mesh passes read via
// `var<storage, read> array<T>` (see DESIGN.md's storage-buffer-instancing
// grounding note). It grows by doubling when a frame's batch data exceeds
// its current capacity and is reset (not reallocated) by Core.BeginFrame
// whenever that slot becomes the current frame's slot.
type transientBuffer struct {
	device   *wgpu.Device
	usage    wgpu.BufferUsage
	label    string
	buf      *wgpu.Buffer
	capacity uint64
	offset   uint64
}

// newTransientBuffer creates a growable ring used for one frame slot's
// appended GPU writes. usage is combined with BufferUsageCopyDst
// automatically; pass BufferUsageStorage for instance data or
// BufferUsageUniform for per-draw uniform blocks (the same ring mechanism
// serves both, since a UI pass writes one GPUUIUniform per batch group —
// each needing its own opacity and channel-swizzle — rather than one
// GPUUIUniform for the whole pass).
func newTransientBuffer(device *wgpu.Device, label string, usage wgpu.BufferUsage, initialCapacity uint64) (*transientBuffer, error) {
	t := &transientBuffer{device: device, usage: usage, label: label}
	if err := t.ensureCapacity(initialCapacity); err != nil {
		return nil, err
	}
	return t, nil
}

// reset rewinds the write cursor to the start of the buffer for a new frame.
// The underlying GPU buffer is reused, not reallocated.
func (t *transientBuffer) reset() {
	t.offset = 0
}

// ensureCapacity grows the backing buffer (by doubling, at minimum to
// needed) if its current capacity is insufficient. Growing discards any
// data already written this frame, since the offsets assigned before growth
// would otherwise point at the old buffer's released memory; callers must
// only grow at the start of a frame, before any writes.
func (t *transientBuffer) ensureCapacity(needed uint64) error {
	if t.capacity >= needed {
		return nil
	}
	newCap := t.capacity
	if newCap == 0 {
		newCap = minTransientBufferSize
	}
	for newCap < needed {
		newCap *= 2
	}
	if t.buf != nil {
		t.buf.Destroy()
		t.buf.Release()
	}
	buf, err := t.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: t.label,
		Size:  newCap,
		Usage: t.usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	t.buf = buf
	t.capacity = newCap
	return nil
}

// write appends data to the buffer at a 256-byte-aligned offset (matching
// the minimum storage-buffer-binding-offset alignment WebGPU guarantees
// support for across adapters) and returns that offset.
func (t *transientBuffer) write(queue *wgpu.Queue, data []byte) (uint64, error) {
	const align = 256
	start := (t.offset + align - 1) &^ (align - 1)
	end := start + uint64(len(data))
	if end > t.capacity {
		if err := t.ensureCapacity(end); err != nil {
			return 0, err
		}
		start = 0
		end = uint64(len(data))
	}
	queue.WriteBuffer(t.buf, start, data)
	t.offset = end
	return start, nil
}

func (t *transientBuffer) release() {
	if t.buf != nil {
		t.buf.Destroy()
		t.buf.Release()
		t.buf = nil
	}
}
