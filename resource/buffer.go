package resource

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer owns a GPU buffer. A single buffer can serve either the vertex or
// index role — usage is a bitmask supplied at allocation time, not baked
// into the resource kind. Dynamic buffers are host-mapped and persistently
// visible; Static buffers are uploaded once via a staging buffer.
type Buffer struct {
	Buf       *wgpu.Buffer
	SizeBytes uint64
	Kind      Kind
	Usage     wgpu.BufferUsage
}

// Write uploads data at byteOffset into the buffer. Dynamic buffers may be
// written every frame; Static buffers are expected to be written once,
// immediately after allocation, via the device's staging-buffer upload path.
//
// Parameters:
//   - queue: the device queue used to write the buffer
//   - byteOffset: the destination offset within the buffer
//   - data: the bytes to upload
//
// Returns:
//   - error: an error if the write would overrun the buffer
func (b *Buffer) Write(queue *wgpu.Queue, byteOffset uint64, data []byte) error {
	if byteOffset+uint64(len(data)) > b.SizeBytes {
		return fmt.Errorf("resource: buffer write of %d bytes at offset %d overruns %d-byte buffer", len(data), byteOffset, b.SizeBytes)
	}
	queue.WriteBuffer(b.Buf, byteOffset, data)
	return nil
}

// Release destroys the buffer's GPU object. Callers MUST have waited for
// device idle (or an equivalent fence wait) first, since the buffer's last
// use may still be in flight in a previous frame.
func (b *Buffer) Release() {
	if b.Buf != nil {
		b.Buf.Destroy()
		b.Buf.Release()
		b.Buf = nil
	}
}
